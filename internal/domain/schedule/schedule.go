// Package schedule genera el cronograma de cuotas de los contratos de servicio y calcula
// sus métricas de costo y vencimiento. Todas las funciones son puras: "hoy" es un parámetro.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DefaultExpiringDays umbral de días para EXPIRING_SOON.
const DefaultExpiringDays = 60

// horizonMonths tope del cronograma quincenal cuando el contrato no tiene fecha de fin.
const horizonMonths = 12

// Day trunca t a la fecha calendario (UTC, 00:00).
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths suma n meses conservando el día del mes de t; si el mes destino es más corto
// se usa su último día (31-ene + 1 mes = 28/29-feb).
func AddMonths(t time.Time, n int) time.Time {
	t = Day(t)
	y, m := t.Year(), int(t.Month())-1+n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	d := t.Day()
	if last := daysIn(y, month); d > last {
		d = last
	}
	return time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
}

// DueDates devuelve las fechas de vencimiento del cronograma.
//   - MONTHLY: start + k meses mientras no supere end; sin end no hay cuotas.
//   - BIWEEKLY: días 1 y 16 de cada mes en [start, end] (o hasta hoy + 12 meses sin end).
//   - WEEKLY: sin cuotas materializadas.
func DueDates(frequency string, start time.Time, end *time.Time, today time.Time) []time.Time {
	start = Day(start)
	switch frequency {
	case entity.FrequencyMonthly:
		if end == nil {
			return nil
		}
		limit := Day(*end)
		var out []time.Time
		for k := 0; ; k++ {
			d := AddMonths(start, k)
			if d.After(limit) {
				break
			}
			out = append(out, d)
		}
		return out
	case entity.FrequencyBiweekly:
		limit := AddMonths(today, horizonMonths)
		if end != nil {
			limit = Day(*end)
		}
		var out []time.Time
		cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for !cursor.After(limit) {
			for _, day := range []int{1, 16} {
				d := time.Date(cursor.Year(), cursor.Month(), day, 0, 0, 0, 0, time.UTC)
				if !d.Before(start) && !d.After(limit) {
					out = append(out, d)
				}
			}
			cursor = cursor.AddDate(0, 1, 0)
		}
		return out
	default:
		return nil
	}
}

// Payments construye las cuotas PENDING del cronograma; el importe por defecto es el costo mensual.
func Payments(s *entity.ServiceContract, today time.Time, newID func() string) []*entity.ServicePayment {
	dates := DueDates(s.Frequency, s.StartDate, s.EndDate, today)
	out := make([]*entity.ServicePayment, 0, len(dates))
	for _, d := range dates {
		out = append(out, &entity.ServicePayment{
			ID:         newID(),
			ServiceID:  s.ID,
			DueDate:    d,
			Status:     entity.PaymentStatusPending,
			PaidAmount: s.MonthlyCost,
		})
	}
	return out
}

// billedMonths meses completos entre start y end; cualquier día restante suma un mes más.
func billedMonths(start, end time.Time) int {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return 1
	}
	k := 0
	for !AddMonths(start, k+1).After(end) {
		k++
	}
	if AddMonths(start, k).Before(end) {
		k++
	}
	return k
}

// AccruedCost costo total estimado del contrato; nil si no tiene fecha de fin.
func AccruedCost(frequency string, monthlyCost decimal.Decimal, start time.Time, end *time.Time) *decimal.Decimal {
	if end == nil {
		return nil
	}
	var units int
	switch frequency {
	case entity.FrequencyMonthly:
		units = billedMonths(start, *end)
	case entity.FrequencyBiweekly:
		units = billedMonths(start, *end) * 2
	case entity.FrequencyWeekly:
		days := int(Day(*end).Sub(Day(start)).Hours() / 24)
		units = days / 7
	}
	if units < 1 {
		units = 1
	}
	cost := monthlyCost.Mul(decimal.NewFromInt(int64(units)))
	return &cost
}

// DaysToExpiry días entre hoy y la fecha de fin; nil sin fecha de fin.
func DaysToExpiry(end *time.Time, today time.Time) *int {
	if end == nil {
		return nil
	}
	days := int(Day(*end).Sub(Day(today)).Hours() / 24)
	return &days
}

// EffectiveStatus estado autoritativo para mostrar y reportar. SUSPENDED guardado se respeta;
// el resto se deriva de los días al vencimiento.
func EffectiveStatus(stored string, end *time.Time, today time.Time, expiringDays int) string {
	if stored == entity.ServiceStatusSuspended {
		return entity.ServiceStatusSuspended
	}
	days := DaysToExpiry(end, today)
	switch {
	case days == nil:
		return entity.ServiceStatusActive
	case *days < 0:
		return entity.ServiceStatusExpired
	case *days <= expiringDays:
		return entity.ServiceStatusExpiringSoon
	default:
		return entity.ServiceStatusActive
	}
}
