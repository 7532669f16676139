package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

var today = time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)

func setup(t *testing.T) *UseCase {
	t.Helper()
	store := memory.NewStore()
	clock := func() time.Time { return today }
	return NewUseCase(store, store.Repos(), audit.NewRecorder(clock), clock, 0)
}

func monthly(end *dto.Date) dto.ServiceRequest {
	return dto.ServiceRequest{
		Name:        "limpieza oficinas",
		Supplier:    "limpiatodo srl",
		Frequency:   entity.FrequencyMonthly,
		MonthlyCost: decimal.NewFromInt(100),
		StartDate:   dto.NewDate(2025, time.January, 1),
		EndDate:     end,
	}
}

func datePtr(y int, m time.Month, d int) *dto.Date {
	v := dto.NewDate(y, m, d)
	return &v
}

func dueDates(payments []dto.PaymentResponse) []string {
	out := make([]string, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.DueDate.Format(dto.DateLayout))
	}
	return out
}

func TestCreate_MensualGeneraCuotasYCosto(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	s, err := uc.Create(ctx, nil, entity.UserScope{}, monthly(datePtr(2025, time.March, 15)))
	require.NoError(t, err)

	assert.Equal(t, "LIMPIEZA OFICINAS", s.Name)
	assert.Equal(t, entity.ServiceStatusExpiringSoon, s.EffectiveStatus)
	require.NotNil(t, s.DaysToExpiry)
	assert.Equal(t, 33, *s.DaysToExpiry)
	require.NotNil(t, s.AccruedCost)
	assert.True(t, s.AccruedCost.Equal(decimal.NewFromInt(300)))

	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-02-01", "2025-03-01"}, dueDates(payments))
	for _, p := range payments {
		assert.Equal(t, entity.PaymentStatusPending, p.Status)
		assert.True(t, p.PaidAmount.Equal(decimal.NewFromInt(100)))
	}
}

func TestCreate_SinFechaDeFin(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	s, err := uc.Create(ctx, nil, entity.UserScope{}, monthly(nil))
	require.NoError(t, err)

	assert.Equal(t, entity.ServiceStatusActive, s.EffectiveStatus)
	assert.Nil(t, s.AccruedCost)
	assert.Nil(t, s.DaysToExpiry)
	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestCreate_Validaciones(t *testing.T) {
	uc := setup(t)
	in := monthly(datePtr(2024, time.December, 1))
	in.Frequency = "DAILY"
	in.Name = ""

	_, err := uc.Create(context.Background(), nil, entity.UserScope{}, in)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Code
	}
	assert.Equal(t, domain.CodeRequired, fields["name"])
	assert.Equal(t, domain.CodeInvalidValue, fields["frequency"])
	assert.Equal(t, domain.CodeInvalidRange, fields["end_date"])
}

func TestGenerateSchedule_Idempotente(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	in := monthly(datePtr(2025, time.April, 30))
	in.Frequency = entity.FrequencyBiweekly
	s, err := uc.Create(ctx, nil, entity.UserScope{}, in)
	require.NoError(t, err)

	first, err := uc.GenerateSchedule(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	second, err := uc.GenerateSchedule(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)

	assert.Len(t, first, 8)
	assert.Equal(t, dueDates(first), dueDates(second))
}

func TestMarkPaid(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, nil, entity.UserScope{}, monthly(datePtr(2025, time.March, 1)))
	require.NoError(t, err)
	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)

	paid, err := uc.MarkPaid(ctx, entity.UserScope{}, payments[0].ID, dto.MarkPaidRequest{PaymentFileNumber: "exp-12"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, paid.Status)
	assert.True(t, paid.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "EXP-12", paid.PaymentFileNumber)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, "2025-02-10", paid.PaymentDate.Format(dto.DateLayout))

	amount := decimal.RequireFromString("95.5")
	partial, err := uc.MarkPaid(ctx, entity.UserScope{}, payments[1].ID, dto.MarkPaidRequest{
		PaidAmount:  &amount,
		PaymentDate: datePtr(2025, time.February, 3),
	})
	require.NoError(t, err)
	assert.True(t, partial.PaidAmount.Equal(amount))
	assert.Equal(t, "2025-02-03", partial.PaymentDate.Format(dto.DateLayout))

	_, err = uc.MarkPaid(ctx, entity.UserScope{}, payments[0].ID, dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.MarkPaid(ctx, entity.UserScope{}, "nope", dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ConservaPagosSiNoCambiaElCronograma(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	in := monthly(datePtr(2025, time.March, 1))
	s, err := uc.Create(ctx, nil, entity.UserScope{}, in)
	require.NoError(t, err)
	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	_, err = uc.MarkPaid(ctx, entity.UserScope{}, payments[0].ID, dto.MarkPaidRequest{})
	require.NoError(t, err)

	in.Notes = "cambio de contacto"
	_, err = uc.Update(ctx, nil, entity.UserScope{}, s.ID, in)
	require.NoError(t, err)

	after, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, after[0].Status)
}

func TestRenew(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	s, err := uc.Create(ctx, nil, entity.UserScope{}, monthly(datePtr(2025, time.March, 1)))
	require.NoError(t, err)

	renewed, err := uc.Renew(ctx, nil, entity.UserScope{}, s.ID, dto.RenewRequest{
		NewEndDate:    dto.NewDate(2025, time.June, 1),
		FileReference: "exp-99",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", renewed.EndDate.Format(dto.DateLayout))
	assert.Contains(t, renewed.Notes, "Renovado hasta 2025-06-01 (expediente EXP-99)")
	assert.Equal(t, entity.ServiceStatusActive, renewed.EffectiveStatus)
	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 6)
}

func TestRenew_NoMensualNoRegenera(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	in := monthly(datePtr(2025, time.January, 31))
	in.Frequency = entity.FrequencyBiweekly
	s, err := uc.Create(ctx, nil, entity.UserScope{}, in)
	require.NoError(t, err)

	_, err = uc.Renew(ctx, nil, entity.UserScope{}, s.ID, dto.RenewRequest{NewEndDate: dto.NewDate(2025, time.June, 30)})
	require.NoError(t, err)

	payments, err := uc.ListPayments(ctx, entity.UserScope{}, s.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestList_FiltraPorEstadoEfectivo(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	_, err := uc.Create(ctx, nil, entity.UserScope{}, monthly(datePtr(2025, time.January, 31)))
	require.NoError(t, err)
	active := monthly(datePtr(2026, time.January, 1))
	active.Name = "seguridad"
	_, err = uc.Create(ctx, nil, entity.UserScope{}, active)
	require.NoError(t, err)
	suspended := monthly(nil)
	suspended.Name = "mantenimiento"
	suspended.Status = entity.ServiceStatusSuspended
	_, err = uc.Create(ctx, nil, entity.UserScope{}, suspended)
	require.NoError(t, err)

	expired, err := uc.List(ctx, entity.UserScope{}, dto.ServiceFilter{Status: entity.ServiceStatusExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "LIMPIEZA OFICINAS", expired[0].Name)

	got, err := uc.List(ctx, entity.UserScope{}, dto.ServiceFilter{Status: entity.ServiceStatusSuspended})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MANTENIMIENTO", got[0].Name)

	all, err := uc.List(ctx, entity.UserScope{}, dto.ServiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
