package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/schedule"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// UseCase contratos de servicio: ABM, cronograma de cuotas, pagos y renovaciones.
type UseCase struct {
	tx           ports.TxRunner
	repos        ports.Repos
	recorder     *audit.Recorder
	now          func() time.Time
	expiringDays int
}

// NewUseCase construye el caso de uso. expiringDays <= 0 usa schedule.DefaultExpiringDays.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, recorder *audit.Recorder, now func() time.Time, expiringDays int) *UseCase {
	if now == nil {
		now = time.Now
	}
	if expiringDays <= 0 {
		expiringDays = schedule.DefaultExpiringDays
	}
	return &UseCase{tx: tx, repos: repos, recorder: recorder, now: now, expiringDays: expiringDays}
}

// Create registra el contrato y genera su cronograma.
func (uc *UseCase) Create(ctx context.Context, actor *entity.Actor, scope entity.UserScope, in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	var out *entity.ServiceContract
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		s, err := uc.build(ctx, r, scope, in)
		if err != nil {
			return err
		}
		s.ID = uuid.New().String()
		s.CreatedAt = uc.now()
		s.UpdatedAt = s.CreatedAt
		if err := r.Services.Create(ctx, s); err != nil {
			return fmt.Errorf("services.Create: %w", err)
		}
		if err := uc.regenerate(ctx, r, s); err != nil {
			return err
		}
		out = s
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Created(s))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(out), nil
}

// Update modifica el contrato. El cronograma se regenera solo si cambian frecuencia,
// fechas o costo; así no se pierden los pagos registrados.
func (uc *UseCase) Update(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string, in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	var out *entity.ServiceContract
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		s, err := uc.build(ctx, r, scope, in)
		if err != nil {
			return err
		}
		s.ID = current.ID
		s.CreatedAt = current.CreatedAt
		s.UpdatedAt = uc.now()
		if err := r.Services.Update(ctx, s); err != nil {
			return fmt.Errorf("services.Update: %w", err)
		}
		if scheduleChanged(current, s) {
			if err := uc.regenerate(ctx, r, s); err != nil {
				return err
			}
		}
		out = s
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Updated(current, s))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(out), nil
}

// Delete elimina el contrato con sus cuotas.
func (uc *UseCase) Delete(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		if err := r.Services.Delete(ctx, id); err != nil {
			return fmt.Errorf("services.Delete: %w", err)
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Deleted(current))
	})
}

// Get devuelve el contrato con estado efectivo, días al vencimiento y costo devengado.
func (uc *UseCase) Get(ctx context.Context, scope entity.UserScope, id string) (*dto.ServiceResponse, error) {
	s, err := uc.load(ctx, uc.repos, scope, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(s), nil
}

// List lista contratos. El filtro de estado usa el estado efectivo, no el guardado.
func (uc *UseCase) List(ctx context.Context, scope entity.UserScope, f dto.ServiceFilter) ([]dto.ServiceResponse, error) {
	items, err := uc.repos.Services.List(ctx, repository.ServiceFilter{
		Search:     f.Search,
		Frequency:  f.Frequency,
		CategoryID: f.CategoryID,
		Scope:      scope,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceResponse, 0, len(items))
	for _, s := range items {
		resp := uc.toResponse(s)
		if f.Status != "" && resp.EffectiveStatus != f.Status {
			continue
		}
		out = append(out, *resp)
	}
	return out, nil
}

// GenerateSchedule borra y vuelve a generar las cuotas del contrato. Es idempotente.
func (uc *UseCase) GenerateSchedule(ctx context.Context, scope entity.UserScope, id string) ([]dto.PaymentResponse, error) {
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		s, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		return uc.regenerate(ctx, r, s)
	})
	if err != nil {
		return nil, err
	}
	return uc.ListPayments(ctx, scope, id)
}

// ListPayments cuotas del contrato por fecha de vencimiento.
func (uc *UseCase) ListPayments(ctx context.Context, scope entity.UserScope, id string) ([]dto.PaymentResponse, error) {
	if _, err := uc.load(ctx, uc.repos, scope, id); err != nil {
		return nil, err
	}
	payments, err := uc.repos.Payments.ListByService(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// MarkPaid pasa una cuota de PENDING a PAID. Sin importe se usa el costo mensual vigente
// del contrato; sin fecha, la fecha de hoy.
func (uc *UseCase) MarkPaid(ctx context.Context, scope entity.UserScope, paymentID string, in dto.MarkPaidRequest) (*dto.PaymentResponse, error) {
	var out *entity.ServicePayment
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		p, err := r.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("services.MarkPaid: %w", err)
		}
		if p == nil {
			return domain.ErrNotFound
		}
		s, err := uc.load(ctx, r, scope, p.ServiceID)
		if err != nil {
			return err
		}
		if p.Status == entity.PaymentStatusPaid {
			return fmt.Errorf("la cuota ya está pagada: %w", domain.ErrConflict)
		}
		amount := s.MonthlyCost
		if in.PaidAmount != nil {
			if in.PaidAmount.IsNegative() {
				ve := &domain.ValidationError{}
				ve.AddField("paid_amount", domain.CodeInvalidPrice, "El importe no puede ser negativo")
				return ve
			}
			amount = *in.PaidAmount
		}
		paidOn := schedule.Day(uc.now())
		if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
			paidOn = schedule.Day(in.PaymentDate.Time)
		}
		p.Status = entity.PaymentStatusPaid
		p.PaidAmount = amount.Round(2)
		p.PaymentDate = &paidOn
		p.PaymentFileNumber = textnorm.Upper(in.PaymentFileNumber)
		if err := r.Payments.Update(ctx, p); err != nil {
			return fmt.Errorf("services.MarkPaid: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(out)
	return &resp, nil
}

// Renew extiende la fecha de fin, deja constancia en las notas y, solo para contratos
// mensuales, regenera el cronograma.
func (uc *UseCase) Renew(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string, in dto.RenewRequest) (*dto.ServiceResponse, error) {
	if in.NewEndDate.IsZero() {
		ve := &domain.ValidationError{}
		ve.AddField("new_end_date", domain.CodeRequired, "La nueva fecha de fin es obligatoria")
		return nil, ve
	}
	var out *entity.ServiceContract
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		end := schedule.Day(in.NewEndDate.Time)
		if end.Before(schedule.Day(current.StartDate)) {
			ve := &domain.ValidationError{}
			ve.AddField("new_end_date", domain.CodeInvalidRange, "La nueva fecha de fin es anterior al inicio")
			return ve
		}
		renewed := *current
		renewed.EndDate = &end
		renewed.Notes = renewalNote(current.Notes, end, textnorm.Upper(in.FileReference))
		renewed.UpdatedAt = uc.now()
		if err := r.Services.Update(ctx, &renewed); err != nil {
			return fmt.Errorf("services.Renew: %w", err)
		}
		if renewed.Frequency == entity.FrequencyMonthly {
			if err := uc.regenerate(ctx, r, &renewed); err != nil {
				return err
			}
		}
		out = &renewed
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Updated(current, &renewed))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(out), nil
}

func (uc *UseCase) regenerate(ctx context.Context, r ports.Repos, s *entity.ServiceContract) error {
	payments := schedule.Payments(s, uc.now(), func() string { return uuid.New().String() })
	if err := r.Payments.ReplaceForService(ctx, s.ID, payments); err != nil {
		return fmt.Errorf("services: regenerar cronograma: %w", err)
	}
	return nil
}

func (uc *UseCase) load(ctx context.Context, r ports.Repos, scope entity.UserScope, id string) (*entity.ServiceContract, error) {
	s, err := r.Services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("services: obtener contrato: %w", err)
	}
	if s == nil || !scope.Allows(s.CategoryID) {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// build valida y normaliza la entrada.
func (uc *UseCase) build(ctx context.Context, r ports.Repos, scope entity.UserScope, in dto.ServiceRequest) (*entity.ServiceContract, error) {
	ve := &domain.ValidationError{}
	s := &entity.ServiceContract{
		Name:               textnorm.Upper(in.Name),
		Description:        in.Description,
		Supplier:           textnorm.Upper(in.Supplier),
		Frequency:          in.Frequency,
		MonthlyCost:        in.MonthlyCost.Round(2),
		StartDate:          schedule.Day(in.StartDate.Time),
		EndDate:            in.EndDate.TimePtr(),
		Status:             in.Status,
		CategoryID:         in.CategoryID,
		ContractFileNumber: textnorm.Upper(in.ContractFileNumber),
		Notes:              in.Notes,
	}
	if s.Name == "" {
		ve.AddField("name", domain.CodeRequired, "El nombre del servicio es obligatorio")
	}
	if s.Frequency == "" {
		s.Frequency = entity.FrequencyMonthly
	}
	if !entity.ValidFrequency(s.Frequency) {
		ve.AddField("frequency", domain.CodeInvalidValue, fmt.Sprintf("Frecuencia desconocida: %s", s.Frequency))
	}
	if s.Status == "" {
		s.Status = entity.ServiceStatusActive
	}
	if !entity.ValidServiceStatus(s.Status) {
		ve.AddField("status", domain.CodeInvalidValue, fmt.Sprintf("Estado desconocido: %s", s.Status))
	}
	if s.MonthlyCost.IsNegative() {
		ve.AddField("monthly_cost", domain.CodeInvalidPrice, "El costo mensual no puede ser negativo")
	}
	if in.StartDate.IsZero() {
		ve.AddField("start_date", domain.CodeRequired, "La fecha de inicio es obligatoria")
	}
	if s.EndDate != nil {
		end := schedule.Day(*s.EndDate)
		s.EndDate = &end
		if end.Before(s.StartDate) {
			ve.AddField("end_date", domain.CodeInvalidRange, "La fecha de fin es anterior a la de inicio")
		}
	}
	if s.CategoryID != nil && *s.CategoryID == "" {
		s.CategoryID = nil
	}
	if s.CategoryID == nil && !scope.Unrestricted() {
		s.CategoryID = scope.CategoryID
	}
	if !scope.Allows(s.CategoryID) {
		ve.AddField("category_id", domain.CodeForbiddenCategory, "El rubro no corresponde al usuario")
	} else if s.CategoryID != nil {
		c, err := r.Categories.GetByID(ctx, *s.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("services: obtener rubro: %w", err)
		}
		if c == nil {
			ve.AddField("category_id", domain.CodeCategoryNotFound, "El rubro no existe")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return s, nil
}

func scheduleChanged(a, b *entity.ServiceContract) bool {
	return a.Frequency != b.Frequency ||
		!a.StartDate.Equal(b.StartDate) ||
		!entity.SameTime(a.EndDate, b.EndDate) ||
		!a.MonthlyCost.Equal(b.MonthlyCost)
}

func renewalNote(notes string, end time.Time, ref string) string {
	line := fmt.Sprintf("Renovado hasta %s", end.Format(dto.DateLayout))
	if ref != "" {
		line += " (expediente " + ref + ")"
	}
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

func (uc *UseCase) toResponse(s *entity.ServiceContract) *dto.ServiceResponse {
	today := uc.now()
	return &dto.ServiceResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		Supplier:           s.Supplier,
		Frequency:          s.Frequency,
		MonthlyCost:        s.MonthlyCost,
		StartDate:          dto.Date{Time: s.StartDate},
		EndDate:            dto.DatePtr(s.EndDate),
		Status:             s.Status,
		EffectiveStatus:    schedule.EffectiveStatus(s.Status, s.EndDate, today, uc.expiringDays),
		DaysToExpiry:       schedule.DaysToExpiry(s.EndDate, today),
		AccruedCost:        schedule.AccruedCost(s.Frequency, s.MonthlyCost, s.StartDate, s.EndDate),
		CategoryID:         s.CategoryID,
		ContractFileNumber: s.ContractFileNumber,
		Notes:              s.Notes,
	}
}

func toPaymentResponse(p *entity.ServicePayment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                p.ID,
		ServiceID:         p.ServiceID,
		DueDate:           dto.Date{Time: p.DueDate},
		Status:            p.Status,
		PaymentFileNumber: p.PaymentFileNumber,
		PaymentDate:       dto.DatePtr(p.PaymentDate),
		PaidAmount:        p.PaidAmount,
	}
}
