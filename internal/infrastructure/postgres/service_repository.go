package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.ServiceContractRepository = (*ServiceRepo)(nil)
	_ repository.ServicePaymentRepository  = (*PaymentRepo)(nil)
)

// ServiceRepo implementación del puerto ServiceContractRepository sobre PostgreSQL.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador de persistencia para contratos de servicio.
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

const serviceColumns = `id, name, description, supplier, frequency, monthly_cost, start_date, end_date, status,
	category_id, contract_file_number, notes, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*entity.ServiceContract, error) {
	var s entity.ServiceContract
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Supplier, &s.Frequency, &s.MonthlyCost, &s.StartDate, &s.EndDate,
		&s.Status, &s.CategoryID, &s.ContractFileNumber, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un contrato.
func (r *ServiceRepo) Create(ctx context.Context, s *entity.ServiceContract) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_contracts (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.Name, s.Description, s.Supplier, s.Frequency, s.MonthlyCost, s.StartDate, s.EndDate,
		s.Status, s.CategoryID, s.ContractFileNumber, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service contract: %w", err)
	}
	return nil
}

// Update actualiza un contrato.
func (r *ServiceRepo) Update(ctx context.Context, s *entity.ServiceContract) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE service_contracts SET name = $2, description = $3, supplier = $4, frequency = $5, monthly_cost = $6,
			start_date = $7, end_date = $8, status = $9, category_id = $10, contract_file_number = $11, notes = $12,
			updated_at = $13
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Supplier, s.Frequency, s.MonthlyCost, s.StartDate, s.EndDate,
		s.Status, s.CategoryID, s.ContractFileNumber, s.Notes, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service contract: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el contrato; las cuotas caen en cascada.
func (r *ServiceRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM service_contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service contract: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un contrato por ID.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.ServiceContract, error) {
	s, err := scanService(r.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM service_contracts WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service contract: %w", err)
	}
	return s, nil
}

// List lista contratos por nombre.
func (r *ServiceRepo) List(ctx context.Context, f repository.ServiceFilter) ([]*entity.ServiceContract, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+serviceColumns+` FROM service_contracts
		WHERE ($1::text IS NULL OR category_id = $1)
		  AND ($2::text IS NULL OR category_id = $2)
		  AND ($3 = '' OR frequency = $3)
		  AND ($4 = '' OR name ILIKE $4 OR supplier ILIKE $4)
		ORDER BY name, id`,
		scopeArg(f.Scope), f.CategoryID, f.Frequency, like(f.Search),
	)
	if err != nil {
		return nil, fmt.Errorf("list service contracts: %w", err)
	}
	defer rows.Close()
	list := []*entity.ServiceContract{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service contract: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// PaymentRepo implementación del puerto ServicePaymentRepository sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador de persistencia para cuotas.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, service_id, due_date, status, payment_file_number, payment_date, paid_amount`

func scanPayment(row interface{ Scan(...any) error }) (*entity.ServicePayment, error) {
	var p entity.ServicePayment
	if err := row.Scan(&p.ID, &p.ServiceID, &p.DueDate, &p.Status, &p.PaymentFileNumber, &p.PaymentDate, &p.PaidAmount); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReplaceForService borra las cuotas del contrato e inserta las nuevas. Debe ejecutarse dentro de una tx.
func (r *PaymentRepo) ReplaceForService(ctx context.Context, serviceID string, payments []*entity.ServicePayment) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM service_payments WHERE service_id = $1`, serviceID); err != nil {
		return fmt.Errorf("delete service payments: %w", err)
	}
	for _, p := range payments {
		_, err := r.q.Exec(ctx, `
			INSERT INTO service_payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, serviceID, p.DueDate, p.Status, p.PaymentFileNumber, p.PaymentDate, p.PaidAmount,
		)
		if err != nil {
			return fmt.Errorf("insert service payment: %w", err)
		}
	}
	return nil
}

// Update registra el estado de pago de una cuota.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.ServicePayment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE service_payments SET due_date = $2, status = $3, payment_file_number = $4, payment_date = $5, paid_amount = $6
		WHERE id = $1`,
		p.ID, p.DueDate, p.Status, p.PaymentFileNumber, p.PaymentDate, p.PaidAmount,
	)
	if err != nil {
		return fmt.Errorf("update service payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una cuota por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.ServicePayment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM service_payments WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service payment: %w", err)
	}
	return p, nil
}

// ListByService cuotas del contrato por fecha de vencimiento.
func (r *PaymentRepo) ListByService(ctx context.Context, serviceID string) ([]*entity.ServicePayment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+paymentColumns+` FROM service_payments WHERE service_id = $1 ORDER BY due_date, id`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list service payments: %w", err)
	}
	defer rows.Close()
	list := []*entity.ServicePayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
