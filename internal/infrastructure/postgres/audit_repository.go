package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de mutaciones sobre PostgreSQL. Changes se guarda como JSONB.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de la bitácora.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada de bitácora.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	var changes []byte
	if e.Changes != nil {
		b, err := json.Marshal(e.Changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
		changes = b
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_log (id, user_id, action, timestamp, target_type, target_id, target_repr, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.Action, e.Timestamp, e.TargetType, e.TargetID, e.TargetRepr, changes,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List entradas por fecha descendente, filtradas por tipo e id de entidad.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, action, timestamp, target_type, target_id, target_repr, changes
		FROM audit_log
		WHERE ($1 = '' OR target_type = $1) AND ($2 = '' OR target_id = $2)
		ORDER BY timestamp DESC, id
		LIMIT $3 OFFSET $4`,
		f.TargetType, f.TargetID, limitArg(f.Limit), offsetArg(f.Offset),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	list := []*entity.AuditLogEntry{}
	for rows.Next() {
		var e entity.AuditLogEntry
		var changes []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Timestamp, &e.TargetType, &e.TargetID, &e.TargetRepr, &changes); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
