package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// AuditFilter filtros de consulta de la bitácora.
type AuditFilter struct {
	TargetType string
	TargetID   string
	Limit      int
	Offset     int
}

// AuditLogRepository puerto de persistencia para la bitácora.
type AuditLogRepository interface {
	Create(ctx context.Context, e *entity.AuditLogEntry) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditLogEntry, error)
}
