package dto

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// AuditEntryResponse entrada de la bitácora.
type AuditEntryResponse struct {
	ID         string                        `json:"id"`
	UserID     *string                       `json:"user_id"`
	Action     string                        `json:"action"`
	Timestamp  time.Time                     `json:"timestamp"`
	TargetType string                        `json:"target_type"`
	TargetID   string                        `json:"target_id"`
	TargetRepr string                        `json:"target_repr"`
	Changes    map[string]entity.FieldChange `json:"changes"`
}

// AuditFilter filtros de consulta.
type AuditFilter struct {
	PageRequest
	TargetType string `query:"target_type"`
	TargetID   string `query:"target_id"`
}
