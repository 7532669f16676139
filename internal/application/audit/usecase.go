package audit

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase consulta de la bitácora.
type UseCase struct {
	repo repository.AuditLogRepository
}

// NewUseCase construye el caso de uso de consulta.
func NewUseCase(repo repository.AuditLogRepository) *UseCase {
	return &UseCase{repo: repo}
}

// List devuelve las entradas más recientes primero.
func (uc *UseCase) List(ctx context.Context, f dto.AuditFilter) ([]dto.AuditEntryResponse, error) {
	f.DefaultPage()
	entries, err := uc.repo.List(ctx, repository.AuditFilter{
		TargetType: f.TargetType,
		TargetID:   f.TargetID,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     e.Action,
			Timestamp:  e.Timestamp,
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			TargetRepr: e.TargetRepr,
			Changes:    e.Changes,
		})
	}
	return out, nil
}
