package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Recorder traduce los MutationEvent de los libros a entradas de bitácora.
// Se invoca dentro de la misma transacción que la mutación: un error aborta la transacción.
type Recorder struct {
	now func() time.Time
}

// NewRecorder construye el registrador. now nil usa time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

// Record escribe la entrada del evento. Un UPDATE sin cambios no genera entrada.
func (r *Recorder) Record(ctx context.Context, repo repository.AuditLogRepository, actor *entity.Actor, ev entity.MutationEvent) error {
	target := ev.Target()
	if target == nil {
		return fmt.Errorf("%w: evento sin entidad", domain.ErrAuditFailed)
	}

	entry := &entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     entity.ActorID(actor),
		Action:     ev.Action,
		Timestamp:  r.now(),
		TargetType: target.AuditType(),
		TargetID:   target.AuditID(),
		TargetRepr: target.AuditRepr(),
	}
	if ev.Action == entity.AuditUpdate {
		if ev.Before == nil || ev.After == nil {
			return fmt.Errorf("%w: UPDATE requiere estado anterior y nuevo", domain.ErrAuditFailed)
		}
		changes := Diff(ev.Before.AuditFields(), ev.After.AuditFields())
		if len(changes) == 0 {
			return nil
		}
		entry.Changes = changes
	}

	if err := repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditFailed, err)
	}
	return nil
}

// RecordAll registra varios eventos en orden; se detiene en el primer error.
func (r *Recorder) RecordAll(ctx context.Context, repo repository.AuditLogRepository, actor *entity.Actor, events []entity.MutationEvent) error {
	for _, ev := range events {
		if err := r.Record(ctx, repo, actor, ev); err != nil {
			return err
		}
	}
	return nil
}

// Diff devuelve los campos cuyo valor cambió. Un campo presente en un solo lado cuenta como cambio.
func Diff(before, after map[string]string) map[string]entity.FieldChange {
	keys := make([]string, 0, len(after))
	for k := range after {
		keys = append(keys, k)
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	changes := map[string]entity.FieldChange{}
	for _, k := range keys {
		if before[k] != after[k] {
			changes[k] = entity.FieldChange{Old: before[k], New: after[k]}
		}
	}
	return changes
}

// Created / Updated / Deleted construyen los eventos de cada acción.
func Created(after entity.Auditable) entity.MutationEvent {
	return entity.MutationEvent{Action: entity.AuditCreate, After: after}
}

func Updated(before, after entity.Auditable) entity.MutationEvent {
	return entity.MutationEvent{Action: entity.AuditUpdate, Before: before, After: after}
}

func Deleted(before entity.Auditable) entity.MutationEvent {
	return entity.MutationEvent{Action: entity.AuditDelete, Before: before}
}
