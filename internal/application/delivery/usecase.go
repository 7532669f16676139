package delivery

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// UseCase libro de entregas: alta, edición y baja de remitos con sus renglones como una unidad.
// Cada operación corre en una transacción; si un renglón falla no se escribe nada.
type UseCase struct {
	tx       ports.TxRunner
	repos    ports.Repos
	engine   *stock.Engine
	recorder *audit.Recorder
	renderer NoteRenderer
	observer RejectionObserver
	now      func() time.Time
}

// NewUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewUseCase(
	tx ports.TxRunner,
	repos ports.Repos,
	engine *stock.Engine,
	recorder *audit.Recorder,
	renderer NoteRenderer,
	observer RejectionObserver,
	now func() time.Time,
) *UseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if now == nil {
		now = time.Now
	}
	return &UseCase{
		tx:       tx,
		repos:    repos,
		engine:   engine,
		recorder: recorder,
		renderer: renderer,
		observer: observer,
		now:      now,
	}
}

// Create registra un remito con todos sus renglones. El precio de cada renglón sale de la OC.
func (uc *UseCase) Create(ctx context.Context, actor *entity.Actor, scope entity.UserScope, in dto.DeliveryRequest) (*dto.DeliveryResponse, error) {
	ve := validateHeader(in)
	if len(in.Lines) == 0 {
		ve.AddField("lines", domain.CodeRequired, "El remito debe tener al menos un renglón")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var id string
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		hint, err := uc.orderHint(ctx, r, scope, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		allocs, err := uc.validateLines(ctx, r, scope, hint, in.Lines, nil)
		if err != nil {
			return err
		}

		d := &entity.Delivery{
			ID:              uuid.New().String(),
			Timestamp:       uc.now(),
			AreaOrPerson:    textnorm.Upper(in.AreaOrPerson),
			Notes:           textnorm.Upper(in.Notes),
			PurchaseOrderID: hint,
		}
		if err := r.Deliveries.Create(ctx, d); err != nil {
			return fmt.Errorf("delivery.Create: %w", err)
		}
		events := []entity.MutationEvent{audit.Created(d)}
		for i, ln := range in.Lines {
			line := newLine(d.ID, ln, allocs[i])
			if err := r.DeliveryLines.Create(ctx, line); err != nil {
				return fmt.Errorf("delivery.Create line: %w", err)
			}
			events = append(events, audit.Created(line))
		}
		if err := uc.recorder.RecordAll(ctx, r.Audit, actor, events); err != nil {
			return err
		}
		id = d.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, scope, id)
}

// Update edita cabecera y renglones. Primero aplica las bajas, luego re-valida cada renglón
// enviado excluyendo su propia cantidad previa. Renglones existentes no enviados quedan igual.
func (uc *UseCase) Update(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string, in dto.DeliveryRequest) (*dto.DeliveryResponse, error) {
	if err := validateHeader(in).OrNil(); err != nil {
		return nil, err
	}

	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, existing, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.DeliveryLine, len(existing))
		for _, l := range existing {
			byID[l.ID] = l
		}

		ve := &domain.ValidationError{}
		for i, lineID := range in.DeleteLineIDs {
			if _, ok := byID[lineID]; !ok {
				ve.AddField(fmt.Sprintf("delete_line_ids[%d]", i), domain.CodeLineNotFound, "El renglón no pertenece al remito")
			}
		}
		var exclude []string
		seen := make(map[string]bool, len(in.Lines))
		for i, ln := range in.Lines {
			if ln.ID == "" {
				continue
			}
			if _, ok := byID[ln.ID]; !ok || slices.Contains(in.DeleteLineIDs, ln.ID) {
				ve.AddField(fmt.Sprintf("lines[%d].id", i), domain.CodeLineNotFound, "El renglón no pertenece al remito")
				continue
			}
			if seen[ln.ID] {
				ve.AddField(fmt.Sprintf("lines[%d].id", i), domain.CodeDuplicateLine, "El renglón se envió más de una vez")
				continue
			}
			seen[ln.ID] = true
			exclude = append(exclude, ln.ID)
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		var events []entity.MutationEvent
		for _, lineID := range in.DeleteLineIDs {
			if err := r.DeliveryLines.Delete(ctx, lineID); err != nil {
				return fmt.Errorf("delivery.Update delete line: %w", err)
			}
			events = append(events, audit.Deleted(byID[lineID]))
		}

		hint, err := uc.orderHint(ctx, r, scope, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		allocs, err := uc.validateLines(ctx, r, scope, hint, in.Lines, exclude)
		if err != nil {
			return err
		}

		for i, ln := range in.Lines {
			if ln.ID == "" {
				line := newLine(current.ID, ln, allocs[i])
				if err := r.DeliveryLines.Create(ctx, line); err != nil {
					return fmt.Errorf("delivery.Update create line: %w", err)
				}
				events = append(events, audit.Created(line))
				continue
			}
			before := byID[ln.ID]
			after := newLine(current.ID, ln, allocs[i])
			after.ID = before.ID
			if err := r.DeliveryLines.Update(ctx, after); err != nil {
				return fmt.Errorf("delivery.Update line: %w", err)
			}
			events = append(events, audit.Updated(before, after))
		}

		updated := *current
		updated.AreaOrPerson = textnorm.Upper(in.AreaOrPerson)
		updated.Notes = textnorm.Upper(in.Notes)
		updated.PurchaseOrderID = hint
		if err := r.Deliveries.Update(ctx, &updated); err != nil {
			return fmt.Errorf("delivery.Update: %w", err)
		}
		events = append(events, audit.Updated(current, &updated))
		return uc.recorder.RecordAll(ctx, r.Audit, actor, events)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, scope, id)
}

// Delete elimina el remito y sus renglones; el disponible se recupera solo al recalcular.
func (uc *UseCase) Delete(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, lines, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		events := make([]entity.MutationEvent, 0, len(lines)+1)
		for _, l := range lines {
			events = append(events, audit.Deleted(l))
		}
		events = append(events, audit.Deleted(current))
		if err := r.Deliveries.Delete(ctx, id); err != nil {
			return fmt.Errorf("delivery.Delete: %w", err)
		}
		return uc.recorder.RecordAll(ctx, r.Audit, actor, events)
	})
}

// Get devuelve el remito con renglones y total.
func (uc *UseCase) Get(ctx context.Context, scope entity.UserScope, id string) (*dto.DeliveryResponse, error) {
	d, lines, err := uc.load(ctx, uc.repos, scope, id)
	if err != nil {
		return nil, err
	}
	return toResponse(d, lines), nil
}

// List listado paginado, más recientes primero.
func (uc *UseCase) List(ctx context.Context, scope entity.UserScope, search string, page dto.PageRequest) (*dto.DeliveryListResponse, error) {
	page.DefaultPage()
	items, total, err := uc.repos.Deliveries.List(ctx, repository.DeliveryFilter{
		Search: search,
		Scope:  scope,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.DeliveryListResponse{
		Items: make([]dto.DeliveryResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, d := range items {
		lines, err := uc.repos.DeliveryLines.ListByDelivery(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		resp := toResponse(d, lines)
		resp.Lines = nil
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

// NotePDF genera el PDF del remito.
func (uc *UseCase) NotePDF(ctx context.Context, scope entity.UserScope, id string) ([]byte, string, error) {
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("delivery: generador PDF no configurado")
	}
	resp, err := uc.Get(ctx, scope, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.renderer.RenderDeliveryNote(resp)
	if err != nil {
		return nil, "", fmt.Errorf("delivery: generar PDF: %w", err)
	}
	return pdf, fmt.Sprintf("remito-%s.pdf", resp.ID), nil
}

func (uc *UseCase) load(ctx context.Context, r ports.Repos, scope entity.UserScope, id string) (*entity.Delivery, []*entity.DeliveryLine, error) {
	d, err := r.Deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("delivery: obtener remito: %w", err)
	}
	if d == nil {
		return nil, nil, domain.ErrNotFound
	}
	lines, err := r.DeliveryLines.ListByDelivery(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("delivery: obtener renglones: %w", err)
	}
	visible, err := inScope(ctx, r, scope, d, lines)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		return nil, nil, domain.ErrNotFound
	}
	return d, lines, nil
}

// inScope replica la regla de visibilidad de los listados: OC del remito o de algún renglón.
func inScope(ctx context.Context, r ports.Repos, scope entity.UserScope, d *entity.Delivery, lines []*entity.DeliveryLine) (bool, error) {
	if scope.Unrestricted() {
		return true, nil
	}
	refs := []*string{d.PurchaseOrderID}
	for _, l := range lines {
		refs = append(refs, l.PurchaseOrderID)
	}
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		o, err := r.Orders.GetByID(ctx, *ref)
		if err != nil {
			return false, err
		}
		if o != nil && scope.Allows(o.CategoryID) {
			return true, nil
		}
	}
	return false, nil
}

func (uc *UseCase) orderHint(ctx context.Context, r ports.Repos, scope entity.UserScope, orderID *string) (*string, error) {
	if orderID == nil || *orderID == "" {
		return nil, nil
	}
	o, err := r.Orders.GetByID(ctx, *orderID)
	if err != nil {
		return nil, fmt.Errorf("delivery: obtener OC: %w", err)
	}
	if o == nil || !scope.Allows(o.CategoryID) {
		ve := &domain.ValidationError{}
		ve.AddField("purchase_order_id", domain.CodeOrderNotFound, "La orden de compra no existe")
		return nil, ve
	}
	id := o.ID
	return &id, nil
}

// validateLines valida todos los renglones y acumula los errores; no escribe nada.
func (uc *UseCase) validateLines(
	ctx context.Context,
	r ports.Repos,
	scope entity.UserScope,
	hint *string,
	lines []dto.DeliveryLineInput,
	exclude []string,
) ([]*stock.Allocation, error) {
	var keys []stock.OrderGoodKey
	for _, ln := range lines {
		if o := lineOrder(ln, hint); o != nil {
			keys = append(keys, stock.OrderGoodKey{OrderID: *o, GoodID: ln.GoodID})
		}
	}
	if err := uc.engine.LockKeys(ctx, r, keys); err != nil {
		return nil, err
	}
	batch := uc.engine.NewBatch(r, scope, exclude)
	batch.MarkLocked(keys)

	ve := &domain.ValidationError{}
	allocs := make([]*stock.Allocation, len(lines))
	for i, ln := range lines {
		alloc, lineErr, err := batch.Validate(ctx, ln.GoodID, ln.Quantity, lineOrder(ln, hint))
		if err != nil {
			return nil, err
		}
		if lineErr != nil {
			uc.observer.DeliveryLineRejected(lineErr.Code)
			ve.AddLine(i, lineErr)
			continue
		}
		allocs[i] = alloc
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return allocs, nil
}

func lineOrder(ln dto.DeliveryLineInput, hint *string) *string {
	if ln.PurchaseOrderID != nil && *ln.PurchaseOrderID != "" {
		return ln.PurchaseOrderID
	}
	return hint
}

func newLine(deliveryID string, ln dto.DeliveryLineInput, alloc *stock.Allocation) *entity.DeliveryLine {
	orderID := alloc.OrderID
	return &entity.DeliveryLine{
		ID:              uuid.New().String(),
		DeliveryID:      deliveryID,
		PurchaseOrderID: &orderID,
		GoodID:          ln.GoodID,
		GoodName:        alloc.GoodName,
		Quantity:        ln.Quantity,
		UnitPrice:       alloc.UnitPrice,
		TotalPrice:      entity.LineTotal(ln.Quantity, alloc.UnitPrice),
	}
}

func validateHeader(in dto.DeliveryRequest) *domain.ValidationError {
	ve := &domain.ValidationError{}
	if textnorm.Upper(in.AreaOrPerson) == "" {
		ve.AddField("area_or_person", domain.CodeRequired, "El área o persona es obligatoria")
	}
	return ve
}

func toResponse(d *entity.Delivery, lines []*entity.DeliveryLine) *dto.DeliveryResponse {
	resp := &dto.DeliveryResponse{
		ID:              d.ID,
		Timestamp:       d.Timestamp,
		AreaOrPerson:    d.AreaOrPerson,
		Notes:           d.Notes,
		PurchaseOrderID: d.PurchaseOrderID,
		Lines:           make([]dto.DeliveryLineResponse, 0, len(lines)),
		Total:           entity.DeliveryTotal(lines),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.DeliveryLineResponse{
			ID:              l.ID,
			GoodID:          l.GoodID,
			GoodName:        l.GoodName,
			PurchaseOrderID: l.PurchaseOrderID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			TotalPrice:      l.TotalPrice,
		})
	}
	return resp
}
