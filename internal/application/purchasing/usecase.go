package purchasing

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// UseCase libro de compras: órdenes de compra y sus renglones.
type UseCase struct {
	tx       ports.TxRunner
	repos    ports.Repos
	engine   *stock.Engine
	recorder *audit.Recorder
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, engine *stock.Engine, recorder *audit.Recorder, now func() time.Time) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{tx: tx, repos: repos, engine: engine, recorder: recorder, now: now}
}

// Create registra una OC con sus renglones. El número se compara sin distinguir mayúsculas.
func (uc *UseCase) Create(ctx context.Context, actor *entity.Actor, scope entity.UserScope, in dto.OrderRequest) (*dto.OrderResponse, error) {
	var id string
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		order, ve, err := uc.buildOrder(ctx, r, scope, in, "")
		if err != nil {
			return err
		}
		for i, ln := range in.Lines {
			if ln.ID != "" {
				ve.AddField(fmt.Sprintf("lines[%d].id", i), domain.CodeLineNotFound, "Un renglón nuevo no lleva id")
			}
		}
		names, err := validateLines(ctx, r, in.Lines, ve)
		if err != nil {
			return err
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		order.ID = uuid.New().String()
		order.CreatedAt = uc.now()
		order.UpdatedAt = order.CreatedAt
		if err := r.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("purchasing.Create: %w", err)
		}
		events := []entity.MutationEvent{audit.Created(order)}
		for i, ln := range in.Lines {
			line := newLine(order.ID, ln, i)
			line.GoodName = names[ln.GoodID]
			if err := r.OrderLines.Create(ctx, line); err != nil {
				return fmt.Errorf("purchasing.Create line: %w", err)
			}
			events = append(events, audit.Created(line))
		}
		id = order.ID
		return uc.recorder.RecordAll(ctx, r.Audit, actor, events)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, scope, id)
}

// Update edita cabecera y renglones. Una edición que deja lo comprado de (orden, bien) por debajo
// de lo ya entregado se rechaza con BELOW_DELIVERED.
func (uc *UseCase) Update(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string, in dto.OrderRequest) (*dto.OrderResponse, error) {
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		existing, err := r.OrderLines.ListByOrder(ctx, id)
		if err != nil {
			return fmt.Errorf("purchasing.Update: %w", err)
		}
		byID := make(map[string]*entity.PurchaseOrderLine, len(existing))
		for _, l := range existing {
			byID[l.ID] = l
		}

		order, ve, err := uc.buildOrder(ctx, r, scope, in, id)
		if err != nil {
			return err
		}
		for i, lineID := range in.DeleteLineIDs {
			if _, ok := byID[lineID]; !ok {
				ve.AddField(fmt.Sprintf("delete_line_ids[%d]", i), domain.CodeLineNotFound, "El renglón no pertenece a la orden")
			}
		}
		seen := make(map[string]bool, len(in.Lines))
		for i, ln := range in.Lines {
			if ln.ID == "" {
				continue
			}
			if _, ok := byID[ln.ID]; !ok || slices.Contains(in.DeleteLineIDs, ln.ID) {
				ve.AddField(fmt.Sprintf("lines[%d].id", i), domain.CodeLineNotFound, "El renglón no pertenece a la orden")
				continue
			}
			if seen[ln.ID] {
				ve.AddField(fmt.Sprintf("lines[%d].id", i), domain.CodeDuplicateLine, "El renglón se envió más de una vez")
			}
			seen[ln.ID] = true
		}
		names, err := validateLines(ctx, r, in.Lines, ve)
		if err != nil {
			return err
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		// pares (orden, bien) cuya cantidad comprada puede bajar, con el índice que los tocó
		touched := map[stock.OrderGoodKey]int{}
		var keys []stock.OrderGoodKey
		touch := func(goodID string, idx int) {
			k := stock.OrderGoodKey{OrderID: id, GoodID: goodID}
			if _, ok := touched[k]; !ok {
				keys = append(keys, k)
			}
			touched[k] = idx
		}
		for _, lineID := range in.DeleteLineIDs {
			touch(byID[lineID].GoodID, -1)
		}
		for i, ln := range in.Lines {
			if ln.ID != "" {
				touch(byID[ln.ID].GoodID, i)
			}
		}
		if err := uc.engine.LockKeys(ctx, r, keys); err != nil {
			return err
		}

		order.ID = current.ID
		order.CreatedAt = current.CreatedAt
		order.UpdatedAt = uc.now()
		if err := r.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("purchasing.Update: %w", err)
		}
		events := []entity.MutationEvent{audit.Updated(current, order)}

		for _, lineID := range in.DeleteLineIDs {
			if err := r.OrderLines.Delete(ctx, lineID); err != nil {
				return fmt.Errorf("purchasing.Update delete line: %w", err)
			}
			events = append(events, audit.Deleted(byID[lineID]))
		}
		for i, ln := range in.Lines {
			line := newLine(id, ln, i)
			line.GoodName = names[ln.GoodID]
			if ln.ID == "" {
				if err := r.OrderLines.Create(ctx, line); err != nil {
					return fmt.Errorf("purchasing.Update create line: %w", err)
				}
				events = append(events, audit.Created(line))
				continue
			}
			line.ID = ln.ID
			if err := r.OrderLines.Update(ctx, line); err != nil {
				return fmt.Errorf("purchasing.Update line: %w", err)
			}
			events = append(events, audit.Updated(byID[ln.ID], line))
		}

		for _, k := range keys {
			available, err := uc.engine.AvailableForOrder(ctx, r, k.OrderID, k.GoodID)
			if err != nil {
				return err
			}
			if available >= 0 {
				continue
			}
			good, err := r.Goods.GetByID(ctx, k.GoodID)
			if err != nil {
				return err
			}
			name := k.GoodID
			if good != nil {
				name = good.Name
			}
			le := &domain.LineError{
				Code:      domain.CodeBelowDelivered,
				GoodID:    k.GoodID,
				GoodName:  name,
				Available: available,
				Message:   fmt.Sprintf("La cantidad comprada de %s queda por debajo de lo ya entregado", name),
			}
			if idx := touched[k]; idx >= 0 {
				ve.AddLine(idx, le)
			} else {
				ve.AddField("delete_line_ids", domain.CodeBelowDelivered, le.Message)
			}
		}
		if err := ve.OrNil(); err != nil {
			return err
		}
		return uc.recorder.RecordAll(ctx, r.Audit, actor, events)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, scope, id)
}

// Delete elimina la OC y sus renglones. Los remitos y renglones de remito que la referencian
// sobreviven sin OC.
func (uc *UseCase) Delete(ctx context.Context, actor *entity.Actor, scope entity.UserScope, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := uc.load(ctx, r, scope, id)
		if err != nil {
			return err
		}
		lines, err := r.OrderLines.ListByOrder(ctx, id)
		if err != nil {
			return fmt.Errorf("purchasing.Delete: %w", err)
		}
		events := make([]entity.MutationEvent, 0, len(lines)+1)
		for _, l := range lines {
			events = append(events, audit.Deleted(l))
		}
		events = append(events, audit.Deleted(current))
		if err := r.Orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("purchasing.Delete: %w", err)
		}
		return uc.recorder.RecordAll(ctx, r.Audit, actor, events)
	})
}

// Get devuelve la OC con sus renglones.
func (uc *UseCase) Get(ctx context.Context, scope entity.UserScope, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, uc.repos, scope, id)
	if err != nil {
		return nil, err
	}
	lines, err := uc.repos.OrderLines.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(o, lines), nil
}

// List listado paginado ordenado por fecha de inicio descendente.
func (uc *UseCase) List(ctx context.Context, scope entity.UserScope, search string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	items, total, err := uc.repos.Orders.List(ctx, repository.OrderFilter{
		Search: search,
		Scope:  scope,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, o := range items {
		lines, err := uc.repos.OrderLines.ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		resp := toResponse(o, lines)
		resp.Lines = nil
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

// Goods bienes de la OC con su saldo (para cargar renglones de remito).
func (uc *UseCase) Goods(ctx context.Context, scope entity.UserScope, id string) ([]dto.OrderGoodResponse, error) {
	if _, err := uc.load(ctx, uc.repos, scope, id); err != nil {
		return nil, err
	}
	goods, err := uc.engine.OrderGoods(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderGoodResponse, 0, len(goods))
	for _, g := range goods {
		out = append(out, dto.OrderGoodResponse{GoodID: g.GoodID, GoodName: g.GoodName, UnitPrice: g.UnitPrice, Available: g.Available})
	}
	return out, nil
}

// OrdersWithStock OC con stock disponible de un bien.
func (uc *UseCase) OrdersWithStock(ctx context.Context, scope entity.UserScope, goodID string) ([]dto.OrderWithStockResponse, error) {
	orders, err := uc.engine.ListOrdersWithStock(ctx, uc.repos, goodID, scope)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderWithStockResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.OrderWithStockResponse{
			OrderID:   o.Order.ID,
			Number:    o.Order.Number,
			Supplier:  o.Order.Supplier,
			Available: o.Available,
			UnitPrice: o.UnitPrice,
		})
	}
	return out, nil
}

// Price precio unitario de (orden, bien); ErrNotFound si la OC no incluye el bien.
func (uc *UseCase) Price(ctx context.Context, scope entity.UserScope, orderID, goodID string) (*dto.PriceResponse, error) {
	if _, err := uc.load(ctx, uc.repos, scope, orderID); err != nil {
		return nil, err
	}
	price, found, err := uc.engine.ResolveUnitPrice(ctx, uc.repos, orderID, goodID, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &dto.PriceResponse{UnitPrice: price}, nil
}

func (uc *UseCase) load(ctx context.Context, r ports.Repos, scope entity.UserScope, id string) (*entity.PurchaseOrder, error) {
	o, err := r.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("purchasing: obtener OC: %w", err)
	}
	if o == nil || !scope.Allows(o.CategoryID) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// buildOrder normaliza y valida la cabecera. selfID excluye la propia OC del control de duplicados.
func (uc *UseCase) buildOrder(ctx context.Context, r ports.Repos, scope entity.UserScope, in dto.OrderRequest, selfID string) (*entity.PurchaseOrder, *domain.ValidationError, error) {
	ve := &domain.ValidationError{}
	order := &entity.PurchaseOrder{
		Number:     textnorm.Upper(in.Number),
		StartDate:  in.StartDate.Time,
		EndDate:    in.EndDate.TimePtr(),
		Supplier:   textnorm.Upper(in.Supplier),
		CategoryID: in.CategoryID,
	}
	if order.Number == "" {
		ve.AddField("number", domain.CodeRequired, "El número de orden es obligatorio")
	} else {
		dup, err := r.Orders.GetByNumber(ctx, order.Number)
		if err != nil {
			return nil, nil, fmt.Errorf("purchasing: buscar número: %w", err)
		}
		if dup != nil && dup.ID != selfID {
			ve.AddField("number", domain.CodeDuplicateNumber, fmt.Sprintf("Ya existe la orden de compra %s", order.Number))
		}
	}
	if order.StartDate.IsZero() {
		ve.AddField("start_date", domain.CodeRequired, "La fecha de inicio es obligatoria")
	}
	if order.EndDate != nil && order.EndDate.Before(order.StartDate) {
		ve.AddField("end_date", domain.CodeInvalidRange, "La fecha de fin es anterior a la de inicio")
	}
	if order.CategoryID != nil && *order.CategoryID == "" {
		order.CategoryID = nil
	}
	if order.CategoryID == nil && !scope.Unrestricted() {
		order.CategoryID = scope.CategoryID
	}
	if !scope.Allows(order.CategoryID) {
		ve.AddField("category_id", domain.CodeForbiddenCategory, "El rubro no corresponde al usuario")
	} else if order.CategoryID != nil {
		c, err := r.Categories.GetByID(ctx, *order.CategoryID)
		if err != nil {
			return nil, nil, fmt.Errorf("purchasing: obtener rubro: %w", err)
		}
		if c == nil {
			ve.AddField("category_id", domain.CodeCategoryNotFound, "El rubro no existe")
		}
	}
	return order, ve, nil
}

// validateLines agrega a ve los errores de cantidad, precio y bien inexistente y devuelve
// los nombres de los bienes por id.
func validateLines(ctx context.Context, r ports.Repos, lines []dto.OrderLineInput, ve *domain.ValidationError) (map[string]string, error) {
	names := make(map[string]string, len(lines))
	for i, ln := range lines {
		good, err := r.Goods.GetByID(ctx, ln.GoodID)
		if err != nil {
			return nil, fmt.Errorf("purchasing: obtener bien: %w", err)
		}
		if good == nil {
			ve.AddLine(i, &domain.LineError{
				Code:    domain.CodeGoodNotFound,
				GoodID:  ln.GoodID,
				Message: fmt.Sprintf("El bien %s no existe", ln.GoodID),
			})
			continue
		}
		names[good.ID] = good.Name
		if !entity.ValidQuantity(ln.Quantity) {
			ve.AddLine(i, &domain.LineError{
				Code:      domain.CodeInvalidQuantity,
				GoodID:    good.ID,
				GoodName:  good.Name,
				Requested: ln.Quantity,
				Message:   fmt.Sprintf("La cantidad para %s debe estar entre 1 y %d", good.Name, entity.MaxQuantity),
			})
		}
		if ln.UnitPrice.IsNegative() {
			ve.AddLine(i, &domain.LineError{
				Code:     domain.CodeInvalidPrice,
				GoodID:   good.ID,
				GoodName: good.Name,
				Message:  fmt.Sprintf("El precio de %s no puede ser negativo", good.Name),
			})
		}
	}
	return names, nil
}

func newLine(orderID string, ln dto.OrderLineInput, idx int) *entity.PurchaseOrderLine {
	number := ln.LineNumber
	if number <= 0 {
		number = idx + 1
	}
	price := ln.UnitPrice.Round(2)
	return &entity.PurchaseOrderLine{
		ID:              uuid.New().String(),
		PurchaseOrderID: orderID,
		GoodID:          ln.GoodID,
		Quantity:        ln.Quantity,
		UnitPrice:       price,
		TotalPrice:      entity.LineTotal(ln.Quantity, price),
		LineNumber:      number,
	}
}

func toResponse(o *entity.PurchaseOrder, lines []*entity.PurchaseOrderLine) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:         o.ID,
		Number:     o.Number,
		StartDate:  dto.Date{Time: o.StartDate},
		EndDate:    dto.DatePtr(o.EndDate),
		Supplier:   o.Supplier,
		CategoryID: o.CategoryID,
		Lines:      make([]dto.OrderLineResponse, 0, len(lines)),
		Total:      decimal.Zero,
	}
	for _, l := range lines {
		resp.Total = resp.Total.Add(l.TotalPrice)
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:         l.ID,
			GoodID:     l.GoodID,
			GoodName:   l.GoodName,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			LineNumber: l.LineNumber,
		})
	}
	return resp
}
