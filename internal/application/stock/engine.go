// Package stock calcula el stock disponible a partir de los libros de compras y entregas
// y valida los renglones de remito contra ese disponible.
package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Engine motor de stock sin estado: cada consulta suma los renglones de ambos libros.
// Recibe los repos por parámetro para poder operar dentro o fuera de una transacción.
type Engine struct{}

// NewEngine construye el motor.
func NewEngine() *Engine {
	return &Engine{}
}

// Available stock global del bien: comprado en todas las OC menos entregado en todos los remitos.
func (e *Engine) Available(ctx context.Context, r ports.Repos, goodID string) (int, error) {
	purchased, err := r.Stock.PurchasedByGood(ctx, goodID)
	if err != nil {
		return 0, fmt.Errorf("stock.Available: %w", err)
	}
	delivered, err := r.Stock.DeliveredByGood(ctx, goodID)
	if err != nil {
		return 0, fmt.Errorf("stock.Available: %w", err)
	}
	return purchased - delivered, nil
}

// AvailableForOrder stock del bien en una OC concreta. excludeLineIDs quita del lado entregado
// los renglones de remito indicados (el propio renglón al re-validar una edición).
func (e *Engine) AvailableForOrder(ctx context.Context, r ports.Repos, orderID, goodID string, excludeLineIDs ...string) (int, error) {
	purchased, err := r.Stock.PurchasedByOrder(ctx, orderID, goodID)
	if err != nil {
		return 0, fmt.Errorf("stock.AvailableForOrder: %w", err)
	}
	delivered, err := r.Stock.DeliveredByOrder(ctx, orderID, goodID, excludeLineIDs)
	if err != nil {
		return 0, fmt.Errorf("stock.AvailableForOrder: %w", err)
	}
	return purchased - delivered, nil
}

// ListOrdersWithStock OC con stock disponible del bien, en orden de inserción de sus renglones.
// El precio es el del primer renglón (orden, bien).
func (e *Engine) ListOrdersWithStock(ctx context.Context, r ports.Repos, goodID string, scope entity.UserScope) ([]entity.OrderWithStock, error) {
	return e.ordersWithStock(ctx, r, goodID, scope, nil, nil)
}

func (e *Engine) ordersWithStock(
	ctx context.Context,
	r ports.Repos,
	goodID string,
	scope entity.UserScope,
	exclude []string,
	pending map[orderGood]int,
) ([]entity.OrderWithStock, error) {
	lines, err := r.OrderLines.ListByGood(ctx, goodID)
	if err != nil {
		return nil, fmt.Errorf("stock.ListOrdersWithStock: %w", err)
	}

	seen := make(map[string]bool, len(lines))
	out := []entity.OrderWithStock{}
	for _, l := range lines {
		if seen[l.PurchaseOrderID] {
			continue
		}
		seen[l.PurchaseOrderID] = true

		order, err := r.Orders.GetByID(ctx, l.PurchaseOrderID)
		if err != nil {
			return nil, fmt.Errorf("stock.ListOrdersWithStock: %w", err)
		}
		if order == nil || !scope.Allows(order.CategoryID) {
			continue
		}
		available, err := e.AvailableForOrder(ctx, r, order.ID, goodID, exclude...)
		if err != nil {
			return nil, err
		}
		available -= pending[orderGood{order.ID, goodID}]
		if available <= 0 {
			continue
		}
		out = append(out, entity.OrderWithStock{Order: *order, Available: available, UnitPrice: l.UnitPrice})
	}
	return out, nil
}

// ResolveUnitPrice precio del renglón (orden, bien). Con lineNumber se prefiere el renglón con ese
// número; si no existe se usa cualquier renglón del par. found=false si la OC no tiene el bien.
func (e *Engine) ResolveUnitPrice(ctx context.Context, r ports.Repos, orderID, goodID string, lineNumber *int) (price decimal.Decimal, found bool, err error) {
	lines, err := r.OrderLines.ListByOrderAndGood(ctx, orderID, goodID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("stock.ResolveUnitPrice: %w", err)
	}
	if len(lines) == 0 {
		return decimal.Zero, false, nil
	}
	if lineNumber != nil {
		for _, l := range lines {
			if l.LineNumber == *lineNumber {
				return l.UnitPrice, true, nil
			}
		}
	}
	return lines[0].UnitPrice, true, nil
}

// OrderGoods bienes de una OC con su saldo, uno por bien, en orden de inserción.
func (e *Engine) OrderGoods(ctx context.Context, r ports.Repos, orderID string) ([]OrderGood, error) {
	lines, err := r.OrderLines.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("stock.OrderGoods: %w", err)
	}
	seen := make(map[string]bool, len(lines))
	out := []OrderGood{}
	for _, l := range lines {
		if seen[l.GoodID] {
			continue
		}
		seen[l.GoodID] = true
		available, err := e.AvailableForOrder(ctx, r, orderID, l.GoodID)
		if err != nil {
			return nil, err
		}
		out = append(out, OrderGood{GoodID: l.GoodID, GoodName: l.GoodName, UnitPrice: l.UnitPrice, Available: available})
	}
	return out, nil
}

// OrderGood bien de una OC con su saldo.
type OrderGood struct {
	GoodID    string
	GoodName  string
	UnitPrice decimal.Decimal
	Available int
}

// LockKeys bloquea los pares (orden, bien) en orden lexicográfico para evitar interbloqueos
// entre envíos concurrentes.
func (e *Engine) LockKeys(ctx context.Context, r ports.Repos, keys []OrderGoodKey) error {
	sorted := append([]OrderGoodKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].OrderID != sorted[j].OrderID {
			return sorted[i].OrderID < sorted[j].OrderID
		}
		return sorted[i].GoodID < sorted[j].GoodID
	})
	var prev OrderGoodKey
	for i, k := range sorted {
		if i > 0 && k == prev {
			continue
		}
		prev = k
		if err := r.Stock.LockOrderGood(ctx, k.OrderID, k.GoodID); err != nil {
			return fmt.Errorf("stock.LockKeys: %w", err)
		}
	}
	return nil
}

// OrderGoodKey identidad de un renglón de OC para el motor: (orden, bien).
type OrderGoodKey struct {
	OrderID string
	GoodID  string
}

type orderGood = OrderGoodKey

// Allocation resultado de validar un renglón: OC elegida y precio a aplicar.
type Allocation struct {
	OrderID   string
	GoodName  string
	UnitPrice decimal.Decimal
	Available int
}

// Batch valida los renglones de un mismo envío acumulando lo ya pedido por (orden, bien),
// de modo que dos renglones del mismo par no puedan consumir el mismo disponible.
type Batch struct {
	e       *Engine
	r       ports.Repos
	scope   entity.UserScope
	exclude []string
	pending map[orderGood]int
	locked  map[orderGood]bool
}

// NewBatch inicia la validación de un envío. excludeLineIDs son los renglones de remito
// existentes del envío que se re-validan.
func (e *Engine) NewBatch(r ports.Repos, scope entity.UserScope, excludeLineIDs []string) *Batch {
	return &Batch{
		e:       e,
		r:       r,
		scope:   scope,
		exclude: excludeLineIDs,
		pending: map[orderGood]int{},
		locked:  map[orderGood]bool{},
	}
}

// MarkLocked registra pares ya bloqueados por LockKeys.
func (b *Batch) MarkLocked(keys []OrderGoodKey) {
	for _, k := range keys {
		b.locked[k] = true
	}
}

// Validate comprueba un renglón. Devuelve *domain.LineError para errores corregibles por el
// usuario; error para fallas de infraestructura.
func (b *Batch) Validate(ctx context.Context, goodID string, quantity int, orderID *string) (*Allocation, *domain.LineError, error) {
	good, err := b.r.Goods.GetByID(ctx, goodID)
	if err != nil {
		return nil, nil, fmt.Errorf("stock.Validate: %w", err)
	}
	if good == nil {
		return nil, &domain.LineError{
			Code:    domain.CodeGoodNotFound,
			GoodID:  goodID,
			Message: fmt.Sprintf("El bien %s no existe", goodID),
		}, nil
	}
	if !entity.ValidQuantity(quantity) {
		return nil, &domain.LineError{
			Code:      domain.CodeInvalidQuantity,
			GoodID:    goodID,
			GoodName:  good.Name,
			Requested: quantity,
			Message:   fmt.Sprintf("La cantidad para %s debe estar entre 1 y %d", good.Name, entity.MaxQuantity),
		}, nil
	}

	var chosen string
	if orderID == nil || *orderID == "" {
		candidates, err := b.e.ordersWithStock(ctx, b.r, goodID, b.scope, b.exclude, b.pending)
		if err != nil {
			return nil, nil, err
		}
		switch len(candidates) {
		case 0:
			lines, err := b.r.OrderLines.ListByGood(ctx, goodID)
			if err != nil {
				return nil, nil, fmt.Errorf("stock.Validate: %w", err)
			}
			if len(lines) == 0 {
				return nil, domain.NewLineNotFound(goodID, good.Name), nil
			}
			return nil, domain.NewAvailableExceeded(goodID, good.Name, quantity, 0), nil
		case 1:
			chosen = candidates[0].Order.ID
		default:
			return nil, domain.NewOrderRequired(goodID, good.Name), nil
		}
	} else {
		order, err := b.r.Orders.GetByID(ctx, *orderID)
		if err != nil {
			return nil, nil, fmt.Errorf("stock.Validate: %w", err)
		}
		if order == nil || !b.scope.Allows(order.CategoryID) {
			return nil, &domain.LineError{
				Code:     domain.CodeOrderNotFound,
				GoodID:   goodID,
				GoodName: good.Name,
				Message:  fmt.Sprintf("La orden de compra indicada para %s no existe", good.Name),
			}, nil
		}
		chosen = order.ID
	}

	key := orderGood{chosen, goodID}
	if !b.locked[key] {
		if err := b.r.Stock.LockOrderGood(ctx, chosen, goodID); err != nil {
			return nil, nil, fmt.Errorf("stock.Validate: %w", err)
		}
		b.locked[key] = true
	}

	price, found, err := b.e.ResolveUnitPrice(ctx, b.r, chosen, goodID, nil)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, domain.NewLineNotFound(goodID, good.Name), nil
	}

	available, err := b.e.AvailableForOrder(ctx, b.r, chosen, goodID, b.exclude...)
	if err != nil {
		return nil, nil, err
	}
	available -= b.pending[key]
	if quantity > available {
		return nil, domain.NewAvailableExceeded(goodID, good.Name, quantity, available), nil
	}

	b.pending[key] += quantity
	return &Allocation{OrderID: chosen, GoodName: good.Name, UnitPrice: price, Available: available}, nil, nil
}
