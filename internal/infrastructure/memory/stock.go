package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*stockRepo)(nil)

type stockRepo struct{ *view }

func (r *stockRepo) PurchasedByGood(_ context.Context, goodID string) (int, error) {
	defer r.lock()()
	total := 0
	for _, l := range r.t().orderLines {
		if l.GoodID == goodID {
			total += l.Quantity
		}
	}
	return total, nil
}

func (r *stockRepo) DeliveredByGood(_ context.Context, goodID string) (int, error) {
	defer r.lock()()
	total := 0
	for _, l := range r.t().deliveryLines {
		if l.GoodID == goodID {
			total += l.Quantity
		}
	}
	return total, nil
}

func (r *stockRepo) PurchasedByOrder(_ context.Context, orderID, goodID string) (int, error) {
	defer r.lock()()
	total := 0
	for _, l := range r.t().orderLines {
		if l.PurchaseOrderID == orderID && l.GoodID == goodID {
			total += l.Quantity
		}
	}
	return total, nil
}

func (r *stockRepo) DeliveredByOrder(_ context.Context, orderID, goodID string, excludeLineIDs []string) (int, error) {
	defer r.lock()()
	total := 0
	for _, l := range r.t().deliveryLines {
		if l.PurchaseOrderID == nil || *l.PurchaseOrderID != orderID || l.GoodID != goodID {
			continue
		}
		if slices.Contains(excludeLineIDs, l.ID) {
			continue
		}
		total += l.Quantity
	}
	return total, nil
}

// LockOrderGood no hace nada: la transacción en memoria ya tiene el lock global.
func (r *stockRepo) LockOrderGood(context.Context, string, string) error {
	return nil
}
