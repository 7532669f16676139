// Package memory implementa todos los puertos de persistencia en memoria. Se usa en las pruebas
// de casos de uso y con DB_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store datos en memoria en orden de inserción. Un único mutex serializa las transacciones,
// lo que equivale a bloquear cualquier (orden, bien).
type Store struct {
	mu sync.Mutex
	d  tables

	auditErr error
}

type tables struct {
	categories    []entity.Category
	goods         []entity.Good
	orders        []entity.PurchaseOrder
	orderLines    []entity.PurchaseOrderLine
	deliveries    []entity.Delivery
	deliveryLines []entity.DeliveryLine
	services      []entity.ServiceContract
	payments      []entity.ServicePayment
	audit         []entity.AuditLogEntry
	users         []entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{}
}

// FailAuditWith hace que toda escritura de bitácora falle con err (nil restablece).
func (s *Store) FailAuditWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditErr = err
}

// Repos devuelve repositorios fuera de transacción; cada llamada toma el lock.
func (s *Store) Repos() ports.Repos {
	return s.repos(&view{s: s})
}

// Run ejecuta fn con el lock tomado; si fn falla se restaura la copia previa.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r ports.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(ctx, s.repos(&view{s: s, inTx: true})); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) repos(v *view) ports.Repos {
	return ports.Repos{
		Categories:    &categoryRepo{v},
		Goods:         &goodRepo{v},
		Orders:        &orderRepo{v},
		OrderLines:    &orderLineRepo{v},
		Deliveries:    &deliveryRepo{v},
		DeliveryLines: &deliveryLineRepo{v},
		Stock:         &stockRepo{v},
		Services:      &serviceRepo{v},
		Payments:      &paymentRepo{v},
		Audit:         &auditRepo{v},
		Users:         &userRepo{v},
		Reports:       &reportRepo{v},
	}
}

func (t tables) clone() tables {
	return tables{
		categories:    append([]entity.Category(nil), t.categories...),
		goods:         append([]entity.Good(nil), t.goods...),
		orders:        append([]entity.PurchaseOrder(nil), t.orders...),
		orderLines:    append([]entity.PurchaseOrderLine(nil), t.orderLines...),
		deliveries:    append([]entity.Delivery(nil), t.deliveries...),
		deliveryLines: append([]entity.DeliveryLine(nil), t.deliveryLines...),
		services:      append([]entity.ServiceContract(nil), t.services...),
		payments:      append([]entity.ServicePayment(nil), t.payments...),
		audit:         append([]entity.AuditLogEntry(nil), t.audit...),
		users:         append([]entity.User(nil), t.users...),
	}
}

// view acceso a las tablas; dentro de una transacción el lock ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v *view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v *view) t() *tables { return &v.s.d }

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToUpper(haystack), strings.ToUpper(needle))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
