package stock

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repos ports.Repos
	seq   int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), repos: memory.NewStore().Repos()}
}

func (f *fixture) id(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fixture) good(name string) string {
	id := f.id("good")
	require.NoError(f.t, f.repos.Goods.Create(f.ctx, &entity.Good{ID: id, Name: name}))
	return id
}

func (f *fixture) order(number string, categoryID *string) string {
	id := f.id("po")
	require.NoError(f.t, f.repos.Orders.Create(f.ctx, &entity.PurchaseOrder{ID: id, Number: number, CategoryID: categoryID}))
	return id
}

func (f *fixture) orderLine(orderID, goodID string, qty int, price string, lineNumber int) string {
	id := f.id("pol")
	p := decimal.RequireFromString(price)
	require.NoError(f.t, f.repos.OrderLines.Create(f.ctx, &entity.PurchaseOrderLine{
		ID: id, PurchaseOrderID: orderID, GoodID: goodID, Quantity: qty,
		UnitPrice: p, TotalPrice: entity.LineTotal(qty, p), LineNumber: lineNumber,
	}))
	return id
}

func (f *fixture) delivered(orderID, goodID string, qty int) string {
	deliveryID := f.id("del")
	require.NoError(f.t, f.repos.Deliveries.Create(f.ctx, &entity.Delivery{ID: deliveryID, AreaOrPerson: "OBRA"}))
	id := f.id("dl")
	o := orderID
	require.NoError(f.t, f.repos.DeliveryLines.Create(f.ctx, &entity.DeliveryLine{
		ID: id, DeliveryID: deliveryID, PurchaseOrderID: &o, GoodID: goodID, Quantity: qty,
	}))
	return id
}

func ptr(s string) *string { return &s }

// ─── Disponible ──────────────────────────────────────────────────────────────

func TestAvailableForOrder_CompradoMenosEntregado(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	f.delivered(oc1, cement, 30)

	got, err := NewEngine().AvailableForOrder(f.ctx, f.repos, oc1, cement)
	require.NoError(t, err)
	assert.Equal(t, 70, got)
}

func TestAvailable_SumaTodasLasOrdenes(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	oc2 := f.order("OC-2", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	f.orderLine(oc2, cement, 50, "12.00", 1)
	f.delivered(oc1, cement, 30)
	f.delivered(oc2, cement, 5)

	got, err := NewEngine().Available(f.ctx, f.repos, cement)
	require.NoError(t, err)
	assert.Equal(t, 115, got)
}

func TestAvailableForOrder_ExcluyeRenglonPropio(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	own := f.delivered(oc1, cement, 30)

	got, err := NewEngine().AvailableForOrder(f.ctx, f.repos, oc1, cement, own)
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

// ─── Órdenes con stock ───────────────────────────────────────────────────────

func TestListOrdersWithStock_OmiteAgotadasYRespetaAlcance(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", ptr("cat-1"))
	oc2 := f.order("OC-2", ptr("cat-2"))
	oc3 := f.order("OC-3", ptr("cat-1"))
	f.orderLine(oc1, cement, 10, "10.00", 1)
	f.orderLine(oc1, cement, 5, "11.00", 2)
	f.orderLine(oc2, cement, 10, "12.00", 1)
	f.orderLine(oc3, cement, 10, "13.00", 1)
	f.delivered(oc3, cement, 10)

	got, err := NewEngine().ListOrdersWithStock(f.ctx, f.repos, cement, entity.UserScope{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, oc1, got[0].Order.ID)
	assert.Equal(t, 15, got[0].Available)
	assert.Equal(t, "10", got[0].UnitPrice.String())
	assert.Equal(t, oc2, got[1].Order.ID)

	scoped, err := NewEngine().ListOrdersWithStock(f.ctx, f.repos, cement, entity.UserScope{CategoryID: ptr("cat-1")})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, oc1, scoped[0].Order.ID)
}

// ─── Precio ──────────────────────────────────────────────────────────────────

func TestResolveUnitPrice_PrefiereNumeroDeRenglon(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)
	f.orderLine(oc1, cement, 10, "11.50", 2)
	engine := NewEngine()

	two := 2
	price, found, err := engine.ResolveUnitPrice(f.ctx, f.repos, oc1, cement, &two)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "11.5", price.String())

	seven := 7
	price, found, err = engine.ResolveUnitPrice(f.ctx, f.repos, oc1, cement, &seven)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10", price.String())

	_, found, err = engine.ResolveUnitPrice(f.ctx, f.repos, oc1, f.good("ARENA"), nil)
	require.NoError(t, err)
	assert.False(t, found)
}

// ─── Validación ──────────────────────────────────────────────────────────────

func TestBatch_ExactamenteElDisponibleEsValido(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	f.delivered(oc1, cement, 30)

	alloc, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, 70, &oc1)
	require.NoError(t, err)
	require.Nil(t, lineErr)
	assert.Equal(t, oc1, alloc.OrderID)
	assert.Equal(t, "10", alloc.UnitPrice.String())
}

func TestBatch_ExcedeDisponible(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	f.delivered(oc1, cement, 30)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, 75, &oc1)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, domain.CodeAvailableExceeded, lineErr.Code)
	assert.Equal(t, 70, lineErr.Available)
	assert.Equal(t, "CEMENTO", lineErr.GoodName)
}

func TestBatch_AcumulaRenglonesDelMismoEnvio(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)
	batch := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil)

	_, lineErr, err := batch.Validate(f.ctx, cement, 6, &oc1)
	require.NoError(t, err)
	require.Nil(t, lineErr)

	_, lineErr, err = batch.Validate(f.ctx, cement, 6, &oc1)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, 4, lineErr.Available)
}

func TestBatch_SinOrdenConVariasOrdenesRequiereOrden(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	f.orderLine(f.order("OC-1", nil), cement, 10, "10.00", 1)
	f.orderLine(f.order("OC-2", nil), cement, 10, "12.00", 1)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, domain.CodeOrderRequired, lineErr.Code)
}

func TestBatch_SinOrdenConUnaSolaOrdenLaElige(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	oc2 := f.order("OC-2", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)
	f.orderLine(oc2, cement, 10, "12.00", 1)
	f.delivered(oc1, cement, 10)

	alloc, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, 3, nil)
	require.NoError(t, err)
	require.Nil(t, lineErr)
	assert.Equal(t, oc2, alloc.OrderID)
	assert.Equal(t, "12", alloc.UnitPrice.String())
}

func TestBatch_OrdenSinElBienDevuelveLineNotFound(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	sand := f.good("ARENA")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, sand, 1, &oc1)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, domain.CodeLineNotFound, lineErr.Code)
	assert.Equal(t, "ARENA", lineErr.GoodName)
}

func TestBatch_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, 0, &oc1)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, domain.CodeInvalidQuantity, lineErr.Code)
}

func TestBatch_CantidadMayorAlTope(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 10, "10.00", 1)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, nil).Validate(f.ctx, cement, entity.MaxQuantity+1, &oc1)
	require.NoError(t, err)
	require.NotNil(t, lineErr)
	assert.Equal(t, domain.CodeInvalidQuantity, lineErr.Code)
	assert.Equal(t, "CEMENTO", lineErr.GoodName)
}

func TestBatch_ExcluirRenglonEnEdicion(t *testing.T) {
	f := newFixture(t)
	cement := f.good("CEMENTO")
	oc1 := f.order("OC-1", nil)
	f.orderLine(oc1, cement, 100, "10.00", 1)
	own := f.delivered(oc1, cement, 30)

	_, lineErr, err := NewEngine().NewBatch(f.repos, entity.UserScope{}, []string{own}).Validate(f.ctx, cement, 100, &oc1)
	require.NoError(t, err)
	assert.Nil(t, lineErr)
}
