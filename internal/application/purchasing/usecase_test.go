package purchasing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	uc     *UseCase
	engine *stock.Engine
	seq    int
}

func newEnv(t *testing.T) *env {
	store := memory.NewStore()
	engine := stock.NewEngine()
	clock := func() time.Time { return now }
	return &env{
		t:      t,
		ctx:    context.Background(),
		store:  store,
		engine: engine,
		uc:     NewUseCase(store, store.Repos(), engine, audit.NewRecorder(clock), clock),
	}
}

func (e *env) good(name string) string {
	e.seq++
	id := fmt.Sprintf("good-%d", e.seq)
	require.NoError(e.t, e.store.Repos().Goods.Create(e.ctx, &entity.Good{ID: id, Name: name}))
	return id
}

func (e *env) category(name string) string {
	e.seq++
	id := fmt.Sprintf("cat-%d", e.seq)
	require.NoError(e.t, e.store.Repos().Categories.Create(e.ctx, &entity.Category{ID: id, Name: name}))
	return id
}

// deliver registra un remito directo en el almacén, sin pasar por el libro de entregas.
func (e *env) deliver(orderID, goodID string, qty int) string {
	e.seq++
	id := fmt.Sprintf("del-%d", e.seq)
	r := e.store.Repos()
	require.NoError(e.t, r.Deliveries.Create(e.ctx, &entity.Delivery{ID: id, Timestamp: now, AreaOrPerson: "OBRA", PurchaseOrderID: &orderID}))
	require.NoError(e.t, r.DeliveryLines.Create(e.ctx, &entity.DeliveryLine{
		ID: id + "-l1", DeliveryID: id, PurchaseOrderID: &orderID, GoodID: goodID, Quantity: qty,
		UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(int64(10 * qty)),
	}))
	return id
}

func orderRequest(number string, lines ...dto.OrderLineInput) dto.OrderRequest {
	return dto.OrderRequest{
		Number:    number,
		StartDate: dto.NewDate(2025, time.January, 1),
		Supplier:  "ferretería sur",
		Lines:     lines,
	}
}

func line(goodID string, qty int, price string) dto.OrderLineInput {
	return dto.OrderLineInput{GoodID: goodID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestCreate_NormalizaYCalculaTotales(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	sand := e.good("ARENA")

	resp, err := e.uc.Create(e.ctx, &entity.Actor{UserID: "u1"}, entity.UserScope{}, orderRequest(" oc  1 ",
		line(cement, 100, "10.005"),
		line(sand, 3, "2.50"),
	))

	require.NoError(t, err)
	assert.Equal(t, "OC 1", resp.Number)
	assert.Equal(t, "FERRETERÍA SUR", resp.Supplier)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, 1, resp.Lines[0].LineNumber)
	assert.Equal(t, 2, resp.Lines[1].LineNumber)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.01")))
	assert.True(t, resp.Lines[0].TotalPrice.Equal(decimal.RequireFromString("1001")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("1008.50")))
}

func TestCreate_NumeroDuplicado(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	_, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 1, "1")))
	require.NoError(t, err)

	_, err = e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("oc-1", line(cement, 1, "1")))

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, domain.CodeDuplicateNumber, ve.Fields[0].Code)
}

func TestCreate_ErroresDeRenglonYRango(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	in := orderRequest("OC-2", line(cement, 0, "1"), line("nope", 1, "1"), line(cement, 1, "-1"))
	end := dto.NewDate(2024, time.December, 1)
	in.EndDate = &end

	_, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, in)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, domain.CodeInvalidRange, ve.Fields[0].Code)
	codes := make([]string, 0, len(ve.Lines))
	for _, l := range ve.Lines {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{domain.CodeInvalidQuantity, domain.CodeGoodNotFound, domain.CodeInvalidPrice}, codes)
}

func TestCreate_CantidadMayorAlTope(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")

	_, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-3", line(cement, entity.MaxQuantity+1, "1")))

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Lines, 1)
	assert.Equal(t, domain.CodeInvalidQuantity, ve.Lines[0].Code)
	assert.Equal(t, entity.MaxQuantity+1, ve.Lines[0].Requested)
}

func TestCreate_UsuarioConRubro(t *testing.T) {
	e := newEnv(t)
	obras := e.category("OBRAS")
	otro := e.category("LIMPIEZA")
	cement := e.good("CEMENTO")
	scope := entity.UserScope{CategoryID: &obras}

	resp, err := e.uc.Create(e.ctx, nil, scope, orderRequest("OC-3", line(cement, 1, "1")))
	require.NoError(t, err)
	require.NotNil(t, resp.CategoryID)
	assert.Equal(t, obras, *resp.CategoryID)

	in := orderRequest("OC-4", line(cement, 1, "1"))
	in.CategoryID = &otro
	_, err = e.uc.Create(e.ctx, nil, scope, in)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeForbiddenCategory, ve.Fields[0].Code)

	_, err = e.uc.Get(e.ctx, entity.UserScope{CategoryID: &otro}, resp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_NoPermiteBajarDeLoEntregado(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	created, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 100, "10")))
	require.NoError(t, err)
	e.deliver(created.ID, cement, 30)

	in := orderRequest("OC-1", line(cement, 20, "10"))
	in.Lines[0].ID = created.Lines[0].ID
	_, err = e.uc.Update(e.ctx, nil, entity.UserScope{}, created.ID, in)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Lines, 1)
	assert.Equal(t, domain.CodeBelowDelivered, ve.Lines[0].Code)
	assert.Equal(t, -10, ve.Lines[0].Available)

	got, err := e.uc.Get(e.ctx, entity.UserScope{}, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Lines[0].Quantity)
}

func TestUpdate_CambiaCantidadYAgregaRenglon(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	sand := e.good("ARENA")
	created, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 100, "10")))
	require.NoError(t, err)
	e.deliver(created.ID, cement, 30)

	in := orderRequest("OC-1", line(cement, 30, "10"), line(sand, 5, "4"))
	in.Lines[0].ID = created.Lines[0].ID
	updated, err := e.uc.Update(e.ctx, nil, entity.UserScope{}, created.ID, in)

	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	available, err := e.engine.AvailableForOrder(e.ctx, e.store.Repos(), created.ID, cement)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(320)))
}

func TestUpdate_RenglonRepetidoSeRechaza(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	created, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 100, "10")))
	require.NoError(t, err)

	in := orderRequest("OC-1", line(cement, 20, "10"), line(cement, 40, "10"))
	in.Lines[0].ID = created.Lines[0].ID
	in.Lines[1].ID = created.Lines[0].ID
	_, err = e.uc.Update(e.ctx, nil, entity.UserScope{}, created.ID, in)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "lines[1].id", ve.Fields[0].Field)
	assert.Equal(t, domain.CodeDuplicateLine, ve.Fields[0].Code)

	got, err := e.uc.Get(e.ctx, entity.UserScope{}, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 100, got.Lines[0].Quantity)
}

func TestUpdate_BorrarRenglonEntregado(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	created, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 10, "10")))
	require.NoError(t, err)
	e.deliver(created.ID, cement, 1)

	in := orderRequest("OC-1")
	in.DeleteLineIDs = []string{created.Lines[0].ID}
	_, err = e.uc.Update(e.ctx, nil, entity.UserScope{}, created.ID, in)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeBelowDelivered, ve.Fields[0].Code)
}

func TestDelete_RemitosSobrevivenSinOrden(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	created, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 10, "10")))
	require.NoError(t, err)
	deliveryID := e.deliver(created.ID, cement, 4)

	require.NoError(t, e.uc.Delete(e.ctx, nil, entity.UserScope{}, created.ID))

	r := e.store.Repos()
	d, err := r.Deliveries.GetByID(e.ctx, deliveryID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Nil(t, d.PurchaseOrderID)
	lines, err := r.DeliveryLines.ListByDelivery(e.ctx, deliveryID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].PurchaseOrderID)
	assert.Equal(t, 4, lines[0].Quantity)
	_, err = e.uc.Get(e.ctx, entity.UserScope{}, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsultasDeStock(t *testing.T) {
	e := newEnv(t)
	cement := e.good("CEMENTO")
	oc1, err := e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-1", line(cement, 10, "10")))
	require.NoError(t, err)
	_, err = e.uc.Create(e.ctx, nil, entity.UserScope{}, orderRequest("OC-2", line(cement, 5, "12")))
	require.NoError(t, err)
	e.deliver(oc1.ID, cement, 10)

	orders, err := e.uc.OrdersWithStock(e.ctx, entity.UserScope{}, cement)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "OC-2", orders[0].Number)
	assert.Equal(t, 5, orders[0].Available)

	price, err := e.uc.Price(e.ctx, entity.UserScope{}, oc1.ID, cement)
	require.NoError(t, err)
	assert.True(t, price.UnitPrice.Equal(decimal.NewFromInt(10)))

	goods, err := e.uc.Goods(e.ctx, entity.UserScope{}, oc1.ID)
	require.NoError(t, err)
	require.Len(t, goods, 1)
	assert.Equal(t, 0, goods[0].Available)

	_, err = e.uc.Price(e.ctx, entity.UserScope{}, oc1.ID, "otro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
