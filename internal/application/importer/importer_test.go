package importer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var now = time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)

func newImporter(store *memory.Store, mode string) *Importer {
	clock := func() time.Time { return now }
	return New(store, stock.NewEngine(), audit.NewRecorder(clock), logger.Nop(), clock, Options{
		Mode:          mode,
		SentinelPrice: decimal.NewFromInt(1),
	})
}

func seedOrders(t *testing.T, store *memory.Store) {
	t.Helper()
	res, err := newImporter(store, ModeStrict).ImportOrders(context.Background(), []dto.OrderImportRow{
		{Row: 2, Category: "obras", GoodName: "cemento", LineReference: "1", OrderNumber: "oc-10", Quantity: "100", UnitPrice: "15.50"},
		{Row: 3, Category: "obras", GoodName: "arena", LineReference: "2", OrderNumber: "oc-10", Quantity: "20", UnitPrice: "8"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
}

func TestImportOrders_CreaCatalogoYSumaEnElMismoRenglon(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	im := newImporter(store, ModeStrict)

	res, err := im.ImportOrders(ctx, []dto.OrderImportRow{
		{Row: 2, Category: "obras", GoodName: "cemento", CatalogCode: "c-1", LineReference: "1", OrderNumber: "oc-10", Quantity: "100", UnitPrice: "15.50"},
		{Row: 3, Category: "Obras ", GoodName: "CEMENTO", LineReference: "1", OrderNumber: "OC-10", Quantity: "20.0", UnitPrice: "16"},
		{Row: 4, Category: "obras", GoodName: "cemento", LineReference: "x", OrderNumber: "oc-11", Quantity: "5", UnitPrice: "16"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Empty(t, res.Errors)
	// una advertencia por cada OC creada con valores por defecto
	assert.Len(t, res.Warnings, 2)

	r := store.Repos()
	categories, err := r.Categories.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "OBRAS", categories[0].Name)

	goods, total, err := r.Goods.List(ctx, repository.GoodFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "C-1", goods[0].CatalogCode)

	order, err := r.Orders.GetByNumber(ctx, "OC-10")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "DESCONOCIDO", order.Supplier)
	lines, err := r.OrderLines.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 120, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(16).Equal(lines[0].UnitPrice))
	assert.Equal(t, "1920.00", lines[0].TotalPrice.StringFixed(2))

	other, err := r.Orders.GetByNumber(ctx, "OC-11")
	require.NoError(t, err)
	otherLines, err := r.OrderLines.ListByOrder(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherLines, 1)
	assert.Equal(t, 1, otherLines[0].LineNumber)
}

func TestImportOrders_FilasConErrorNoCortanLaCarga(t *testing.T) {
	store := memory.NewStore()
	res, err := newImporter(store, ModeStrict).ImportOrders(context.Background(), []dto.OrderImportRow{
		{Row: 2, Category: "", GoodName: "cemento", OrderNumber: "oc-1", Quantity: "1", UnitPrice: "1"},
		{Row: 3, Category: "obras", GoodName: "cemento", OrderNumber: "oc-1", Quantity: "abc", UnitPrice: "1"},
		{Row: 4, Category: "obras", GoodName: "cemento", OrderNumber: "oc-1", Quantity: "3", UnitPrice: "-2"},
		{Row: 5, Category: "obras", GoodName: "cemento", OrderNumber: "oc-1", Quantity: "3", UnitPrice: "$ 2,5"},
		{Row: 6, Category: "obras", GoodName: "cemento", OrderNumber: "oc-1", Quantity: "3000000000", UnitPrice: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 4)
	assert.Equal(t, []int{2, 3, 4, 6}, []int{res.Errors[0].Row, res.Errors[1].Row, res.Errors[2].Row, res.Errors[3].Row})

	lines, err := store.Repos().OrderLines.ListByGood(context.Background(), mustGood(t, store, "CEMENTO"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2.50", lines[0].UnitPrice.StringFixed(2))
}

func TestImportOrders_AdoptaBienSinRubro(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Repos().Goods.Create(ctx, newGood("g-1", "PINTURA")))
	res, err := newImporter(store, ModeStrict).ImportOrders(ctx, []dto.OrderImportRow{
		{Row: 2, Category: "mantenimiento", GoodName: "pintura", OrderNumber: "oc-5", Quantity: "4", UnitPrice: "10"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)

	g, err := store.Repos().Goods.GetByID(ctx, "g-1")
	require.NoError(t, err)
	require.NotNil(t, g.CategoryID)
}

func TestImportDeliveries_AgrupaPorAreaYDia(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrders(t, store)

	res, err := newImporter(store, ModeStrict).ImportDeliveries(ctx, []dto.DeliveryImportRow{
		{Row: 2, AreaOrPerson: "obra norte", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", LineReference: "1", GoodName: "cemento", Quantity: "30"},
		{Row: 3, AreaOrPerson: "OBRA NORTE", DeliveryDate: "10/03/2025", OrderNumber: "oc-10", LineReference: "2", GoodName: "arena", Quantity: "5"},
		{Row: 4, AreaOrPerson: "obra sur", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", LineReference: "1", GoodName: "cemento", Quantity: "10"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)

	deliveries, total, err := store.Repos().Deliveries.List(ctx, repository.DeliveryFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	for _, d := range deliveries {
		lines, err := store.Repos().DeliveryLines.ListByDelivery(ctx, d.ID)
		require.NoError(t, err)
		if d.AreaOrPerson == "OBRA NORTE" {
			require.Len(t, lines, 2)
		} else {
			require.Len(t, lines, 1)
			assert.Equal(t, "155.00", lines[0].TotalPrice.StringFixed(2))
		}
	}
	available, err := stock.NewEngine().Available(ctx, store.Repos(), mustGood(t, store, "CEMENTO"))
	require.NoError(t, err)
	assert.Equal(t, 60, available)
}

func TestImportDeliveries_StrictRechaza(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrders(t, store)

	res, err := newImporter(store, ModeStrict).ImportDeliveries(ctx, []dto.DeliveryImportRow{
		{Row: 2, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "cemento", Quantity: "101"},
		{Row: 3, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-99", GoodName: "cemento", Quantity: "1"},
		{Row: 4, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "ladrillo", Quantity: "1"},
		{Row: 5, AreaOrPerson: "", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "cemento", Quantity: "1"},
		{Row: 6, AreaOrPerson: "obra", DeliveryDate: "ayer", OrderNumber: "oc-10", GoodName: "cemento", Quantity: "1"},
		{Row: 7, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "cemento", Quantity: "100"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors[0].Message, "excede el stock disponible (100)")

	available, err := stock.NewEngine().Available(ctx, store.Repos(), mustGood(t, store, "CEMENTO"))
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestImportDeliveries_StrictExigeRenglon(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrders(t, store)
	require.NoError(t, store.Repos().Goods.Create(ctx, newGood("g-x", "LADRILLO")))

	res, err := newImporter(store, ModeStrict).ImportDeliveries(ctx, []dto.DeliveryImportRow{
		{Row: 2, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "ladrillo", Quantity: "1"},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "no tiene renglón")
}

func TestImportDeliveries_LenientCompletaConAdvertencias(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrders(t, store)
	require.NoError(t, store.Repos().Goods.Create(ctx, newGood("g-x", "LADRILLO")))

	res, err := newImporter(store, ModeLenient).ImportDeliveries(ctx, []dto.DeliveryImportRow{
		{Row: 2, AreaOrPerson: "", DeliveryDate: "", OrderNumber: "oc-10", GoodName: "ladrillo", Quantity: ""},
		{Row: 3, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-10", GoodName: "arena", Quantity: "25"},
		{Row: 4, AreaOrPerson: "obra", DeliveryDate: "2025-03-10", OrderNumber: "oc-404", GoodName: "arena", Quantity: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	// fila 2: área, fecha, cantidad, precio y disponible; fila 3: disponible
	assert.Len(t, res.Warnings, 6)

	d, err := store.Repos().Deliveries.FindByAreaAndDay(ctx, defaultArea, now)
	require.NoError(t, err)
	require.NotNil(t, d)
	lines, err := store.Repos().DeliveryLines.ListByDelivery(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(1).Equal(lines[0].UnitPrice))

	available, err := stock.NewEngine().Available(ctx, store.Repos(), mustGood(t, store, "ARENA"))
	require.NoError(t, err)
	assert.Equal(t, -5, available)
}

func TestParseo(t *testing.T) {
	d, err := parseDate(" 5/3/2025 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = parseQuantity("2.5")
	assert.Error(t, err)
	n, err := parseQuantity("7.0")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = parseQuantity("99999999999999999999.0")
	assert.Error(t, err)

	assert.Equal(t, 3, lineNumberOf(" 3 "))
	assert.Equal(t, 1, lineNumberOf("R-3"))
	assert.Equal(t, 1, lineNumberOf("0"))
}
