package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

var today = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	uc    *UseCase
}

type csvExporter struct{ last *dto.ReportDocument }

func (e *csvExporter) Export(doc *dto.ReportDocument) ([]byte, error) {
	e.last = doc
	return []byte(doc.Title), nil
}
func (e *csvExporter) Extension() string   { return "csv" }
func (e *csvExporter) ContentType() string { return "text/csv" }

func newFixture(t *testing.T, exporters ...Exporter) *fixture {
	store := memory.NewStore()
	cfg := Config{LowStockThreshold: 10, OrderExpiryWindowDays: 120}
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		uc:    NewUseCase(store.Repos(), cfg, func() time.Time { return today }, exporters...),
	}
}

func date(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func (f *fixture) category(id, name string) {
	require.NoError(f.t, f.store.Repos().Categories.Create(f.ctx, &entity.Category{ID: id, Name: name}))
}

func (f *fixture) good(id, name string, categoryID *string) {
	require.NoError(f.t, f.store.Repos().Goods.Create(f.ctx, &entity.Good{ID: id, Name: name, CategoryID: categoryID}))
}

func (f *fixture) order(id, number, supplier string, categoryID *string, end *time.Time) {
	require.NoError(f.t, f.store.Repos().Orders.Create(f.ctx, &entity.PurchaseOrder{
		ID: id, Number: number, Supplier: supplier, CategoryID: categoryID,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: end,
	}))
}

func (f *fixture) orderLine(orderID, goodID string, qty int, price string) {
	p := decimal.RequireFromString(price)
	require.NoError(f.t, f.store.Repos().OrderLines.Create(f.ctx, &entity.PurchaseOrderLine{
		ID: orderID + "-" + goodID, PurchaseOrderID: orderID, GoodID: goodID, Quantity: qty,
		UnitPrice: p, TotalPrice: entity.LineTotal(qty, p), LineNumber: 1,
	}))
}

func (f *fixture) delivery(id, area string, at time.Time, orderID, goodID string, qty int, price string) {
	r := f.store.Repos()
	if d, _ := r.Deliveries.GetByID(f.ctx, id); d == nil {
		require.NoError(f.t, r.Deliveries.Create(f.ctx, &entity.Delivery{ID: id, Timestamp: at, AreaOrPerson: area}))
	}
	p := decimal.RequireFromString(price)
	var order *string
	if orderID != "" {
		order = &orderID
	}
	require.NoError(f.t, r.DeliveryLines.Create(f.ctx, &entity.DeliveryLine{
		ID: id + "-" + goodID, DeliveryID: id, PurchaseOrderID: order, GoodID: goodID,
		Quantity: qty, UnitPrice: p, TotalPrice: entity.LineTotal(qty, p),
	}))
}

// seed: CEMENTO comprado 100 @10 y 100 @20 (promedio 15), ARENA 5 @4 sin rubro.
func (f *fixture) seed() {
	obras := "cat-obras"
	f.category(obras, "OBRAS")
	f.good("g-cement", "CEMENTO", &obras)
	f.good("g-sand", "ARENA", nil)
	f.order("oc-1", "OC-1", "CORRALÓN NORTE", &obras, date(2025, 7, 1))
	f.order("oc-2", "OC-2", "CORRALÓN SUR", &obras, date(2026, 3, 1))
	f.order("oc-3", "OC-3", "", nil, date(2025, 5, 1))
	f.orderLine("oc-1", "g-cement", 100, "10")
	f.orderLine("oc-2", "g-cement", 100, "20")
	f.orderLine("oc-3", "g-sand", 5, "4")
	f.delivery("d-1", "MAESTRANZA", time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), "oc-1", "g-cement", 30, "10")
	f.delivery("d-1", "MAESTRANZA", time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), "oc-3", "g-sand", 2, "4")
	f.delivery("d-2", "ESCUELA 5", time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC), "oc-2", "g-cement", 50, "20")
	f.delivery("d-3", "MAESTRANZA", time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC), "", "g-sand", 1, "4")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed()

	got, err := f.uc.Dashboard(f.ctx, entity.UserScope{})
	require.NoError(t, err)

	require.Len(t, got.ExpiringOrders, 2)
	assert.Equal(t, "OC-3", got.ExpiringOrders[0].Number)
	assert.Equal(t, -45, got.ExpiringOrders[0].DaysRemaining)
	assert.Equal(t, "OC-1", got.ExpiringOrders[1].Number)
	assert.Equal(t, 16, got.ExpiringOrders[1].DaysRemaining)

	require.Len(t, got.LowStock, 1)
	assert.Equal(t, "ARENA", got.LowStock[0].GoodName)
	assert.Equal(t, 2, got.LowStock[0].Available)
}

func TestStockByGood_ValorAPrecioPromedio(t *testing.T) {
	f := newFixture(t)
	f.seed()

	rows, err := f.uc.StockByGood(f.ctx, entity.UserScope{}, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	cement := rows[0]
	assert.Equal(t, "OBRAS", cement.CategoryName)
	assert.Equal(t, 120, cement.Stock)
	assert.True(t, cement.AveragePrice.Equal(decimal.NewFromInt(15)))
	assert.True(t, cement.StockValue.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 80, cement.DeliveredQty)
	assert.True(t, cement.DeliveredValue.Equal(decimal.NewFromInt(1300)))

	sand := rows[1]
	assert.Equal(t, noCategory, sand.CategoryName)
	assert.Equal(t, 2, sand.Stock)
}

func TestStockByCategory_SoloSaldosPositivos(t *testing.T) {
	f := newFixture(t)
	f.seed()
	f.good("g-lime", "CAL", ptr("cat-obras"))
	f.delivery("d-9", "OBRA", today, "", "g-lime", 4, "1")

	rows, err := f.uc.StockByCategory(f.ctx, entity.UserScope{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "OBRAS", rows[0].CategoryName)
	assert.Equal(t, 2, rows[0].Goods)
	assert.Equal(t, 120, rows[0].Stock)
	assert.Equal(t, 84, rows[0].DeliveredQty)
}

func TestDeliveriesByYear(t *testing.T) {
	f := newFixture(t)
	f.seed()

	got, err := f.uc.DeliveriesByYear(f.ctx, entity.UserScope{}, 2025)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Deliveries)
	assert.Equal(t, 82, got.Quantity)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(1308)))
	require.Len(t, got.Months, 12)
	assert.Equal(t, 1, got.Months[1].Deliveries)
	assert.Equal(t, 32, got.Months[1].Quantity)
	assert.Equal(t, 50, got.Months[3].Quantity)
	assert.Equal(t, 0, got.Months[0].Quantity)
	require.Len(t, got.Detail, 2)
	assert.Equal(t, "OBRAS", got.Detail[0].CategoryName)
	assert.Equal(t, 80, got.Detail[0].Quantity)
}

func TestDeliveriesByArea(t *testing.T) {
	f := newFixture(t)
	f.seed()

	rows, err := f.uc.DeliveriesByArea(f.ctx, entity.UserScope{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ESCUELA 5", rows[0].AreaOrPerson)
	assert.Equal(t, "MAESTRANZA", rows[1].AreaOrPerson)
	assert.Equal(t, 2, rows[1].Deliveries)
	assert.Equal(t, 33, rows[1].Quantity)
}

func TestRankings(t *testing.T) {
	f := newFixture(t)
	f.seed()

	goods, err := f.uc.GoodRanking(f.ctx, entity.UserScope{}, 1)
	require.NoError(t, err)
	require.Len(t, goods, 1)
	assert.Equal(t, dto.RankingRow{Position: 1, Name: "CEMENTO", Quantity: 80, Total: goods[0].Total}, goods[0])

	suppliers, err := f.uc.SupplierRanking(f.ctx, entity.UserScope{}, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"CORRALÓN SUR", "CORRALÓN NORTE", noSupplier}, names)
	assert.Equal(t, 3, suppliers[2].Quantity)
}

func TestTotals_ConAlcance(t *testing.T) {
	f := newFixture(t)
	f.seed()

	all, err := f.uc.Totals(f.ctx, entity.UserScope{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Goods)
	assert.Equal(t, 205, all.PurchasedQty)
	assert.Equal(t, 83, all.DeliveredQty)
	assert.Equal(t, 3, all.Deliveries)

	scoped, err := f.uc.Totals(f.ctx, entity.UserScope{CategoryID: ptr("cat-obras")})
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.Goods)
	assert.Equal(t, 2, scoped.Deliveries)
	assert.True(t, scoped.StockValue.Equal(decimal.NewFromInt(1800)))
}

func TestServicesByStatus(t *testing.T) {
	f := newFixture(t)
	r := f.store.Repos()
	for i, s := range []entity.ServiceContract{
		{ID: "s1", Name: "A", Status: entity.ServiceStatusActive, EndDate: date(2025, 7, 1), MonthlyCost: decimal.NewFromInt(10)},
		{ID: "s2", Name: "B", Status: entity.ServiceStatusActive, EndDate: date(2025, 1, 1), MonthlyCost: decimal.NewFromInt(20)},
		{ID: "s3", Name: "C", Status: entity.ServiceStatusSuspended, MonthlyCost: decimal.NewFromInt(30)},
		{ID: "s4", Name: "D", Status: entity.ServiceStatusActive, MonthlyCost: decimal.NewFromInt(40)},
	} {
		require.NoError(t, r.Services.Create(f.ctx, &s), i)
	}

	rows, err := f.uc.ServicesByStatus(f.ctx, entity.UserScope{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	assert.Equal(t, map[string]int{
		entity.ServiceStatusActive:       1,
		entity.ServiceStatusExpiringSoon: 1,
		entity.ServiceStatusExpired:      1,
		entity.ServiceStatusSuspended:    1,
	}, counts)
}

func TestExport(t *testing.T) {
	exp := &csvExporter{}
	f := newFixture(t, exp)
	f.seed()

	data, name, ct, err := f.uc.Export(f.ctx, entity.UserScope{}, KindDeliveriesByYear, "csv", dto.ReportQuery{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "Entregas año 2025", string(data))
	assert.Equal(t, "entregas_2025.csv", name)
	assert.Equal(t, "text/csv", ct)
	require.Len(t, exp.last.Tables, 2)
	assert.Len(t, exp.last.Tables[0].Rows, 13)

	_, _, _, err = f.uc.Export(f.ctx, entity.UserScope{}, KindTotals, "docx", dto.ReportQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, _, err = f.uc.Export(f.ctx, entity.UserScope{}, "nope", "csv", dto.ReportQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr(s string) *string { return &s }
