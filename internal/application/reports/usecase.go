package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/schedule"
)

const (
	noCategory = "SIN RUBRO"
	noSupplier = "(SIN PROVEEDOR)"
)

// UseCase consultas de solo lectura para el tablero y los reportes. Todas aceptan el alcance
// del usuario y devuelven filas ya agregadas.
type UseCase struct {
	repos     ports.Repos
	cfg       Config
	now       func() time.Time
	exporters map[string]Exporter
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(repos ports.Repos, cfg Config, now func() time.Time, exporters ...Exporter) *UseCase {
	if now == nil {
		now = time.Now
	}
	if cfg.ServiceExpiringDays <= 0 {
		cfg.ServiceExpiringDays = schedule.DefaultExpiringDays
	}
	uc := &UseCase{repos: repos, cfg: cfg, now: now, exporters: map[string]Exporter{}}
	for _, e := range exporters {
		uc.exporters[e.Extension()] = e
	}
	return uc
}

// Dashboard OC que vencen dentro de la ventana configurada (o ya vencidas) y bienes con stock
// menor o igual al umbral, de menor a mayor stock.
func (uc *UseCase) Dashboard(ctx context.Context, scope entity.UserScope) (*dto.DashboardResponse, error) {
	today := schedule.Day(uc.now())
	until := today.AddDate(0, 0, uc.cfg.OrderExpiryWindowDays)
	orders, err := uc.repos.Orders.ListEndingBefore(ctx, until, scope)
	if err != nil {
		return nil, fmt.Errorf("reports.Dashboard: %w", err)
	}
	out := &dto.DashboardResponse{
		ExpiringOrders: make([]dto.ExpiringOrder, 0, len(orders)),
		LowStock:       []dto.LowStockItem{},
	}
	for _, o := range orders {
		out.ExpiringOrders = append(out.ExpiringOrders, dto.ExpiringOrder{
			OrderID:       o.ID,
			Number:        o.Number,
			Supplier:      o.Supplier,
			StartDate:     dto.Date{Time: o.StartDate},
			EndDate:       dto.Date{Time: *o.EndDate},
			DaysRemaining: *schedule.DaysToExpiry(o.EndDate, today),
		})
	}

	balances, err := uc.repos.Reports.GoodBalances(ctx, scope, "")
	if err != nil {
		return nil, fmt.Errorf("reports.Dashboard: %w", err)
	}
	for _, b := range balances {
		if b.Available() <= uc.cfg.LowStockThreshold {
			out.LowStock = append(out.LowStock, dto.LowStockItem{GoodID: b.GoodID, GoodName: b.GoodName, Available: b.Available()})
		}
	}
	sort.SliceStable(out.LowStock, func(i, j int) bool { return out.LowStock[i].Available < out.LowStock[j].Available })
	return out, nil
}

// StockByGood stock, valor del stock al precio promedio ponderado de compra y lo entregado, por bien.
func (uc *UseCase) StockByGood(ctx context.Context, scope entity.UserScope, search string) ([]dto.StockByGoodRow, error) {
	balances, err := uc.repos.Reports.GoodBalances(ctx, scope, search)
	if err != nil {
		return nil, fmt.Errorf("reports.StockByGood: %w", err)
	}
	rows := make([]dto.StockByGoodRow, 0, len(balances))
	for _, b := range balances {
		avg := averagePrice(b)
		rows = append(rows, dto.StockByGoodRow{
			GoodID:         b.GoodID,
			GoodName:       b.GoodName,
			CategoryName:   categoryName(b.CategoryName),
			Stock:          b.Available(),
			AveragePrice:   avg.Round(2),
			StockValue:     avg.Mul(decimal.NewFromInt(int64(b.Available()))).Round(2),
			DeliveredQty:   b.DeliveredQty,
			DeliveredValue: b.DeliveredValue,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CategoryName != rows[j].CategoryName {
			return rows[i].CategoryName < rows[j].CategoryName
		}
		return rows[i].GoodName < rows[j].GoodName
	})
	return rows, nil
}

// StockByCategory agrupa StockByGood por rubro. El stock y su valor suman solo saldos positivos.
func (uc *UseCase) StockByCategory(ctx context.Context, scope entity.UserScope) ([]dto.StockByCategoryRow, error) {
	goods, err := uc.StockByGood(ctx, scope, "")
	if err != nil {
		return nil, err
	}
	var out []dto.StockByCategoryRow
	index := map[string]int{}
	for _, g := range goods {
		i, ok := index[g.CategoryName]
		if !ok {
			i = len(out)
			index[g.CategoryName] = i
			out = append(out, dto.StockByCategoryRow{CategoryName: g.CategoryName, StockValue: decimal.Zero, DeliveredValue: decimal.Zero})
		}
		row := &out[i]
		row.Goods++
		if g.Stock > 0 {
			row.Stock += g.Stock
			row.StockValue = row.StockValue.Add(g.StockValue)
		}
		row.DeliveredQty += g.DeliveredQty
		row.DeliveredValue = row.DeliveredValue.Add(g.DeliveredValue)
	}
	if out == nil {
		out = []dto.StockByCategoryRow{}
	}
	return out, nil
}

// DeliveriesByYear entregas del año por mes (12 filas) y detalle por rubro y bien.
func (uc *UseCase) DeliveriesByYear(ctx context.Context, scope entity.UserScope, year int) (*dto.DeliveriesByYearResponse, error) {
	if year <= 0 {
		year = uc.now().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	facts, err := uc.repos.Reports.DeliveryFacts(ctx, repository.FactFilter{From: &from, To: &to, Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.DeliveriesByYear: %w", err)
	}

	out := &dto.DeliveriesByYearResponse{Year: year, Total: decimal.Zero, Months: make([]dto.MonthRow, 12)}
	for m := range out.Months {
		out.Months[m] = dto.MonthRow{Month: m + 1, Total: decimal.Zero}
	}
	seen := make([]map[string]bool, 12)
	all := map[string]bool{}
	type key struct{ category, good string }
	detail := map[key]*dto.CategoryGoodRow{}
	var keys []key
	for _, f := range facts {
		m := int(f.Timestamp.Month()) - 1
		row := &out.Months[m]
		if seen[m] == nil {
			seen[m] = map[string]bool{}
		}
		if !seen[m][f.DeliveryID] {
			seen[m][f.DeliveryID] = true
			row.Deliveries++
		}
		all[f.DeliveryID] = true
		row.Quantity += f.Quantity
		row.Total = row.Total.Add(f.Total)
		out.Quantity += f.Quantity
		out.Total = out.Total.Add(f.Total)

		k := key{categoryName(f.CategoryName), f.GoodName}
		d, ok := detail[k]
		if !ok {
			d = &dto.CategoryGoodRow{CategoryName: k.category, GoodName: k.good, Total: decimal.Zero}
			detail[k] = d
			keys = append(keys, k)
		}
		d.Quantity += f.Quantity
		d.Total = d.Total.Add(f.Total)
	}
	out.Deliveries = len(all)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].good < keys[j].good
	})
	out.Detail = make([]dto.CategoryGoodRow, 0, len(keys))
	for _, k := range keys {
		out.Detail = append(out.Detail, *detail[k])
	}
	return out, nil
}

// DeliveriesByArea entregas agrupadas por área o persona, ordenadas por nombre.
func (uc *UseCase) DeliveriesByArea(ctx context.Context, scope entity.UserScope, from, to *time.Time) ([]dto.AreaRow, error) {
	facts, err := uc.repos.Reports.DeliveryFacts(ctx, repository.FactFilter{From: from, To: to, Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.DeliveriesByArea: %w", err)
	}
	rows := map[string]*dto.AreaRow{}
	seen := map[string]bool{}
	for _, f := range facts {
		r, ok := rows[f.AreaOrPerson]
		if !ok {
			r = &dto.AreaRow{AreaOrPerson: f.AreaOrPerson, Total: decimal.Zero}
			rows[f.AreaOrPerson] = r
		}
		if !seen[f.DeliveryID] {
			seen[f.DeliveryID] = true
			r.Deliveries++
		}
		r.Quantity += f.Quantity
		r.Total = r.Total.Add(f.Total)
	}
	out := make([]dto.AreaRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AreaOrPerson < out[j].AreaOrPerson })
	return out, nil
}

// GoodRanking bienes más entregados por cantidad. limit <= 0 devuelve todos.
func (uc *UseCase) GoodRanking(ctx context.Context, scope entity.UserScope, limit int) ([]dto.RankingRow, error) {
	facts, err := uc.repos.Reports.DeliveryFacts(ctx, repository.FactFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.GoodRanking: %w", err)
	}
	rows := rank(facts, func(f repository.DeliveryFact) string { return f.GoodName })
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].Name < rows[j].Name
	})
	return positions(rows, limit), nil
}

// SupplierRanking proveedores por valor entregado. Los renglones sin OC se agrupan aparte.
func (uc *UseCase) SupplierRanking(ctx context.Context, scope entity.UserScope, limit int) ([]dto.RankingRow, error) {
	facts, err := uc.repos.Reports.DeliveryFacts(ctx, repository.FactFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.SupplierRanking: %w", err)
	}
	rows := rank(facts, func(f repository.DeliveryFact) string {
		if f.Supplier == "" {
			return noSupplier
		}
		return f.Supplier
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Name < rows[j].Name
	})
	return positions(rows, limit), nil
}

// Totals totales globales dentro del alcance.
func (uc *UseCase) Totals(ctx context.Context, scope entity.UserScope) (*dto.TotalsResponse, error) {
	goods, err := uc.repos.Reports.GoodBalances(ctx, scope, "")
	if err != nil {
		return nil, fmt.Errorf("reports.Totals: %w", err)
	}
	out := &dto.TotalsResponse{
		Goods:          len(goods),
		PurchasedValue: decimal.Zero,
		DeliveredValue: decimal.Zero,
		StockValue:     decimal.Zero,
	}
	for _, b := range goods {
		out.PurchasedQty += b.PurchasedQty
		out.PurchasedValue = out.PurchasedValue.Add(b.PurchasedValue)
		out.DeliveredQty += b.DeliveredQty
		out.DeliveredValue = out.DeliveredValue.Add(b.DeliveredValue)
		if b.Available() > 0 {
			out.Stock += b.Available()
			out.StockValue = out.StockValue.Add(averagePrice(b).Mul(decimal.NewFromInt(int64(b.Available()))).Round(2))
		}
	}
	facts, err := uc.repos.Reports.DeliveryFacts(ctx, repository.FactFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.Totals: %w", err)
	}
	seen := map[string]bool{}
	for _, f := range facts {
		seen[f.DeliveryID] = true
	}
	out.Deliveries = len(seen)
	return out, nil
}

// ServicesByStatus cantidad y costo mensual de contratos por estado efectivo.
func (uc *UseCase) ServicesByStatus(ctx context.Context, scope entity.UserScope) ([]dto.ServiceStatusRow, error) {
	items, err := uc.repos.Services.List(ctx, repository.ServiceFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("reports.ServicesByStatus: %w", err)
	}
	order := []string{
		entity.ServiceStatusActive,
		entity.ServiceStatusExpiringSoon,
		entity.ServiceStatusExpired,
		entity.ServiceStatusSuspended,
	}
	rows := make([]dto.ServiceStatusRow, len(order))
	index := make(map[string]int, len(order))
	for i, s := range order {
		rows[i] = dto.ServiceStatusRow{Status: s, MonthlyCost: decimal.Zero}
		index[s] = i
	}
	today := uc.now()
	for _, s := range items {
		st := schedule.EffectiveStatus(s.Status, s.EndDate, today, uc.cfg.ServiceExpiringDays)
		r := &rows[index[st]]
		r.Count++
		r.MonthlyCost = r.MonthlyCost.Add(s.MonthlyCost)
	}
	return rows, nil
}

// Export genera el archivo del reporte kind en el formato pedido (xlsx o pdf).
func (uc *UseCase) Export(ctx context.Context, scope entity.UserScope, kind, format string, q dto.ReportQuery) ([]byte, string, string, error) {
	exp, ok := uc.exporters[format]
	if !ok {
		return nil, "", "", fmt.Errorf("formato de exportación %q no soportado: %w", format, domain.ErrInvalidInput)
	}
	doc, err := uc.Document(ctx, scope, kind, q)
	if err != nil {
		return nil, "", "", err
	}
	data, err := exp.Export(doc)
	if err != nil {
		return nil, "", "", fmt.Errorf("reports.Export: %w", err)
	}
	return data, doc.Filename + "." + exp.Extension(), exp.ContentType(), nil
}

func averagePrice(b repository.GoodBalance) decimal.Decimal {
	if b.PurchasedQty == 0 {
		return decimal.Zero
	}
	return b.PurchasedValue.Div(decimal.NewFromInt(int64(b.PurchasedQty)))
}

func categoryName(name string) string {
	if name == "" {
		return noCategory
	}
	return name
}

func rank(facts []repository.DeliveryFact, keyOf func(repository.DeliveryFact) string) []dto.RankingRow {
	index := map[string]int{}
	var rows []dto.RankingRow
	for _, f := range facts {
		k := keyOf(f)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, dto.RankingRow{Name: k, Total: decimal.Zero})
		}
		rows[i].Quantity += f.Quantity
		rows[i].Total = rows[i].Total.Add(f.Total)
	}
	return rows
}

func positions(rows []dto.RankingRow, limit int) []dto.RankingRow {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		return []dto.RankingRow{}
	}
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
