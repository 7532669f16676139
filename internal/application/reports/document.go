package reports

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Tipos de reporte exportables.
const (
	KindStockByGood      = "stock-by-good"
	KindStockByCategory  = "stock-by-category"
	KindDeliveriesByYear = "deliveries-by-year"
	KindDeliveriesByArea = "deliveries-by-area"
	KindGoodRanking      = "good-ranking"
	KindSupplierRanking  = "supplier-ranking"
	KindTotals           = "totals"
	KindServicesByStatus = "services-by-status"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Document arma las tablas del reporte kind para exportarlas.
func (uc *UseCase) Document(ctx context.Context, scope entity.UserScope, kind string, q dto.ReportQuery) (*dto.ReportDocument, error) {
	switch kind {
	case KindStockByGood:
		rows, err := uc.StockByGood(ctx, scope, q.Search)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Stock", Headers: []string{"Rubro", "Bien", "Stock", "Precio promedio ($)", "Valor en stock ($)", "Total entregado", "Valor entregado ($)"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.CategoryName, r.GoodName, itoa(r.Stock), r.AveragePrice.StringFixed(2), r.StockValue.StringFixed(2), itoa(r.DeliveredQty), r.DeliveredValue.StringFixed(2)})
		}
		return &dto.ReportDocument{Title: "Estado de stock por bien", Filename: "stock_por_bien", Tables: []dto.ReportTable{t}}, nil

	case KindStockByCategory:
		rows, err := uc.StockByCategory(ctx, scope)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Rubros", Headers: []string{"Rubro", "Bienes", "Stock", "Valor en stock ($)", "Total entregado", "Valor entregado ($)"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.CategoryName, itoa(r.Goods), itoa(r.Stock), r.StockValue.StringFixed(2), itoa(r.DeliveredQty), r.DeliveredValue.StringFixed(2)})
		}
		return &dto.ReportDocument{Title: "Estado de stock por rubro", Filename: "stock_por_rubro", Tables: []dto.ReportTable{t}}, nil

	case KindDeliveriesByYear:
		resp, err := uc.DeliveriesByYear(ctx, scope, q.Year)
		if err != nil {
			return nil, err
		}
		months := dto.ReportTable{Name: "Totales", Headers: []string{"Mes", "Remitos", "Cantidad entregada", "Monto total ($)"}}
		for _, m := range resp.Months {
			months.Rows = append(months.Rows, []string{monthNames[m.Month-1], itoa(m.Deliveries), itoa(m.Quantity), m.Total.StringFixed(2)})
		}
		months.Rows = append(months.Rows, []string{"TOTAL", itoa(resp.Deliveries), itoa(resp.Quantity), resp.Total.StringFixed(2)})
		detail := dto.ReportTable{Name: "Detalle " + itoa(resp.Year), Headers: []string{"Rubro", "Bien", "Cantidad entregada", "Monto total ($)"}}
		for _, d := range resp.Detail {
			detail.Rows = append(detail.Rows, []string{d.CategoryName, d.GoodName, itoa(d.Quantity), d.Total.StringFixed(2)})
		}
		return &dto.ReportDocument{
			Title:    fmt.Sprintf("Entregas año %d", resp.Year),
			Filename: fmt.Sprintf("entregas_%d", resp.Year),
			Tables:   []dto.ReportTable{months, detail},
		}, nil

	case KindDeliveriesByArea:
		rows, err := uc.DeliveriesByArea(ctx, scope, q.From, q.To)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Áreas", Headers: []string{"Área / Persona", "Remitos", "Cantidad entregada", "Monto total ($)"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.AreaOrPerson, itoa(r.Deliveries), itoa(r.Quantity), r.Total.StringFixed(2)})
		}
		return &dto.ReportDocument{Title: "Entregas por área / persona", Filename: "entregas_por_area", Tables: []dto.ReportTable{t}}, nil

	case KindGoodRanking, KindSupplierRanking:
		title, file, first := "Ranking de bienes más entregados", "ranking_bienes", "Bien"
		rank := uc.GoodRanking
		if kind == KindSupplierRanking {
			title, file, first = "Ranking de proveedores", "ranking_proveedores", "Proveedor"
			rank = uc.SupplierRanking
		}
		rows, err := rank(ctx, scope, q.Limit)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Ranking", Headers: []string{"#", first, "Cantidad entregada", "Valor total entregado ($)"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{itoa(r.Position), r.Name, itoa(r.Quantity), r.Total.StringFixed(2)})
		}
		return &dto.ReportDocument{Title: title, Filename: file, Tables: []dto.ReportTable{t}}, nil

	case KindTotals:
		tot, err := uc.Totals(ctx, scope)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Totales", Headers: []string{"Concepto", "Valor"}, Rows: [][]string{
			{"Bienes", itoa(tot.Goods)},
			{"Cantidad comprada", itoa(tot.PurchasedQty)},
			{"Monto comprado ($)", tot.PurchasedValue.StringFixed(2)},
			{"Cantidad entregada", itoa(tot.DeliveredQty)},
			{"Monto entregado ($)", tot.DeliveredValue.StringFixed(2)},
			{"Stock", itoa(tot.Stock)},
			{"Valor en stock ($)", tot.StockValue.StringFixed(2)},
			{"Remitos", itoa(tot.Deliveries)},
		}}
		return &dto.ReportDocument{Title: "Totales generales", Filename: "totales", Tables: []dto.ReportTable{t}}, nil

	case KindServicesByStatus:
		rows, err := uc.ServicesByStatus(ctx, scope)
		if err != nil {
			return nil, err
		}
		t := dto.ReportTable{Name: "Servicios", Headers: []string{"Estado", "Contratos", "Costo mensual ($)"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.Status, itoa(r.Count), r.MonthlyCost.StringFixed(2)})
		}
		return &dto.ReportDocument{Title: "Servicios por estado", Filename: "servicios_por_estado", Tables: []dto.ReportTable{t}}, nil
	}
	return nil, fmt.Errorf("reporte %q desconocido: %w", kind, domain.ErrNotFound)
}

func itoa(n int) string { return strconv.Itoa(n) }
