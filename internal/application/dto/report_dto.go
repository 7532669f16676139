package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse tablero principal: OC por vencer y bienes con stock bajo.
type DashboardResponse struct {
	ExpiringOrders []ExpiringOrder `json:"expiring_orders"`
	LowStock       []LowStockItem  `json:"low_stock"`
}

// ExpiringOrder OC cuya fecha de fin cae dentro de la ventana (o ya pasó).
type ExpiringOrder struct {
	OrderID       string `json:"order_id"`
	Number        string `json:"number"`
	Supplier      string `json:"supplier"`
	StartDate     Date   `json:"start_date"`
	EndDate       Date   `json:"end_date"`
	DaysRemaining int    `json:"days_remaining"` // negativo si ya venció
}

// LowStockItem bien con stock global menor o igual al umbral.
type LowStockItem struct {
	GoodID    string `json:"good_id"`
	GoodName  string `json:"good_name"`
	Available int    `json:"available"`
}

// StockByGoodRow fila del reporte de stock por bien.
type StockByGoodRow struct {
	GoodID         string          `json:"good_id"`
	GoodName       string          `json:"good_name"`
	CategoryName   string          `json:"category_name"`
	Stock          int             `json:"stock"`
	AveragePrice   decimal.Decimal `json:"average_price"` // promedio ponderado de compra
	StockValue     decimal.Decimal `json:"stock_value"`
	DeliveredQty   int             `json:"delivered_qty"`
	DeliveredValue decimal.Decimal `json:"delivered_value"`
}

// StockByCategoryRow fila del reporte de stock por rubro. Stock suma solo saldos positivos.
type StockByCategoryRow struct {
	CategoryName   string          `json:"category_name"`
	Goods          int             `json:"goods"`
	Stock          int             `json:"stock"`
	StockValue     decimal.Decimal `json:"stock_value"`
	DeliveredQty   int             `json:"delivered_qty"`
	DeliveredValue decimal.Decimal `json:"delivered_value"`
}

// MonthRow entregas de un mes.
type MonthRow struct {
	Month      int             `json:"month"`
	Deliveries int             `json:"deliveries"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
}

// CategoryGoodRow entregas agrupadas por rubro y bien.
type CategoryGoodRow struct {
	CategoryName string          `json:"category_name"`
	GoodName     string          `json:"good_name"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
}

// DeliveriesByYearResponse entregas del año por mes con detalle por rubro y bien.
type DeliveriesByYearResponse struct {
	Year       int               `json:"year"`
	Deliveries int               `json:"deliveries"`
	Quantity   int               `json:"quantity"`
	Total      decimal.Decimal   `json:"total"`
	Months     []MonthRow        `json:"months"`
	Detail     []CategoryGoodRow `json:"detail"`
}

// AreaRow entregas agrupadas por área o persona.
type AreaRow struct {
	AreaOrPerson string          `json:"area_or_person"`
	Deliveries   int             `json:"deliveries"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
}

// RankingRow fila de ranking (bien o proveedor).
type RankingRow struct {
	Position int             `json:"position"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// TotalsResponse totales globales del almacén.
type TotalsResponse struct {
	Goods          int             `json:"goods"`
	PurchasedQty   int             `json:"purchased_qty"`
	PurchasedValue decimal.Decimal `json:"purchased_value"`
	DeliveredQty   int             `json:"delivered_qty"`
	DeliveredValue decimal.Decimal `json:"delivered_value"`
	Stock          int             `json:"stock"`
	StockValue     decimal.Decimal `json:"stock_value"`
	Deliveries     int             `json:"deliveries"`
}

// ServiceStatusRow contratos agrupados por estado efectivo.
type ServiceStatusRow struct {
	Status      string          `json:"status"`
	Count       int             `json:"count"`
	MonthlyCost decimal.Decimal `json:"monthly_cost"`
}

// ReportQuery parámetros comunes de los reportes.
type ReportQuery struct {
	Search string     `query:"q"`
	Year   int        `query:"year"`
	From   *time.Time `query:"-"`
	To     *time.Time `query:"-"`
	Limit  int        `query:"limit"`
}

// ReportTable una tabla exportable (hoja de cálculo o sección de PDF).
type ReportTable struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReportDocument reporte listo para exportar.
type ReportDocument struct {
	Title    string        `json:"title"`
	Filename string        `json:"filename"` // sin extensión
	Tables   []ReportTable `json:"tables"`
}
