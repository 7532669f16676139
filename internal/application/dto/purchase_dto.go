package dto

import "github.com/shopspring/decimal"

// OrderLineInput renglón enviado al crear/editar una OC. ID vacío = renglón nuevo.
type OrderLineInput struct {
	ID         string          `json:"id,omitempty"`
	GoodID     string          `json:"good_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineNumber int             `json:"line_number"`
}

// OrderRequest entrada para crear o actualizar una OC. DeleteLineIDs solo aplica al editar.
type OrderRequest struct {
	Number        string           `json:"number"`
	StartDate     Date             `json:"start_date"`
	EndDate       *Date            `json:"end_date"`
	Supplier      string           `json:"supplier"`
	CategoryID    *string          `json:"category_id"`
	Lines         []OrderLineInput `json:"lines"`
	DeleteLineIDs []string         `json:"delete_line_ids,omitempty"`
}

// OrderLineResponse renglón de OC con su saldo.
type OrderLineResponse struct {
	ID         string          `json:"id"`
	GoodID     string          `json:"good_id"`
	GoodName   string          `json:"good_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LineNumber int             `json:"line_number"`
}

// OrderResponse salida de una OC.
type OrderResponse struct {
	ID         string              `json:"id"`
	Number     string              `json:"number"`
	StartDate  Date                `json:"start_date"`
	EndDate    *Date               `json:"end_date"`
	Supplier   string              `json:"supplier"`
	CategoryID *string             `json:"category_id"`
	Lines      []OrderLineResponse `json:"lines,omitempty"`
	Total      decimal.Decimal     `json:"total"`
}

// OrderListResponse lista paginada de OC.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderGoodResponse bien incluido en una OC con su saldo en esa OC.
type OrderGoodResponse struct {
	GoodID    string          `json:"good_id"`
	GoodName  string          `json:"good_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Available int             `json:"available"`
}

// OrderWithStockResponse OC con stock disponible de un bien.
type OrderWithStockResponse struct {
	OrderID   string          `json:"order_id"`
	Number    string          `json:"number"`
	Supplier  string          `json:"supplier"`
	Available int             `json:"available"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PriceResponse precio unitario resuelto para (orden, bien).
type PriceResponse struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
}
