package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryLineInput renglón de remito. El precio no se acepta del cliente.
// ID vacío = renglón nuevo; PurchaseOrderID vacío usa la OC del remito o se resuelve sola.
type DeliveryLineInput struct {
	ID              string  `json:"id,omitempty"`
	GoodID          string  `json:"good_id"`
	Quantity        int     `json:"quantity"`
	PurchaseOrderID *string `json:"purchase_order_id"`
}

// DeliveryRequest entrada para crear o editar un remito. DeleteLineIDs solo aplica al editar.
type DeliveryRequest struct {
	AreaOrPerson    string              `json:"area_or_person"`
	Notes           string              `json:"notes"`
	PurchaseOrderID *string             `json:"purchase_order_id"`
	Lines           []DeliveryLineInput `json:"lines"`
	DeleteLineIDs   []string            `json:"delete_line_ids,omitempty"`
}

// DeliveryLineResponse renglón de remito.
type DeliveryLineResponse struct {
	ID              string          `json:"id"`
	GoodID          string          `json:"good_id"`
	GoodName        string          `json:"good_name"`
	PurchaseOrderID *string         `json:"purchase_order_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// DeliveryResponse salida de un remito.
type DeliveryResponse struct {
	ID              string                 `json:"id"`
	Timestamp       time.Time              `json:"timestamp"`
	AreaOrPerson    string                 `json:"area_or_person"`
	Notes           string                 `json:"notes"`
	PurchaseOrderID *string                `json:"purchase_order_id"`
	Lines           []DeliveryLineResponse `json:"lines,omitempty"`
	Total           decimal.Decimal        `json:"total"`
}

// DeliveryListResponse lista paginada de remitos.
type DeliveryListResponse struct {
	Items []DeliveryResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
