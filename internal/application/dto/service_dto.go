package dto

import "github.com/shopspring/decimal"

// ServiceRequest entrada para crear o actualizar un contrato de servicio.
type ServiceRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Supplier           string          `json:"supplier"`
	Frequency          string          `json:"frequency"`
	MonthlyCost        decimal.Decimal `json:"monthly_cost"`
	StartDate          Date            `json:"start_date"`
	EndDate            *Date           `json:"end_date"`
	Status             string          `json:"status"`
	CategoryID         *string         `json:"category_id"`
	ContractFileNumber string          `json:"contract_file_number"`
	Notes              string          `json:"notes"`
}

// ServiceFilter filtros del listado. Status filtra por estado efectivo.
type ServiceFilter struct {
	Search     string  `query:"q"`
	Status     string  `query:"status"`
	Frequency  string  `query:"frequency"`
	CategoryID *string `query:"category_id"`
}

// ServiceResponse contrato con sus métricas derivadas.
type ServiceResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Supplier           string           `json:"supplier"`
	Frequency          string           `json:"frequency"`
	MonthlyCost        decimal.Decimal  `json:"monthly_cost"`
	StartDate          Date             `json:"start_date"`
	EndDate            *Date            `json:"end_date"`
	Status             string           `json:"status"`
	EffectiveStatus    string           `json:"effective_status"`
	DaysToExpiry       *int             `json:"days_to_expiry"`
	AccruedCost        *decimal.Decimal `json:"accrued_cost"`
	CategoryID         *string          `json:"category_id"`
	ContractFileNumber string           `json:"contract_file_number"`
	Notes              string           `json:"notes"`
}

// PaymentResponse cuota de un contrato.
type PaymentResponse struct {
	ID                string          `json:"id"`
	ServiceID         string          `json:"service_id"`
	DueDate           Date            `json:"due_date"`
	Status            string          `json:"status"`
	PaymentFileNumber string          `json:"payment_file_number"`
	PaymentDate       *Date           `json:"payment_date"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
}

// MarkPaidRequest datos del pago de una cuota. PaidAmount vacío usa el costo mensual.
type MarkPaidRequest struct {
	PaidAmount        *decimal.Decimal `json:"paid_amount"`
	PaymentFileNumber string           `json:"payment_file_number"`
	PaymentDate       *Date            `json:"payment_date"`
}

// RenewRequest renovación de un contrato.
type RenewRequest struct {
	NewEndDate    Date   `json:"new_end_date"`
	FileReference string `json:"file_reference"`
}
