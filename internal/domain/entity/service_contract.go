package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frecuencias de pago de un contrato de servicio.
const (
	FrequencyWeekly   = "WEEKLY"
	FrequencyBiweekly = "BIWEEKLY"
	FrequencyMonthly  = "MONTHLY"
)

// Estados de un contrato de servicio. Solo SUSPENDED se respeta desde el valor guardado;
// el resto se deriva de la fecha de fin.
const (
	ServiceStatusActive       = "ACTIVE"
	ServiceStatusExpiringSoon = "EXPIRING_SOON"
	ServiceStatusExpired      = "EXPIRED"
	ServiceStatusSuspended    = "SUSPENDED"
)

// Estados de una cuota de servicio.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

// ValidFrequency indica si f es una frecuencia conocida.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// ValidServiceStatus indica si s es un estado conocido.
func ValidServiceStatus(s string) bool {
	switch s {
	case ServiceStatusActive, ServiceStatusExpiringSoon, ServiceStatusExpired, ServiceStatusSuspended:
		return true
	}
	return false
}

// ServiceContract contrato de servicio recurrente (limpieza, mantenimiento, seguridad...).
type ServiceContract struct {
	ID                 string
	Name               string
	Description        string
	Supplier           string
	Frequency          string
	MonthlyCost        decimal.Decimal
	StartDate          time.Time
	EndDate            *time.Time
	Status             string
	CategoryID         *string
	ContractFileNumber string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *ServiceContract) AuditType() string { return "ServiceContract" }
func (s *ServiceContract) AuditID() string   { return s.ID }
func (s *ServiceContract) AuditRepr() string { return s.Name }

func (s *ServiceContract) AuditFields() map[string]string {
	return map[string]string{
		"name":                 s.Name,
		"description":          s.Description,
		"supplier":             s.Supplier,
		"frequency":            s.Frequency,
		"monthly_cost":         s.MonthlyCost.StringFixed(2),
		"start_date":           formatDate(&s.StartDate),
		"end_date":             formatDate(s.EndDate),
		"status":               s.Status,
		"category":             deref(s.CategoryID),
		"contract_file_number": s.ContractFileNumber,
		"notes":                s.Notes,
	}
}

// ServicePayment cuota programada de un contrato.
type ServicePayment struct {
	ID                string
	ServiceID         string
	DueDate           time.Time
	Status            string
	PaymentFileNumber string
	PaymentDate       *time.Time
	PaidAmount        decimal.Decimal
}
