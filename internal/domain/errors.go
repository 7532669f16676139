package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrUserNotFound  = errors.New("usuario no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrGoodInUse     = errors.New("el bien está referenciado por órdenes de compra o remitos")
	ErrAuditFailed   = errors.New("no se pudo registrar la auditoría")
	ErrLineNotFound  = errors.New("no existe renglón de la orden de compra para el bien")
	ErrOrderRequired = errors.New("debe seleccionar una orden de compra")
)

// Códigos de error por renglón.
const (
	CodeAvailableExceeded = "AVAILABLE_EXCEEDED"
	CodeOrderRequired     = "ORDER_REQUIRED"
	CodeLineNotFound      = "LINE_NOT_FOUND"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeBelowDelivered    = "BELOW_DELIVERED"
	CodeGoodNotFound      = "GOOD_NOT_FOUND"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeDuplicateNumber   = "DUPLICATE_NUMBER"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeDuplicateLine     = "DUPLICATE_LINE"
	CodeRequired          = "REQUIRED"
	CodeInvalidPrice      = "INVALID_PRICE"
	CodeInvalidRange      = "INVALID_RANGE"
	CodeForbiddenCategory = "FORBIDDEN_CATEGORY"
	CodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	CodeInvalidValue      = "INVALID_VALUE"
)

// LineError describe el rechazo de un renglón concreto de un remito u orden.
// GoodName siempre se informa para que el operador pueda corregir la carga.
type LineError struct {
	Line      int    `json:"line"`
	Code      string `json:"code"`
	GoodID    string `json:"good_id,omitempty"`
	GoodName  string `json:"good_name,omitempty"`
	Available int    `json:"available"`
	Requested int    `json:"requested,omitempty"`
	Message   string `json:"message"`
}

func (e *LineError) Error() string { return e.Message }

// NewAvailableExceeded construye el error de cantidad mayor al disponible.
func NewAvailableExceeded(goodID, goodName string, requested, available int) *LineError {
	return &LineError{
		Code:      CodeAvailableExceeded,
		GoodID:    goodID,
		GoodName:  goodName,
		Requested: requested,
		Available: available,
		Message:   fmt.Sprintf("La cantidad (%d) excede el stock disponible (%d) para %s", requested, available, goodName),
	}
}

// NewOrderRequired construye el error de orden de compra ambigua o ausente.
func NewOrderRequired(goodID, goodName string) *LineError {
	return &LineError{
		Code:     CodeOrderRequired,
		GoodID:   goodID,
		GoodName: goodName,
		Message:  fmt.Sprintf("Debe seleccionar una orden de compra para %s", goodName),
	}
}

// NewLineNotFound construye el error de renglón inexistente para (orden, bien).
func NewLineNotFound(goodID, goodName string) *LineError {
	return &LineError{
		Code:     CodeLineNotFound,
		GoodID:   goodID,
		GoodName: goodName,
		Message:  fmt.Sprintf("No se encontró la orden de compra para %s", goodName),
	}
}

// FieldError error de validación sobre un campo de cabecera.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError agrupa los errores de cabecera y de renglones de un envío.
// Un envío con ValidationError no escribe ninguna fila.
type ValidationError struct {
	Fields []FieldError `json:"fields,omitempty"`
	Lines  []LineError  `json:"lines,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Lines))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("renglón %d: %s", l.Line+1, l.Message))
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// AddField agrega un error de cabecera.
func (e *ValidationError) AddField(field, code, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: msg})
}

// AddLine agrega un error de renglón en la posición indicada.
func (e *ValidationError) AddLine(line int, le *LineError) {
	cp := *le
	cp.Line = line
	e.Lines = append(e.Lines, cp)
}

// HasErrors indica si hay al menos un error acumulado.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0 || len(e.Lines) > 0
}

// OrNil devuelve nil cuando no hay errores acumulados.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// AsValidation extrae un *ValidationError de la cadena de errores.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
