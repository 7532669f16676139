package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// ErrMissingColumn la planilla no tiene una columna obligatoria.
var ErrMissingColumn = errors.New("xlsx: falta una columna obligatoria")

// Encabezados aceptados por campo, ya normalizados (mayúsculas, sin tildes).
var (
	orderColumns = map[string][]string{
		"category":       {"RUBRO", "CATEGORIA"},
		"good_name":      {"BIEN", "DESCRIPCION", "ARTICULO"},
		"catalog_code":   {"CODIGO", "CODIGO CATALOGO", "CATALOGO"},
		"line_reference": {"RENGLON", "REFERENCIA"},
		"order_number":   {"OC", "ORDEN", "ORDEN DE COMPRA", "NUMERO OC"},
		"quantity":       {"CANTIDAD"},
		"unit_price":     {"PRECIO", "PRECIO UNITARIO"},
	}
	orderRequired = []string{"category", "good_name", "order_number", "quantity"}

	deliveryColumns = map[string][]string{
		"area_or_person": {"DEPENDENCIA", "AREA", "AREA O PERSONA", "DESTINO"},
		"delivery_date":  {"FECHA", "FECHA ENTREGA", "FECHA DE ENTREGA"},
		"order_number":   {"OC", "ORDEN", "ORDEN DE COMPRA", "NUMERO OC"},
		"line_reference": {"RENGLON", "REFERENCIA"},
		"good_name":      {"BIEN", "DESCRIPCION", "ARTICULO"},
		"quantity":       {"CANTIDAD", "CANTIDAD ENTREGADA"},
	}
	deliveryRequired = []string{"order_number", "good_name", "quantity"}
)

var accents = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U")

// sheet filas de una hoja con el índice de cada campo reconocido.
type sheet struct {
	rows    [][]string
	columns map[string]int
}

// ReadOrderRows lee la primera hoja del libro como planilla de órdenes de compra.
// Las filas vacías se omiten; Row es el número de fila en la planilla (el encabezado es la 1).
func ReadOrderRows(r io.Reader) ([]dto.OrderImportRow, error) {
	s, err := readSheet(r, orderColumns, orderRequired)
	if err != nil {
		return nil, err
	}
	out := []dto.OrderImportRow{}
	for i, row := range s.rows {
		if blank(row) {
			continue
		}
		out = append(out, dto.OrderImportRow{
			Row:           i + 2,
			Category:      s.get(row, "category"),
			GoodName:      s.get(row, "good_name"),
			CatalogCode:   s.get(row, "catalog_code"),
			LineReference: s.get(row, "line_reference"),
			OrderNumber:   s.get(row, "order_number"),
			Quantity:      s.get(row, "quantity"),
			UnitPrice:     s.get(row, "unit_price"),
		})
	}
	return out, nil
}

// ReadDeliveryRows lee la primera hoja del libro como planilla de entregas.
func ReadDeliveryRows(r io.Reader) ([]dto.DeliveryImportRow, error) {
	s, err := readSheet(r, deliveryColumns, deliveryRequired)
	if err != nil {
		return nil, err
	}
	out := []dto.DeliveryImportRow{}
	for i, row := range s.rows {
		if blank(row) {
			continue
		}
		out = append(out, dto.DeliveryImportRow{
			Row:           i + 2,
			AreaOrPerson:  s.get(row, "area_or_person"),
			DeliveryDate:  s.get(row, "delivery_date"),
			OrderNumber:   s.get(row, "order_number"),
			LineReference: s.get(row, "line_reference"),
			GoodName:      s.get(row, "good_name"),
			Quantity:      s.get(row, "quantity"),
		})
	}
	return out, nil
}

func readSheet(r io.Reader, columns map[string][]string, required []string) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: abrir libro: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: el libro no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: leer hoja %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: la hoja %q está vacía", ErrMissingColumn, sheets[0])
	}

	idx := map[string]int{}
	for c, h := range rows[0] {
		norm := accents.Replace(textnorm.Upper(h))
		for field, aliases := range columns {
			if _, ok := idx[field]; ok {
				continue
			}
			for _, a := range aliases {
				if norm == a {
					idx[field] = c
					break
				}
			}
		}
	}
	for _, field := range required {
		if _, ok := idx[field]; !ok {
			return nil, fmt.Errorf("%w: %s (se espera %s)", ErrMissingColumn, field, strings.Join(columns[field], " / "))
		}
	}
	return &sheet{rows: rows[1:], columns: idx}, nil
}

func (s *sheet) get(row []string, field string) string {
	c, ok := s.columns[field]
	if !ok || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
