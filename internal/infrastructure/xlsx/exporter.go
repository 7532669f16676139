// Package xlsx exporta reportes a planillas Excel y lee las planillas de importación masiva.
package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/reports"
)

var _ reports.Exporter = (*Exporter)(nil)

// Exporter genera un libro con una hoja por tabla del reporte.
type Exporter struct{}

// NewExporter construye el exportador.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Extension extensión de archivo del exportador.
func (e *Exporter) Extension() string { return "xlsx" }

// ContentType tipo MIME del exportador.
func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export arma el libro. Los valores numéricos se escriben como números para que la planilla
// pueda sumarlos.
func (e *Exporter) Export(doc *dto.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	tables := doc.Tables
	if len(tables) == 0 {
		tables = []dto.ReportTable{{Name: doc.Title}}
	}

	used := map[string]int{}
	for i, t := range tables {
		name := sheetName(t.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("xlsx: hoja %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx: hoja %q: %w", name, err)
		}

		if len(t.Headers) > 0 {
			if err := f.SetSheetRow(name, "A1", &t.Headers); err != nil {
				return nil, fmt.Errorf("xlsx: encabezado: %w", err)
			}
			last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
			if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
				return nil, fmt.Errorf("xlsx: encabezado: %w", err)
			}
		}
		for r, values := range t.Rows {
			cells := make([]any, len(values))
			for c, v := range values {
				cells[c] = cellValue(v)
			}
			axis, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, axis, &cells); err != nil {
				return nil, fmt.Errorf("xlsx: fila %d: %w", r+2, err)
			}
		}
		if len(t.Headers) > 0 {
			lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
			_ = f.SetColWidth(name, "A", lastCol, 18)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue número si el texto es numérico; texto en otro caso.
func cellValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// sheetName nombre de hoja válido y único (máximo 31 caracteres, sin caracteres reservados).
func sheetName(name string, idx int, used map[string]int) string {
	clean := []rune{}
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) > 31 {
		clean = clean[:31]
	}
	s := string(clean)
	if s == "" {
		s = "Hoja" + strconv.Itoa(idx+1)
	}
	used[s]++
	if n := used[s]; n > 1 {
		suffix := " " + strconv.Itoa(n)
		r := []rune(s)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		s = string(r) + suffix
	}
	return s
}
