// Package pdf genera con Maroto v2 el remito imprimible y los reportes exportados a PDF.
//
// Layout del remito (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Almacén + N° remito       │  Fecha                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESTINO: Área / persona + observaciones                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Bien | OC | P.Unit | Total                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                      │
//	│  FIRMAS: Entregó / Recibió  + QR con el id del remito       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/delivery"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/reports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

var (
	_ delivery.NoteRenderer = (*Generator)(nil)
	_ reports.Exporter      = (*Generator)(nil)
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Generator implementa delivery.NoteRenderer y reports.Exporter usando Maroto v2.
type Generator struct {
	orgName string
}

// NewGenerator construye el generador; orgName encabeza cada documento.
func NewGenerator(orgName string) *Generator {
	if orgName == "" {
		orgName = "ALMACÉN"
	}
	return &Generator{orgName: orgName}
}

func (g *Generator) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.orgName, true).
		Build()
	return maroto.New(cfg)
}

// RenderDeliveryNote genera el remito imprimible y devuelve sus bytes.
func (g *Generator) RenderDeliveryNote(d *dto.DeliveryResponse) ([]byte, error) {
	m := g.newDocument("Remito " + d.ID)

	m.AddRows(g.noteHeaderRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(destinationRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow([]string{"Cant.", "Bien", "OC", "Precio Unit.", "Total"}, []int{1, 5, 2, 2, 2}))
	for _, r := range noteLineRows(d.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1})),
		col.New(2).Add(text.New("$"+formatMoney(d.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1, Color: colorPrimary,
		})),
	))

	m.AddRows(row.New(15))
	m.AddRows(signatureRow(d.ID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar remito: %w", err)
	}
	return doc.GetBytes(), nil
}

// Export genera el reporte con una tabla por sección.
func (g *Generator) Export(doc *dto.ReportDocument) ([]byte, error) {
	m := g.newDocument(doc.Title)
	m.AddRows(row.New(12).Add(
		col.New(8).Add(text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2})),
		col.New(4).Add(text.New(g.orgName, props.Text{Size: 9, Align: align.Right, Color: colorGray, Top: 4})),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, t := range doc.Tables {
		if len(doc.Tables) > 1 {
			m.AddRows(row.New(9).Add(col.New(12).Add(
				text.New(t.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}),
			)))
		}
		sizes := columnSizes(len(t.Headers))
		m.AddRows(tableHeaderRow(t.Headers, sizes))
		for i, values := range t.Rows {
			r := row.New(6)
			for j, v := range values {
				if j >= len(sizes) {
					break
				}
				a := align.Left
				if j > 0 && numeric(v) {
					a = align.Right
				}
				r.Add(col.New(sizes[j]).Add(text.New(v, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1})))
			}
			if i%2 == 1 {
				r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
			}
			m.AddRows(r)
		}
		m.AddRows(row.New(4))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return out.GetBytes(), nil
}

// Extension extensión de archivo del exportador.
func (g *Generator) Extension() string { return "pdf" }

// ContentType tipo MIME del exportador.
func (g *Generator) ContentType() string { return "application/pdf" }

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *Generator) noteHeaderRow(d *dto.DeliveryResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.orgName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Entrega de bienes de almacén", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("REMITO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("N° "+shortID(d.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+d.Timestamp.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func destinationRow(d *dto.DeliveryResponse) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ÁREA / PERSONA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(d.AreaOrPerson, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Observaciones: "+nonEmpty(d.Notes, "-"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow(labels []string, sizes []int) core.Row {
	r := row.New(8)
	for i, label := range labels {
		if i >= len(sizes) {
			break
		}
		r.Add(col.New(sizes[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	r.WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	return r
}

func noteLineRows(lines []dto.DeliveryLineResponse) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		order := "-"
		if l.PurchaseOrderID != nil {
			order = shortID(*l.PurchaseOrderID)
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.GoodName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(order, props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New("$"+formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return result
}

func signatureRow(id string) core.Row {
	sign := func(label string) core.Col {
		return col.New(4).Add(
			text.New("______________________________", props.Text{Size: 8, Align: align.Center, Top: 14}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 19, Color: colorGray}),
		)
	}
	return row.New(30).Add(
		sign("Entregó"),
		sign("Recibió (firma y aclaración)"),
		col.New(4).Add(code.NewQr(id, props.Rect{Percent: 80, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// columnSizes reparte las 12 columnas de la grilla; el resto va a la segunda columna
// (la descriptiva en todos los reportes).
func columnSizes(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > 12 {
		n = 12
	}
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = 12 / n
	}
	rest := 12 - (12/n)*n
	target := 0
	if n > 1 {
		target = 1
	}
	sizes[target] += rest
	return sizes
}

func numeric(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 25000.5 → "25.000,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
