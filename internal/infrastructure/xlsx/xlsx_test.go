package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExport_UnaHojaPorTabla(t *testing.T) {
	e := NewExporter()
	out, err := e.Export(&dto.ReportDocument{
		Title: "Entregas 2025",
		Tables: []dto.ReportTable{
			{Name: "Totales", Headers: []string{"Mes", "Cantidad"}, Rows: [][]string{{"Enero", "30"}, {"Febrero", "12.5"}}},
			{Name: "Detalle: Enero", Headers: []string{"Bien", "Cantidad"}, Rows: [][]string{{"CEMENTO", "30"}}},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Totales", "Detalle Enero"}, f.GetSheetList())
	v, err := f.GetCellValue("Totales", "B2")
	require.NoError(t, err)
	assert.Equal(t, "30", v)
	v, err = f.GetCellValue("Detalle Enero", "A2")
	require.NoError(t, err)
	assert.Equal(t, "CEMENTO", v)
	assert.Equal(t, "xlsx", e.Extension())
}

func TestSheetName(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "Hoja1", sheetName("", 0, used))
	assert.Equal(t, "Totales", sheetName("Totales", 1, used))
	assert.Equal(t, "Totales 2", sheetName("Totales", 2, used))
	assert.Len(t, []rune(sheetName("Un nombre de hoja demasiado largo para excel", 3, used)), 31)
}

func TestReadOrderRows_EncabezadosConTildes(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Rubro", "Descripción", "Código", "Renglón", "OC", "Cantidad", "Precio unitario"},
		{"Construcción", "Cemento", "C-1", "3", "OC-1", 100, "15,50"},
		{},
		{"", "Arena", "", "", "OC-1", 5, ""},
	})

	rows, err := ReadOrderRows(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dto.OrderImportRow{
		Row: 2, Category: "Construcción", GoodName: "Cemento", CatalogCode: "C-1",
		LineReference: "3", OrderNumber: "OC-1", Quantity: "100", UnitPrice: "15,50",
	}, rows[0])
	assert.Equal(t, 4, rows[1].Row)
	assert.Equal(t, "Arena", rows[1].GoodName)
}

func TestReadDeliveryRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Dependencia", "Fecha", "OC", "Bien", "Cantidad entregada"},
		{"Obra norte", "10/04/2025", "OC-1", "Cemento", 30},
	})

	rows, err := ReadDeliveryRows(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Obra norte", rows[0].AreaOrPerson)
	assert.Equal(t, "10/04/2025", rows[0].DeliveryDate)
	assert.Equal(t, "30", rows[0].Quantity)
	assert.Empty(t, rows[0].LineReference)
}

func TestReadDeliveryRows_FaltaColumna(t *testing.T) {
	buf := workbook(t, [][]any{{"Dependencia", "Fecha", "Bien", "Cantidad"}})
	_, err := ReadDeliveryRows(buf)
	assert.ErrorIs(t, err, ErrMissingColumn)
}
