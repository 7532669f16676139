package dto

// OrderImportRow fila de la planilla de órdenes de compra, con los valores tal como vienen.
type OrderImportRow struct {
	Row           int    `json:"row"`
	Category      string `json:"category"`
	GoodName      string `json:"good_name"`
	CatalogCode   string `json:"catalog_code"`
	LineReference string `json:"line_reference"`
	OrderNumber   string `json:"order_number"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
}

// DeliveryImportRow fila de la planilla de entregas.
type DeliveryImportRow struct {
	Row           int    `json:"row"`
	AreaOrPerson  string `json:"area_or_person"`
	DeliveryDate  string `json:"delivery_date"`
	OrderNumber   string `json:"order_number"`
	LineReference string `json:"line_reference"`
	GoodName      string `json:"good_name"`
	Quantity      string `json:"quantity"`
}

// RowError problema en una fila; Row es el número de fila de la planilla.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult resultado de una importación. Las filas con error no se escriben; las advertencias
// señalan filas importadas con valores supuestos (modo lenient).
type ImportResult struct {
	Mode     string     `json:"mode"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
	Warnings []RowError `json:"warnings"`
}
