package reports

import "github.com/jhoicas/almacen-api/internal/application/dto"

// Exporter convierte un reporte a un formato de archivo (xlsx, pdf).
type Exporter interface {
	Export(doc *dto.ReportDocument) ([]byte, error)
	Extension() string
	ContentType() string
}

// Config umbrales del tablero y de vencimiento de servicios.
type Config struct {
	LowStockThreshold     int
	OrderExpiryWindowDays int
	ServiceExpiringDays   int
}
