package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/importer"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ImportReaders convierten el archivo subido en filas de importación.
type ImportReaders struct {
	Orders     func(io.Reader) ([]dto.OrderImportRow, error)
	Deliveries func(io.Reader) ([]dto.DeliveryImportRow, error)
}

// ImportHandler importación masiva desde planillas (solo admin).
type ImportHandler struct {
	im      *importer.Importer
	readers ImportReaders
	log     *logger.Logger
}

// NewImportHandler construye el handler.
func NewImportHandler(im *importer.Importer, readers ImportReaders, log *logger.Logger) *ImportHandler {
	return &ImportHandler{im: im, readers: readers, log: log}
}

// Orders godoc
// @Summary      Importar órdenes de compra
// @Description  Cada fila se confirma por separado; las filas con error se informan sin detener la importación.
// @Tags         import
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file    true   "Planilla .xlsx"
// @Param        mode  query     string  false  "strict | lenient"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/import/orders [post]
func (h *ImportHandler) Orders(c *fiber.Ctx) error {
	im, err := h.im.WithMode(c.Query("mode"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, bad := uploadedFile(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	defer f.Close()

	rows, err := h.readers.Orders(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
	}
	out, err := im.ImportOrders(c.UserContext(), rows)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Deliveries godoc
// @Summary      Importar entregas
// @Description  Agrupa las filas en un remito por (área, fecha). En modo strict valida stock y precio.
// @Tags         import
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file    true   "Planilla .xlsx"
// @Param        mode  query     string  false  "strict | lenient"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/import/deliveries [post]
func (h *ImportHandler) Deliveries(c *fiber.Ctx) error {
	im, err := h.im.WithMode(c.Query("mode"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, bad := uploadedFile(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	defer f.Close()

	rows, err := h.readers.Deliveries(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
	}
	out, err := im.ImportDeliveries(c.UserContext(), rows)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// uploadedFile abre el campo "file" del formulario.
func uploadedFile(c *fiber.Ctx) (io.ReadCloser, *dto.ErrorResponse) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, &dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, &dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"}
	}
	return f, nil
}
