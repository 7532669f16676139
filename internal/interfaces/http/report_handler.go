package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/reports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ReportHandler tablero, reportes y su exportación.
type ReportHandler struct {
	uc  *reports.UseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Dashboard godoc
// @Summary      Tablero: OC por vencer y bienes con stock bajo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// StockByGood godoc
// @Summary      Stock por bien
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "Búsqueda por bien"
// @Success      200  {array}  dto.StockByGoodRow
// @Router       /api/reports/stock-by-good [get]
func (h *ReportHandler) StockByGood(c *fiber.Ctx) error {
	out, err := h.uc.StockByGood(c.UserContext(), GetScope(c), c.Query("q"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// StockByCategory godoc
// @Summary      Stock por rubro
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockByCategoryRow
// @Router       /api/reports/stock-by-category [get]
func (h *ReportHandler) StockByCategory(c *fiber.Ctx) error {
	out, err := h.uc.StockByCategory(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeliveriesByYear godoc
// @Summary      Entregas por mes de un año
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        year  query  int  false  "Año (por defecto el actual)"
// @Success      200  {object}  dto.DeliveriesByYearResponse
// @Router       /api/reports/deliveries-by-year [get]
func (h *ReportHandler) DeliveriesByYear(c *fiber.Ctx) error {
	out, err := h.uc.DeliveriesByYear(c.UserContext(), GetScope(c), c.QueryInt("year", 0))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeliveriesByArea godoc
// @Summary      Entregas por área o persona
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {array}  dto.AreaRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/deliveries-by-area [get]
func (h *ReportHandler) DeliveriesByArea(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.DeliveriesByArea(c.UserContext(), GetScope(c), from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GoodRanking godoc
// @Summary      Ranking de bienes por cantidad entregada
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Posiciones"  default(10)
// @Success      200  {array}  dto.RankingRow
// @Router       /api/reports/good-ranking [get]
func (h *ReportHandler) GoodRanking(c *fiber.Ctx) error {
	out, err := h.uc.GoodRanking(c.UserContext(), GetScope(c), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// SupplierRanking godoc
// @Summary      Ranking de proveedores por monto entregado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Posiciones"  default(10)
// @Success      200  {array}  dto.RankingRow
// @Router       /api/reports/supplier-ranking [get]
func (h *ReportHandler) SupplierRanking(c *fiber.Ctx) error {
	out, err := h.uc.SupplierRanking(c.UserContext(), GetScope(c), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Totals godoc
// @Summary      Totales generales
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TotalsResponse
// @Router       /api/reports/totals [get]
func (h *ReportHandler) Totals(c *fiber.Ctx) error {
	out, err := h.uc.Totals(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ServicesByStatus godoc
// @Summary      Contratos de servicio por estado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ServiceStatusRow
// @Router       /api/reports/services-by-status [get]
func (h *ReportHandler) ServicesByStatus(c *fiber.Ctx) error {
	out, err := h.uc.ServicesByStatus(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar un reporte
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        kind    path   string  true   "stock-by-good, stock-by-category, deliveries-by-year, deliveries-by-area, good-ranking, supplier-ranking, totals, services-by-status"
// @Param        format  query  string  false  "xlsx | pdf"  default(xlsx)
// @Param        q       query  string  false  "Búsqueda (stock-by-good)"
// @Param        year    query  int     false  "Año (deliveries-by-year)"
// @Param        from    query  string  false  "Desde (deliveries-by-area)"
// @Param        to      query  string  false  "Hasta (deliveries-by-area)"
// @Param        limit   query  int     false  "Posiciones (rankings)"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	q := dto.ReportQuery{
		Search: c.Query("q"),
		Year:   c.QueryInt("year", 0),
		From:   from,
		To:     to,
		Limit:  c.QueryInt("limit", 10),
	}
	data, filename, contentType, err := h.uc.Export(c.UserContext(), GetScope(c), c.Params("kind"), c.Query("format", "xlsx"), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	parse := func(key string) (*time.Time, error) {
		v := c.Query(key)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(dto.DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%s: fecha inválida %q: %w", key, v, domain.ErrInvalidInput)
		}
		return &t, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
