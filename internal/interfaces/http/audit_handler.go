package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// AuditHandler consulta de la bitácora (solo admin).
type AuditHandler struct {
	uc  *audit.UseCase
	log *logger.Logger
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.UseCase, log *logger.Logger) *AuditHandler {
	return &AuditHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Bitácora de cambios
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        target_type  query  string  false  "Tipo de entidad (Good, PurchaseOrder, Delivery, ...)"
// @Param        target_id    query  string  false  "ID de la entidad"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.AuditEntryResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), dto.AuditFilter{
		PageRequest: page(c),
		TargetType:  c.Query("target_type"),
		TargetID:    c.Query("target_id"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
