package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/services"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ServiceHandler contratos de servicio y sus cuotas.
type ServiceHandler struct {
	uc  *services.UseCase
	log *logger.Logger
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *services.UseCase, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar contratos de servicio
// @Tags         services
// @Security     Bearer
// @Produce      json
// @Param        q            query  string  false  "Nombre, proveedor o expediente"
// @Param        status       query  string  false  "ACTIVE, EXPIRING_SOON, EXPIRED, SUSPENDED"
// @Param        frequency    query  string  false  "Frecuencia de pago"
// @Param        category_id  query  string  false  "Rubro"
// @Success      200  {array}  dto.ServiceResponse
// @Router       /api/services [get]
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetScope(c), dto.ServiceFilter{
		Search:     c.Query("q"),
		Status:     c.Query("status"),
		Frequency:  c.Query("frequency"),
		CategoryID: optionalQuery(c, "category_id"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear contrato de servicio
// @Tags         services
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ServiceRequest  true  "Contrato"
// @Success      201   {object}  dto.ServiceResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/services [post]
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in dto.ServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), GetScope(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener contrato de servicio
// @Tags         services
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del contrato"
// @Success      200  {object}  dto.ServiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id} [get]
func (h *ServiceHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetScope(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar contrato de servicio
// @Tags         services
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del contrato"
// @Param        body  body  dto.ServiceRequest  true  "Contrato"
// @Success      200   {object}  dto.ServiceResponse
// @Router       /api/services/{id} [put]
func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	var in dto.ServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), GetScope(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar contrato de servicio
// @Tags         services
// @Security     Bearer
// @Param        id  path  string  true  "ID del contrato"
// @Success      204
// @Router       /api/services/{id} [delete]
func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), GetScope(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateSchedule godoc
// @Summary      Regenerar el cronograma de cuotas
// @Tags         services
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del contrato"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/services/{id}/schedule [post]
func (h *ServiceHandler) GenerateSchedule(c *fiber.Ctx) error {
	out, err := h.uc.GenerateSchedule(c.UserContext(), GetScope(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListPayments godoc
// @Summary      Cuotas del contrato
// @Tags         services
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del contrato"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/services/{id}/payments [get]
func (h *ServiceHandler) ListPayments(c *fiber.Ctx) error {
	out, err := h.uc.ListPayments(c.UserContext(), GetScope(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// MarkPaid godoc
// @Summary      Registrar el pago de una cuota
// @Tags         services
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la cuota"
// @Param        body  body  dto.MarkPaidRequest  true  "Pago"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/payments/{id}/pay [post]
func (h *ServiceHandler) MarkPaid(c *fiber.Ctx) error {
	var in dto.MarkPaidRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.MarkPaid(c.UserContext(), GetScope(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Renew godoc
// @Summary      Renovar contrato
// @Tags         services
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del contrato"
// @Param        body  body  dto.RenewRequest  true  "Nueva fecha de fin"
// @Success      200   {object}  dto.ServiceResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/services/{id}/renew [post]
func (h *ServiceHandler) Renew(c *fiber.Ctx) error {
	var in dto.RenewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Renew(c.UserContext(), GetActor(c), GetScope(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
