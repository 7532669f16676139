package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// CatalogHandler rubros y bienes.
type CatalogHandler struct {
	uc  *catalog.UseCase
	log *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// ListCategories godoc
// @Summary      Listar rubros
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "Búsqueda por nombre"
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.uc.ListCategories(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateCategory godoc
// @Summary      Crear rubro
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "Rubro"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateCategory(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateCategory godoc
// @Summary      Editar rubro
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del rubro"
// @Param        body  body  dto.CategoryRequest  true  "Rubro"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateCategory(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteCategory godoc
// @Summary      Eliminar rubro
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "ID del rubro"
// @Success      204
// @Router       /api/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGoods godoc
// @Summary      Listar bienes con su stock
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        q            query  string  false  "Nombre, código o renglón"
// @Param        category_id  query  string  false  "Rubro"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.GoodListResponse
// @Router       /api/goods [get]
func (h *CatalogHandler) ListGoods(c *fiber.Ctx) error {
	out, err := h.uc.ListGoods(c.UserContext(), dto.GoodFilter{
		PageRequest: page(c),
		Search:      c.Query("q"),
		CategoryID:  optionalQuery(c, "category_id"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetGood godoc
// @Summary      Obtener bien
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del bien"
// @Success      200  {object}  dto.GoodResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/goods/{id} [get]
func (h *CatalogHandler) GetGood(c *fiber.Ctx) error {
	out, err := h.uc.GetGood(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GoodImage godoc
// @Summary      Imagen del bien
// @Tags         catalog
// @Security     Bearer
// @Produce      octet-stream
// @Param        id  path  string  true  "ID del bien"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/goods/{id}/image [get]
func (h *CatalogHandler) GoodImage(c *fiber.Ctx) error {
	img, err := h.uc.GoodImage(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, nethttp.DetectContentType(img))
	return c.Send(img)
}

// CreateGood godoc
// @Summary      Crear bien
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GoodRequest  true  "Bien"
// @Success      201   {object}  dto.GoodResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/goods [post]
func (h *CatalogHandler) CreateGood(c *fiber.Ctx) error {
	var in dto.GoodRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateGood(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateGood godoc
// @Summary      Editar bien
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del bien"
// @Param        body  body  dto.GoodRequest  true  "Bien"
// @Success      200   {object}  dto.GoodResponse
// @Router       /api/goods/{id} [put]
func (h *CatalogHandler) UpdateGood(c *fiber.Ctx) error {
	var in dto.GoodRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateGood(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteGood godoc
// @Summary      Eliminar bien
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "ID del bien"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/goods/{id} [delete]
func (h *CatalogHandler) DeleteGood(c *fiber.Ctx) error {
	if err := h.uc.DeleteGood(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
