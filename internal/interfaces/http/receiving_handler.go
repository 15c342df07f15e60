package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/receiving"
)

// ReceivingHandler maneja el ciclo de vida de las recepciones (protegido).
type ReceivingHandler struct {
	uc *receiving.UseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.UseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// GenerateNumber godoc
// @Summary      Pre-asignar número de recepción
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.DocumentNumberResponse
// @Router       /api/receivings/numbers [post]
func (h *ReceivingHandler) GenerateNumber(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	number, err := h.uc.GenerateDocumentNumber(c.Context(), sellerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentNumberResponse{Number: number})
}

// Create godoc
// @Summary      Crear recepción en DRAFT
// @Tags         receivings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceivingRequest  true  "destino, tipo y líneas"
// @Success      201   {object}  dto.ReceivingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receivings [post]
func (h *ReceivingHandler) Create(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateReceivingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), sellerID, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ReceivingHandler) Get(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.Context(), sellerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReceivingHandler) List(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.Context(), sellerID, c.Query("status"), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReceivingHandler) AddItem(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReceivingItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddItem(c.Context(), sellerID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReceivingHandler) UpdateItem(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReceivingItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateItem(c.Context(), sellerID, c.Params("id"), index, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReceivingHandler) RemoveItem(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.RemoveItem(c.Context(), sellerID, c.Params("id"), index)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateActualQuantity registra la cantidad contada al descargar, antes de confirmar.
func (h *ReceivingHandler) UpdateActualQuantity(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateActualQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateActualQuantity(c.Context(), sellerID, c.Params("id"), index, in.ActualQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar recepción
// @Description  Crea un lote por línea y acredita el stock en el destino. Reanudable si falla a mitad.
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReceivingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receivings/{id}/confirm [post]
func (h *ReceivingHandler) Confirm(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Confirm(c.Context(), sellerID, c.Params("id"), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReceivingHandler) Cancel(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Cancel(c.Context(), sellerID, c.Params("id"), actor, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
