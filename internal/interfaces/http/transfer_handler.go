package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/transfer"
)

// TransferHandler maneja los traslados entre ubicaciones (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

func (h *TransferHandler) GenerateNumber(c *fiber.Ctx) error {
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
// @Summary      Crear traslado en DRAFT
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), sellerID, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *TransferHandler) Get(c *fiber.Ctx) error {
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

func (h *TransferHandler) List(c *fiber.Ctx) error {
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

func (h *TransferHandler) AddItem(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddItem(c.Context(), sellerID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *TransferHandler) UpdateItem(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.TransferItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateItem(c.Context(), sellerID, c.Params("id"), index, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *TransferHandler) RemoveItem(c *fiber.Ctx) error {
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

// Send godoc
// @Summary      Enviar traslado
// @Description  Descuenta el origen de todas las líneas en una sola transacción.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferQuantitiesRequest  false  "cantidades por línea"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	in, err := quantities(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.uc.Send(c.Context(), sellerID, c.Params("id"), actor, in.Overrides)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferQuantitiesRequest  false  "cantidades recibidas por línea"
// @Success      200   {object}  dto.TransferResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	in, err := quantities(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.uc.Receive(c.Context(), sellerID, c.Params("id"), actor, in.Overrides)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
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

func quantities(c *fiber.Ctx) (dto.TransferQuantitiesRequest, error) {
	var in dto.TransferQuantitiesRequest
	if len(c.Body()) == 0 {
		return in, nil
	}
	err := c.BodyParser(&in)
	return in, err
}
