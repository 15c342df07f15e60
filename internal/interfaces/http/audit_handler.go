package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
)

// AuditHandler maneja las auditorías de inventario (protegido).
type AuditHandler struct {
	uc *audit.UseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func (h *AuditHandler) GenerateNumber(c *fiber.Ctx) error {
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
// @Summary      Crear auditoría en DRAFT
// @Tags         audits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAuditRequest  true  "ubicación, tipo y filtros"
// @Success      201   {object}  dto.AuditResponse
// @Router       /api/audits [post]
func (h *AuditHandler) Create(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateAuditRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), sellerID, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AuditHandler) Get(c *fiber.Ctx) error {
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

func (h *AuditHandler) List(c *fiber.Ctx) error {
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

// Start toma el snapshot de la ubicación y pasa a IN_PROGRESS.
func (h *AuditHandler) Start(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Start(c.Context(), sellerID, c.Params("id"), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) CountItem(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.CountItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CountItem(c.Context(), sellerID, c.Params("id"), index, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) BulkCount(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.BulkCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.BulkCountItems(c.Context(), sellerID, c.Params("id"), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) SkipItem(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := indexParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SkipItemRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.SkipItem(c.Context(), sellerID, c.Params("id"), index, actor, in.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) Recompute(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.RecomputeAggregates(c.Context(), sellerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar auditoría
// @Description  Con apply_corrections=true encadena la aplicación de ajustes.
// @Tags         audits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompleteAuditRequest  false  "aplicar ajustes"
// @Success      200   {object}  dto.ApplyCorrectionsResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/audits/{id}/complete [post]
func (h *AuditHandler) Complete(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CompleteAuditRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Complete(c.Context(), sellerID, c.Params("id"), actor, in.ApplyCorrections)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ApplyCorrections godoc
// @Summary      Aplicar ajustes de una auditoría completada
// @Tags         audits
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ApplyCorrectionsResponse
// @Router       /api/audits/{id}/apply [post]
func (h *AuditHandler) ApplyCorrections(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ApplyCorrections(c.Context(), sellerID, c.Params("id"), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) Cancel(c *fiber.Ctx) error {
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
