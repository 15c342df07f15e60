package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de stock, reservas y libro mayor (protegido).
type InventoryHandler struct {
	stock  *inventory.StockUseCase
	ledger *inventory.Ledger
	expiry *inventory.ExpiryReport
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, ledger *inventory.Ledger, expiry *inventory.ExpiryReport) *InventoryHandler {
	return &InventoryHandler{stock: stock, ledger: ledger, expiry: expiry}
}

// StockInLocation godoc
// @Summary      Stock de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        kind  path   string  true   "SHOP | WAREHOUSE"
// @Param        id    path   string  true   "ID de la tienda o bodega"
// @Param        all   query  bool    false  "incluir registros en cero"
// @Success      200   {array}   dto.StockLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/locations/{kind}/{id} [get]
func (h *InventoryHandler) StockInLocation(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	loc, err := locationParam(c, "kind", "id")
	if err != nil {
		return respondError(c, err)
	}
	lines, err := h.stock.InLocation(c.Context(), sellerID, loc, !c.QueryBool("all"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}

// BatchInLocation godoc
// @Summary      Stock de un lote en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BatchLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/batches/{id}/locations/{kind}/{locationId} [get]
func (h *InventoryHandler) BatchInLocation(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	loc, err := locationParam(c, "kind", "locationId")
	if err != nil {
		return respondError(c, err)
	}
	bl, err := h.stock.BatchInLocation(c.Context(), sellerID, c.Params("id"), loc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bl)
}

// ExpiringStock godoc
// @Summary      Lotes por vencer en una ubicación
// @Description  Vencidos primero, luego por fecha efectiva de vencimiento.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "ventana en días (por defecto 7)"
// @Success      200  {array}  dto.ExpiringStockDTO
// @Router       /api/stock/locations/{kind}/{id}/expiring [get]
func (h *InventoryHandler) ExpiringStock(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	loc, err := locationParam(c, "kind", "id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.expiry.Generate(c.Context(), sellerID, loc, c.QueryInt("days", 7))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// RecordReservation godoc
// @Summary      Registrar efecto de una reserva
// @Description  El componente de reservas informa RESERVATION, RESERVATION_RELEASE o RESERVATION_CONFIRM.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "efecto de reserva"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations [post]
func (h *InventoryHandler) RecordReservation(c *fiber.Ctx) error {
	sellerID, actor, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.stock.RecordReservation(c.Context(), sellerID, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}

// ListMovements godoc
// @Summary      Consultar el libro mayor
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type           query  string  false  "tipos separados por coma"
// @Param        batch_id       query  string  false  "lote"
// @Param        product_id     query  string  false  "producto"
// @Param        location_kind  query  string  false  "SHOP | WAREHOUSE"
// @Param        location_id    query  string  false  "ubicación"
// @Param        document_id    query  string  false  "documento de origen"
// @Param        from           query  string  false  "desde (RFC3339 o YYYY-MM-DD)"
// @Param        to             query  string  false  "hasta, exclusivo"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageQuery(c)
	filter := entity.MovementFilter{
		SellerID:   sellerID,
		BatchID:    c.Query("batch_id"),
		ProductID:  c.Query("product_id"),
		DocumentID: c.Query("document_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := c.Query("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			filter.Types = append(filter.Types, strings.ToUpper(strings.TrimSpace(t)))
		}
	}
	if c.Query("location_kind") != "" || c.Query("location_id") != "" {
		loc, err := dto.LocationDTO{Type: c.Query("location_kind"), ID: c.Query("location_id")}.ToLocation()
		if err != nil {
			return respondError(c, invalid(err))
		}
		filter.Location = &loc
	}
	var err error
	if filter.From, err = timeQuery(c, "from"); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		return respondError(c, err)
	}
	list, err := h.ledger.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.FromMovements(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// MovementSummary godoc
// @Summary      Resumen de movimientos
// @Description  Ingresos, egresos y conteo por tipo en [from, to). Por defecto los últimos 30 días.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MovementSummaryResponse
// @Router       /api/movements/summary [get]
func (h *InventoryHandler) MovementSummary(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	from, err := timeQuery(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		f := to.AddDate(0, 0, -30)
		from = &f
	}
	sum, err := h.ledger.GetSummary(c.Context(), sellerID, *from, *to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSummary(sum))
}

// MovementsByBatch historial de un lote, más recientes primero.
func (h *InventoryHandler) MovementsByBatch(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageQuery(c)
	list, err := h.ledger.ListByBatch(c.Context(), sellerID, c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementListResponse{Items: dto.FromMovements(list), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// MovementsByDocument movimientos generados por un documento. El tipo de la ruta debe coincidir.
func (h *InventoryHandler) MovementsByDocument(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	docType := strings.ToUpper(c.Params("type"))
	list, err := h.ledger.ListByDocument(c.Context(), sellerID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*entity.Movement, 0, len(list))
	for _, m := range list {
		if m.Document.Type == docType {
			out = append(out, m)
		}
	}
	return c.JSON(fiber.Map{"items": dto.FromMovements(out)})
}

// GetMovement un movimiento por ID.
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	sellerID, _, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	m, err := h.ledger.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := inventory.RequireSeller(m.SellerID, sellerID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}
