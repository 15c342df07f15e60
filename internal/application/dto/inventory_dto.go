package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// LocationDTO ubicación en la API: type = SHOP | WAREHOUSE.
type LocationDTO struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ToLocation convierte y valida la ubicación recibida.
func (l LocationDTO) ToLocation() (entity.Location, error) {
	return entity.ParseLocation(l.Type, l.ID)
}

// FromLocation arma el DTO desde la entidad.
func FromLocation(l entity.Location) LocationDTO {
	return LocationDTO{Type: string(l.Kind), ID: l.ID}
}

// ActorDTO actor tal como se guarda en movimientos y sellos.
type ActorDTO struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// FromActor nil-safe.
func FromActor(a *entity.Actor) *ActorDTO {
	if a == nil {
		return nil
	}
	return &ActorDTO{Type: a.Type, ID: a.ID, Name: a.Name}
}

// DocumentRefDTO referencia de documento de un movimiento.
type DocumentRefDTO struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Number string `json:"number,omitempty"`
}

// DocumentNumberResponse número pre-asignado (POST /.../numbers).
type DocumentNumberResponse struct {
	Number string `json:"number"`
}

// CancelRequest body opcional de las cancelaciones.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// StockLineResponse fila de GET /api/stock/locations/:kind/:id.
type StockLineResponse struct {
	BatchLocationID     string          `json:"batch_location_id"`
	BatchID             string          `json:"batch_id"`
	BatchNumber         string          `json:"batch_number"`
	ProductID           string          `json:"product_id"`
	Location            LocationDTO     `json:"location"`
	Quantity            decimal.Decimal `json:"quantity"`
	ReservedQuantity    decimal.Decimal `json:"reserved_quantity"`
	Available           decimal.Decimal `json:"available"`
	Freshness           float64         `json:"freshness"`
	Coefficient         float64         `json:"degradation_coefficient"`
	ExpirationDate      time.Time       `json:"expiration_date"`
	EffectiveExpiration time.Time       `json:"effective_expiration"`
}

// FromStockLine arma la fila de stock.
func FromStockLine(l entity.StockLine) StockLineResponse {
	return StockLineResponse{
		BatchLocationID:     l.ID,
		BatchID:             l.BatchID,
		BatchNumber:         l.BatchNumber,
		ProductID:           l.ProductID,
		Location:            FromLocation(l.Location),
		Quantity:            l.Quantity,
		ReservedQuantity:    l.ReservedQuantity,
		Available:           l.Available(),
		Freshness:           l.Freshness,
		Coefficient:         l.DegradationCoefficient,
		ExpirationDate:      l.ExpirationDate,
		EffectiveExpiration: l.EffectiveExpiration,
	}
}

// BatchLocationResponse stock de un lote en una ubicación.
type BatchLocationResponse struct {
	ID                  string          `json:"id"`
	BatchID             string          `json:"batch_id"`
	ProductID           string          `json:"product_id"`
	Location            LocationDTO     `json:"location"`
	Quantity            decimal.Decimal `json:"quantity"`
	ReservedQuantity    decimal.Decimal `json:"reserved_quantity"`
	Freshness           float64         `json:"freshness"`
	Coefficient         float64         `json:"degradation_coefficient"`
	EffectiveExpiration time.Time       `json:"effective_expiration"`
	ArrivedAt           time.Time       `json:"arrived_at"`
	Version             int64           `json:"version"`
}

// FromBatchLocation nil-safe.
func FromBatchLocation(bl *entity.BatchLocation) *BatchLocationResponse {
	if bl == nil {
		return nil
	}
	return &BatchLocationResponse{
		ID:                  bl.ID,
		BatchID:             bl.BatchID,
		ProductID:           bl.ProductID,
		Location:            FromLocation(bl.Location),
		Quantity:            bl.Quantity,
		ReservedQuantity:    bl.ReservedQuantity,
		Freshness:           bl.Freshness,
		Coefficient:         bl.DegradationCoefficient,
		EffectiveExpiration: bl.EffectiveExpiration,
		ArrivedAt:           bl.ArrivedAt,
		Version:             bl.Version,
	}
}

// ReservationRequest body para POST /api/stock/reservations: el componente de reservas informa el efecto.
type ReservationRequest struct {
	BatchLocationID string          `json:"batch_location_id"`
	Type            string          `json:"type"` // RESERVATION | RESERVATION_RELEASE | RESERVATION_CONFIRM
	Quantity        decimal.Decimal `json:"quantity"`
	OrderID         string          `json:"order_id"`
	OrderNumber     string          `json:"order_number,omitempty"`
	Comment         string          `json:"comment,omitempty"`
}

// MovementResponse entrada del libro mayor.
type MovementResponse struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	BatchID         string           `json:"batch_id"`
	ProductID       string           `json:"product_id"`
	BatchLocationID string           `json:"batch_location_id"`
	Location        LocationDTO      `json:"location"`
	QuantityChange  decimal.Decimal  `json:"quantity_change"`
	BalanceBefore   decimal.Decimal  `json:"balance_before"`
	BalanceAfter    decimal.Decimal  `json:"balance_after"`
	ReservedBefore  *decimal.Decimal `json:"reserved_before,omitempty"`
	ReservedAfter   *decimal.Decimal `json:"reserved_after,omitempty"`
	Document        DocumentRefDTO   `json:"document"`
	Actor           ActorDTO         `json:"actor"`
	Comment         string           `json:"comment,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// FromMovement arma la respuesta de un movimiento.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		Type:            m.Type,
		BatchID:         m.BatchID,
		ProductID:       m.ProductID,
		BatchLocationID: m.BatchLocationID,
		Location:        FromLocation(m.Location),
		QuantityChange:  m.QuantityChange,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		ReservedBefore:  m.ReservedBefore,
		ReservedAfter:   m.ReservedAfter,
		Document:        DocumentRefDTO{Type: m.Document.Type, ID: m.Document.ID, Number: m.Document.Number},
		Actor:           ActorDTO{Type: m.Actor.Type, ID: m.Actor.ID, Name: m.Actor.Name},
		Comment:         m.Comment,
		CreatedAt:       m.CreatedAt,
	}
}

// FromMovements convierte una lista.
func FromMovements(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// MovementListResponse listado paginado del libro mayor.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementSummaryResponse GET /api/movements/summary.
type MovementSummaryResponse struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	CountByType  map[string]int  `json:"count_by_type"`
	Total        int             `json:"total"`
}

// FromSummary arma la respuesta del resumen.
func FromSummary(s *entity.MovementSummary) MovementSummaryResponse {
	return MovementSummaryResponse{
		From:         s.From,
		To:           s.To,
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		CountByType:  s.CountByType,
		Total:        s.Total,
	}
}

// ExpiringStockDTO lote próximo a vencer en una ubicación, priorizado para rotación o baja.
type ExpiringStockDTO struct {
	BatchLocationID     string          `json:"batch_location_id"`
	BatchID             string          `json:"batch_id"`
	BatchNumber         string          `json:"batch_number"`
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	Available           decimal.Decimal `json:"available"`
	Freshness           float64         `json:"freshness"`
	EffectiveExpiration time.Time       `json:"effective_expiration"`
	DaysToExpiry        int             `json:"days_to_expiry"` // negativo si ya venció
	Expired             bool            `json:"expired"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
