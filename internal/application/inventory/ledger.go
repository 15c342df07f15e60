package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// DefaultPageSize límite de consultas del libro mayor cuando el caller no indica uno.
const DefaultPageSize = 100

// MovementEvent cuerpo JSON publicado por el outbox para cada movimiento.
type MovementEvent struct {
	ID              string           `json:"id"`
	SellerID        string           `json:"seller_id"`
	Type            string           `json:"type"`
	BatchID         string           `json:"batch_id"`
	ProductID       string           `json:"product_id"`
	BatchLocationID string           `json:"batch_location_id"`
	LocationType    string           `json:"location_type"`
	LocationID      string           `json:"location_id"`
	QuantityChange  decimal.Decimal  `json:"quantity_change"`
	BalanceBefore   decimal.Decimal  `json:"balance_before"`
	BalanceAfter    decimal.Decimal  `json:"balance_after"`
	ReservedBefore  *decimal.Decimal `json:"reserved_before,omitempty"`
	ReservedAfter   *decimal.Decimal `json:"reserved_after,omitempty"`
	DocumentType    string           `json:"document_type"`
	DocumentID      string           `json:"document_id"`
	DocumentNumber  string           `json:"document_number"`
	ActorType       string           `json:"actor_type"`
	ActorID         string           `json:"actor_id"`
	CreatedAt       time.Time        `json:"created_at"`
}

// EventType nombre de la clave de ruteo del evento de un movimiento.
func EventType(movementType string) string {
	return "movement." + movementType
}

// Ledger libro mayor de movimientos: solo inserta. Cada escritura va en la transacción del cambio de cantidad.
type Ledger struct {
	movements repository.MovementRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger construye el libro mayor. movements se usa para consultas fuera de transacción.
func NewLedger(movements repository.MovementRepository, log zerolog.Logger) *Ledger {
	return &Ledger{movements: movements, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// MovementFromChange arma el movimiento a partir de un QuantityChange ya aplicado.
func MovementFromChange(movementType string, ch *QuantityChange, actor entity.Actor) *entity.Movement {
	bl := ch.BatchLocation
	m := &entity.Movement{
		SellerID:        bl.SellerID,
		Type:            movementType,
		BatchID:         bl.BatchID,
		ProductID:       bl.ProductID,
		BatchLocationID: bl.ID,
		Location:        bl.Location,
		QuantityChange:  ch.Delta,
		BalanceBefore:   ch.Before,
		BalanceAfter:    ch.After,
		Document:        ch.Document,
		Actor:           actor,
		Comment:         ch.Comment,
	}
	if !ch.ReservedBefore.Equal(ch.ReservedAfter) {
		rb, ra := ch.ReservedBefore, ch.ReservedAfter
		m.ReservedBefore, m.ReservedAfter = &rb, &ra
	}
	return m
}

// Record valida y persiste un movimiento, y encola su evento en el outbox de la misma transacción.
func (l *Ledger) Record(ctx context.Context, repos Repos, m *entity.Movement) (*entity.Movement, error) {
	if err := l.prepare(m); err != nil {
		return nil, err
	}
	if err := repos.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := l.enqueue(ctx, repos, m); err != nil {
		return nil, err
	}
	l.log.Debug().Str("movement_id", m.ID).Str("type", m.Type).Str("document", m.Document.Number).Msg("movimiento registrado")
	return m, nil
}

// BulkRecord persiste varios movimientos en una sola inserción.
func (l *Ledger) BulkRecord(ctx context.Context, repos Repos, movements []*entity.Movement) ([]*entity.Movement, error) {
	if len(movements) == 0 {
		return movements, nil
	}
	for _, m := range movements {
		if err := l.prepare(m); err != nil {
			return nil, err
		}
	}
	if err := repos.Movements.CreateBulk(ctx, movements); err != nil {
		return nil, err
	}
	for _, m := range movements {
		if err := l.enqueue(ctx, repos, m); err != nil {
			return nil, err
		}
	}
	return movements, nil
}

// RecordReceiving movimiento de entrada (RECEIVING, RETURN_TO_STOCK o INITIAL). El cambio debe ser positivo.
func (l *Ledger) RecordReceiving(ctx context.Context, repos Repos, movementType string, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	if !entity.IsReceiptMovement(movementType) {
		return nil, fmt.Errorf("tipo %s no es de recepción: %w", movementType, domain.ErrInvalidInput)
	}
	if !ch.Delta.IsPositive() {
		return nil, fmt.Errorf("recepción con cantidad %s: %w", ch.Delta, domain.ErrInvalidInput)
	}
	return l.Record(ctx, repos, MovementFromChange(movementType, ch, actor))
}

// RecordTransferOut salida de la ubicación origen al enviar un traslado.
func (l *Ledger) RecordTransferOut(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	if !ch.Delta.IsNegative() {
		return nil, fmt.Errorf("salida por traslado con cantidad %s: %w", ch.Delta, domain.ErrInvalidInput)
	}
	return l.Record(ctx, repos, MovementFromChange(entity.MovementTypeTransferOut, ch, actor))
}

// RecordTransferIn entrada en la ubicación destino (o regreso al origen si se cancela un envío).
func (l *Ledger) RecordTransferIn(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	if !ch.Delta.IsPositive() {
		return nil, fmt.Errorf("entrada por traslado con cantidad %s: %w", ch.Delta, domain.ErrInvalidInput)
	}
	return l.Record(ctx, repos, MovementFromChange(entity.MovementTypeTransferIn, ch, actor))
}

// RecordWriteOff baja de inventario (vencido, dañado).
func (l *Ledger) RecordWriteOff(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	if !ch.Delta.IsNegative() {
		return nil, fmt.Errorf("baja con cantidad %s: %w", ch.Delta, domain.ErrInvalidInput)
	}
	return l.Record(ctx, repos, MovementFromChange(entity.MovementTypeWriteOff, ch, actor))
}

// RecordSale venta en línea o de punto de venta fuera de línea.
func (l *Ledger) RecordSale(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor, offline bool) (*entity.Movement, error) {
	if !ch.Delta.IsNegative() {
		return nil, fmt.Errorf("venta con cantidad %s: %w", ch.Delta, domain.ErrInvalidInput)
	}
	t := entity.MovementTypeSale
	if offline {
		t = entity.MovementTypeOfflineSale
	}
	return l.Record(ctx, repos, MovementFromChange(t, ch, actor))
}

// RecordAdjustment ajuste por auditoría; el tipo (PLUS/MINUS) se deriva del signo.
func (l *Ledger) RecordAdjustment(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	switch ch.Delta.Sign() {
	case 1:
		return l.Record(ctx, repos, MovementFromChange(entity.MovementTypeAdjustmentPlus, ch, actor))
	case -1:
		return l.Record(ctx, repos, MovementFromChange(entity.MovementTypeAdjustmentMinus, ch, actor))
	}
	return nil, fmt.Errorf("ajuste en cero: %w", domain.ErrInvalidInput)
}

// RecordReservation reserva pura: cantidad sin cambio, reservado antes/después informado.
func (l *Ledger) RecordReservation(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	return l.recordReservationKind(ctx, repos, entity.MovementTypeReservation, ch, actor)
}

// RecordReservationRelease liberación de reserva.
func (l *Ledger) RecordReservationRelease(ctx context.Context, repos Repos, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	return l.recordReservationKind(ctx, repos, entity.MovementTypeReservationRelease, ch, actor)
}

func (l *Ledger) recordReservationKind(ctx context.Context, repos Repos, t string, ch *QuantityChange, actor entity.Actor) (*entity.Movement, error) {
	if !ch.Delta.IsZero() {
		return nil, fmt.Errorf("%s con cambio de cantidad %s: %w", t, ch.Delta, domain.ErrInvalidInput)
	}
	m := MovementFromChange(t, ch, actor)
	rb, ra := ch.ReservedBefore, ch.ReservedAfter
	m.ReservedBefore, m.ReservedAfter = &rb, &ra
	return l.Record(ctx, repos, m)
}

func (l *Ledger) prepare(m *entity.Movement) error {
	if !entity.IsMovementType(m.Type) {
		return fmt.Errorf("tipo de movimiento %q: %w", m.Type, domain.ErrInvalidInput)
	}
	if m.SellerID == "" || m.BatchLocationID == "" || m.BatchID == "" {
		return fmt.Errorf("movimiento sin vendedor, lote o ubicación: %w", domain.ErrInvalidInput)
	}
	if !m.Balanced() {
		return fmt.Errorf("movimiento descuadrado %s + %s != %s: %w",
			m.BalanceBefore, m.QuantityChange, m.BalanceAfter, domain.ErrInvalidInput)
	}
	if !m.Actor.Valid() {
		return fmt.Errorf("movimiento sin actor: %w", domain.ErrInvalidInput)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	return nil
}

func (l *Ledger) enqueue(ctx context.Context, repos Repos, m *entity.Movement) error {
	if repos.Outbox == nil {
		return nil
	}
	payload, err := json.Marshal(toEvent(m))
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", m.ID, err)
	}
	return repos.Outbox.Enqueue(ctx, &entity.OutboxEvent{
		ID:          uuid.New().String(),
		AggregateID: m.ID,
		SellerID:    m.SellerID,
		EventType:   EventType(m.Type),
		Payload:     payload,
		CreatedAt:   m.CreatedAt,
	})
}

func toEvent(m *entity.Movement) MovementEvent {
	return MovementEvent{
		ID:              m.ID,
		SellerID:        m.SellerID,
		Type:            m.Type,
		BatchID:         m.BatchID,
		ProductID:       m.ProductID,
		BatchLocationID: m.BatchLocationID,
		LocationType:    string(m.Location.Kind),
		LocationID:      m.Location.ID,
		QuantityChange:  m.QuantityChange,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		ReservedBefore:  m.ReservedBefore,
		ReservedAfter:   m.ReservedAfter,
		DocumentType:    m.Document.Type,
		DocumentID:      m.Document.ID,
		DocumentNumber:  m.Document.Number,
		ActorType:       m.Actor.Type,
		ActorID:         m.Actor.ID,
		CreatedAt:       m.CreatedAt,
	}
}

// ─── Consultas ──────────────────────────────────────────────────────────────

// Get obtiene un movimiento por ID.
func (l *Ledger) Get(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := l.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// ListByBatch movimientos de un lote en todas sus ubicaciones.
func (l *Ledger) ListByBatch(ctx context.Context, sellerID, batchID string, limit, offset int) ([]*entity.Movement, error) {
	return l.List(ctx, entity.MovementFilter{SellerID: sellerID, BatchID: batchID, Limit: limit, Offset: offset})
}

// ListByProduct movimientos de todos los lotes de un producto.
func (l *Ledger) ListByProduct(ctx context.Context, sellerID, productID string, limit, offset int) ([]*entity.Movement, error) {
	return l.List(ctx, entity.MovementFilter{SellerID: sellerID, ProductID: productID, Limit: limit, Offset: offset})
}

// ListByLocation movimientos de una tienda o bodega.
func (l *Ledger) ListByLocation(ctx context.Context, sellerID string, loc entity.Location, limit, offset int) ([]*entity.Movement, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return l.List(ctx, entity.MovementFilter{SellerID: sellerID, Location: &loc, Limit: limit, Offset: offset})
}

// ListByDocument movimientos generados por un documento (recepción, traslado, auditoría).
func (l *Ledger) ListByDocument(ctx context.Context, sellerID, documentID string) ([]*entity.Movement, error) {
	return l.List(ctx, entity.MovementFilter{SellerID: sellerID, DocumentID: documentID})
}

// List consulta con filtros libres; el vendedor es obligatorio.
func (l *Ledger) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	if filter.SellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	for _, t := range filter.Types {
		if !entity.IsMovementType(t) {
			return nil, fmt.Errorf("tipo de movimiento %q: %w", t, domain.ErrInvalidInput)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return l.movements.List(ctx, filter)
}

// GetSummary totales de ingreso/egreso y conteo por tipo en el rango [from, to).
func (l *Ledger) GetSummary(ctx context.Context, sellerID string, from, to time.Time) (*entity.MovementSummary, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("rango de fechas vacío: %w", domain.ErrInvalidInput)
	}
	return l.movements.Summary(ctx, sellerID, from, to)
}
