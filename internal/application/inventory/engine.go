package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// QuantityChange resultado de ChangeQuantity: saldos antes/después que el caller usa para el movimiento.
type QuantityChange struct {
	BatchLocation  entity.BatchLocation // estado ya persistido
	Delta          decimal.Decimal
	Before         decimal.Decimal
	After          decimal.Decimal
	ReservedBefore decimal.Decimal
	ReservedAfter  decimal.Decimal
	Reason         string
	Document       entity.DocumentRef
	Comment        string
}

// ChangeRequest entrada de Apply: cambio de cantidad más el movimiento que lo acompaña.
type ChangeRequest struct {
	BatchLocationID string
	Delta           decimal.Decimal
	Type            string // tipo de movimiento
	Document        entity.DocumentRef
	Actor           entity.Actor
	Comment         string
}

// QuantityEngine único punto de mutación de BatchLocation.Quantity.
type QuantityEngine struct {
	locations repository.BatchLocationRepository
	ledger    *Ledger
	log       zerolog.Logger
}

// NewQuantityEngine construye el motor. locations se usa para lecturas fuera de transacción.
func NewQuantityEngine(locations repository.BatchLocationRepository, ledger *Ledger, log zerolog.Logger) *QuantityEngine {
	return &QuantityEngine{locations: locations, ledger: ledger, log: log}
}

// Ledger devuelve el libro mayor asociado.
func (e *QuantityEngine) Ledger() *Ledger { return e.ledger }

// ChangeQuantity carga el BatchLocation bloqueado, valida que el saldo no quede negativo ni por debajo
// del reservado y escribe con compare-and-swap sobre la versión. También ajusta la cantidad actual del lote.
// No escribe el movimiento: el caller debe registrarlo en la misma transacción (ver Apply).
func (e *QuantityEngine) ChangeQuantity(
	ctx context.Context,
	repos Repos,
	batchLocationID string,
	delta decimal.Decimal,
	reason string,
	ref entity.DocumentRef,
	comment string,
) (*QuantityChange, error) {
	bl, err := repos.Locations.GetForUpdate(ctx, batchLocationID)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		return nil, fmt.Errorf("batch location %s: %w", batchLocationID, domain.ErrNotFound)
	}

	newQty := bl.Quantity.Add(delta)
	if newQty.IsNegative() {
		return nil, fmt.Errorf("batch location %s: saldo %s, cambio %s: %w",
			batchLocationID, bl.Quantity, delta, domain.ErrInsufficientStock)
	}
	if newQty.LessThan(bl.ReservedQuantity) {
		return nil, fmt.Errorf("batch location %s: reservado %s supera el nuevo saldo %s: %w",
			batchLocationID, bl.ReservedQuantity, newQty, domain.ErrInsufficientStock)
	}

	if err := repos.Locations.CompareAndSwap(ctx, bl.ID, bl.Version, newQty, bl.ReservedQuantity); err != nil {
		return nil, fmt.Errorf("batch location %s: %w", batchLocationID, err)
	}
	if err := e.adjustBatch(ctx, repos, bl.BatchID, delta); err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("batch_location_id", bl.ID).
		Str("reason", reason).
		Str("delta", delta.String()).
		Str("after", newQty.String()).
		Msg("cantidad actualizada")

	before := bl.Quantity
	bl.Quantity = newQty
	bl.Version++
	return &QuantityChange{
		BatchLocation:  *bl,
		Delta:          delta,
		Before:         before,
		After:          newQty,
		ReservedBefore: bl.ReservedQuantity,
		ReservedAfter:  bl.ReservedQuantity,
		Reason:         reason,
		Document:       ref,
		Comment:        comment,
	}, nil
}

// Apply ejecuta ChangeQuantity y registra el movimiento correspondiente con el constructor tipado del
// libro mayor. Debe llamarse dentro de TxRunner.Run para que ambos se confirmen juntos.
func (e *QuantityEngine) Apply(ctx context.Context, repos Repos, req ChangeRequest) (*QuantityChange, *entity.Movement, error) {
	if entity.IsReservationMovement(req.Type) {
		return nil, nil, fmt.Errorf("tipo %s no cambia cantidad: %w", req.Type, domain.ErrInvalidInput)
	}
	ch, err := e.ChangeQuantity(ctx, repos, req.BatchLocationID, req.Delta, req.Type, req.Document, req.Comment)
	if err != nil {
		return nil, nil, err
	}

	var mov *entity.Movement
	switch req.Type {
	case entity.MovementTypeReceiving, entity.MovementTypeReturnToStock, entity.MovementTypeInitial:
		mov, err = e.ledger.RecordReceiving(ctx, repos, req.Type, ch, req.Actor)
	case entity.MovementTypeTransferOut:
		mov, err = e.ledger.RecordTransferOut(ctx, repos, ch, req.Actor)
	case entity.MovementTypeTransferIn:
		mov, err = e.ledger.RecordTransferIn(ctx, repos, ch, req.Actor)
	case entity.MovementTypeWriteOff:
		mov, err = e.ledger.RecordWriteOff(ctx, repos, ch, req.Actor)
	case entity.MovementTypeSale, entity.MovementTypeOfflineSale:
		mov, err = e.ledger.RecordSale(ctx, repos, ch, req.Actor, req.Type == entity.MovementTypeOfflineSale)
	case entity.MovementTypeAdjustmentPlus, entity.MovementTypeAdjustmentMinus:
		mov, err = e.ledger.RecordAdjustment(ctx, repos, ch, req.Actor)
	default:
		mov, err = e.ledger.Record(ctx, repos, MovementFromChange(req.Type, ch, req.Actor))
	}
	if err != nil {
		return nil, nil, err
	}
	return ch, mov, nil
}

// RecordReservation registra el efecto de una reserva externa: RESERVATION suma al reservado,
// RESERVATION_RELEASE lo libera y RESERVATION_CONFIRM lo consume junto con la cantidad.
// amount siempre es positivo. Debe llamarse dentro de TxRunner.Run.
func (e *QuantityEngine) RecordReservation(
	ctx context.Context,
	repos Repos,
	batchLocationID string,
	kind string,
	amount decimal.Decimal,
	ref entity.DocumentRef,
	actor entity.Actor,
	comment string,
) (*entity.Movement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("reserva con cantidad %s: %w", amount, domain.ErrInvalidInput)
	}
	bl, err := repos.Locations.GetForUpdate(ctx, batchLocationID)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		return nil, fmt.Errorf("batch location %s: %w", batchLocationID, domain.ErrNotFound)
	}

	qty, reserved, delta := bl.Quantity, bl.ReservedQuantity, decimal.Zero
	switch kind {
	case entity.MovementTypeReservation:
		reserved = reserved.Add(amount)
		if reserved.GreaterThan(qty) {
			return nil, fmt.Errorf("reservar %s con disponible %s: %w", amount, bl.Available(), domain.ErrInsufficientStock)
		}
	case entity.MovementTypeReservationRelease, entity.MovementTypeReservationConfirm:
		if amount.GreaterThan(reserved) {
			return nil, fmt.Errorf("liberar %s con reservado %s: %w", amount, reserved, domain.ErrInvalidInput)
		}
		reserved = reserved.Sub(amount)
		if kind == entity.MovementTypeReservationConfirm {
			delta = amount.Neg()
			qty = qty.Add(delta)
		}
	default:
		return nil, fmt.Errorf("tipo de reserva %q: %w", kind, domain.ErrInvalidInput)
	}

	if err := repos.Locations.CompareAndSwap(ctx, bl.ID, bl.Version, qty, reserved); err != nil {
		return nil, fmt.Errorf("batch location %s: %w", batchLocationID, err)
	}
	if !delta.IsZero() {
		if err := e.adjustBatch(ctx, repos, bl.BatchID, delta); err != nil {
			return nil, err
		}
	}

	ch := &QuantityChange{
		BatchLocation:  *bl,
		Delta:          delta,
		Before:         bl.Quantity,
		After:          qty,
		ReservedBefore: bl.ReservedQuantity,
		ReservedAfter:  reserved,
		Reason:         kind,
		Document:       ref,
		Comment:        comment,
	}
	ch.BatchLocation.Quantity = qty
	ch.BatchLocation.ReservedQuantity = reserved
	ch.BatchLocation.Version++

	switch kind {
	case entity.MovementTypeReservation:
		return e.ledger.RecordReservation(ctx, repos, ch, actor)
	case entity.MovementTypeReservationRelease:
		return e.ledger.RecordReservationRelease(ctx, repos, ch, actor)
	}
	return e.ledger.Record(ctx, repos, MovementFromChange(kind, ch, actor))
}

// adjustBatch mantiene Batch.CurrentQuantity = Σ BatchLocation.Quantity y cierra el lote en cero.
func (e *QuantityEngine) adjustBatch(ctx context.Context, repos Repos, batchID string, delta decimal.Decimal) error {
	batch, err := repos.Batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("lote %s: %w", batchID, domain.ErrNotFound)
	}
	batch.CurrentQuantity = batch.CurrentQuantity.Add(delta)
	if batch.CurrentQuantity.IsNegative() {
		return fmt.Errorf("lote %s quedaría en %s: %w", batchID, batch.CurrentQuantity, domain.ErrInsufficientStock)
	}
	if batch.CurrentQuantity.IsZero() {
		batch.Status = entity.BatchStatusClosed
	} else {
		batch.Status = entity.BatchStatusActive
	}
	batch.UpdatedAt = time.Now().UTC()
	return repos.Batches.Update(ctx, batch)
}

// GetBatchInLocation lectura del stock de un lote en una ubicación. nil si no hay registro.
func (e *QuantityEngine) GetBatchInLocation(ctx context.Context, batchID string, loc entity.Location) (*entity.BatchLocation, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return e.locations.GetByKey(ctx, batchID, loc)
}

// GetAllStockInLocation lista el stock de una ubicación. withQuantityOnly excluye filas en cero
// (vista); la auditoría usa false para poder corregir también registros fantasma.
func (e *QuantityEngine) GetAllStockInLocation(ctx context.Context, sellerID string, loc entity.Location, withQuantityOnly bool) ([]entity.StockLine, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return e.locations.ListByLocation(ctx, sellerID, loc, withQuantityOnly)
}

// IsRetryable indica si el error proviene de una escritura concurrente perdida (compare-and-swap).
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
