package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// StockUseCase lecturas de stock y registro de efectos de reserva para la API.
type StockUseCase struct {
	tx     TxRunner
	engine *QuantityEngine
	log    zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(tx TxRunner, engine *QuantityEngine, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{tx: tx, engine: engine, log: log.With().Str("component", "stock").Logger()}
}

// InLocation todo el stock de una ubicación del vendedor.
func (uc *StockUseCase) InLocation(ctx context.Context, sellerID string, loc entity.Location, withQuantityOnly bool) ([]dto.StockLineResponse, error) {
	lines, err := uc.engine.GetAllStockInLocation(ctx, sellerID, loc, withQuantityOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.FromStockLine(l))
	}
	return out, nil
}

// BatchInLocation stock de un lote en una ubicación; NotFound si no existe o es de otro vendedor.
func (uc *StockUseCase) BatchInLocation(ctx context.Context, sellerID, batchID string, loc entity.Location) (*dto.BatchLocationResponse, error) {
	bl, err := uc.engine.GetBatchInLocation(ctx, batchID, loc)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		return nil, fmt.Errorf("lote %s en %s: %w", batchID, loc, domain.ErrNotFound)
	}
	if err := RequireSeller(bl.SellerID, sellerID); err != nil {
		return nil, err
	}
	return dto.FromBatchLocation(bl), nil
}

// RecordReservation registra en el libro el efecto que informa el componente de reservas.
func (uc *StockUseCase) RecordReservation(ctx context.Context, sellerID string, actor entity.Actor, in dto.ReservationRequest) (*dto.MovementResponse, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if in.BatchLocationID == "" || in.OrderID == "" {
		return nil, fmt.Errorf("batch_location_id y order_id requeridos: %w", domain.ErrInvalidInput)
	}
	if !entity.IsReservationMovement(in.Type) {
		return nil, fmt.Errorf("tipo de reserva %q: %w", in.Type, domain.ErrInvalidInput)
	}
	ref := entity.DocumentRef{Type: entity.DocumentTypeOrder, ID: in.OrderID, Number: in.OrderNumber}

	var mov *entity.Movement
	err := uc.tx.Run(ctx, func(repos Repos) error {
		bl, err := repos.Locations.GetByID(ctx, in.BatchLocationID)
		if err != nil {
			return err
		}
		if bl == nil {
			return fmt.Errorf("batch location %s: %w", in.BatchLocationID, domain.ErrNotFound)
		}
		if err := RequireSeller(bl.SellerID, sellerID); err != nil {
			return err
		}
		mov, err = uc.engine.RecordReservation(ctx, repos, bl.ID, in.Type, in.Quantity, ref, actor, in.Comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("batch_location_id", in.BatchLocationID).Str("type", in.Type).
		Str("order_id", in.OrderID).Str("quantity", in.Quantity.String()).Msg("reserva registrada")
	resp := dto.FromMovement(mov)
	return &resp, nil
}
