package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// SeedLot stock inicial para modo demo y pruebas.
type SeedLot struct {
	SellerID    string
	ProductID   string
	BatchNumber string
	Location    entity.Location
	Quantity    decimal.Decimal
	Expiration  time.Time
	Freshness   float64
}

// SeedStock crea un lote con su BatchLocation y carga la cantidad con un movimiento INITIAL,
// de modo que el libro mayor queda cuadrado desde el primer registro.
func (s *Store) SeedStock(ctx context.Context, engine *inventory.QuantityEngine, lot SeedLot) (*entity.BatchLocation, error) {
	now := time.Now().UTC()
	if lot.BatchNumber == "" {
		lot.BatchNumber = "SEED-" + uuid.NewString()[:8]
	}
	if lot.Freshness == 0 {
		lot.Freshness = 10
	}
	batch := &entity.Batch{
		ID:                  uuid.NewString(),
		SellerID:            lot.SellerID,
		ProductID:           lot.ProductID,
		BatchNumber:         lot.BatchNumber,
		ReceivedAt:          now,
		ExpirationDate:      lot.Expiration,
		EffectiveExpiration: lot.Expiration,
		Freshness:           lot.Freshness,
		InitialFreshness:    lot.Freshness,
		InitialQuantity:     lot.Quantity,
		CurrentQuantity:     decimal.Zero,
		CurrentLocation:     lot.Location,
		LocationArrivedAt:   now,
		LocationCoefficient: 1,
		Status:              entity.BatchStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	bl := &entity.BatchLocation{
		ID:                     uuid.NewString(),
		SellerID:               lot.SellerID,
		BatchID:                batch.ID,
		ProductID:              lot.ProductID,
		Location:               lot.Location,
		Quantity:               decimal.Zero,
		ReservedQuantity:       decimal.Zero,
		DegradationCoefficient: 1,
		EffectiveExpiration:    lot.Expiration,
		Freshness:              lot.Freshness,
		ArrivedAt:              now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	err := s.Run(ctx, func(repos inventory.Repos) error {
		if err := repos.Batches.Create(ctx, batch); err != nil {
			return err
		}
		if err := repos.Locations.Create(ctx, bl); err != nil {
			return err
		}
		if !lot.Quantity.IsPositive() {
			return nil
		}
		_, _, err := engine.Apply(ctx, repos, inventory.ChangeRequest{
			BatchLocationID: bl.ID,
			Delta:           lot.Quantity,
			Type:            entity.MovementTypeInitial,
			Document:        entity.DocumentRef{Type: entity.DocumentTypeManual, ID: batch.ID, Number: lot.BatchNumber},
			Actor:           entity.SystemActor("seed"),
			Comment:         "carga inicial",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Repos().Locations.GetByID(ctx, bl.ID)
}
