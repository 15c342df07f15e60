package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes (DIP).
type BatchRepository interface {
	// Create persiste un lote nuevo. Devuelve domain.ErrConflict si el número ya existe para el vendedor.
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetByNumber(ctx context.Context, sellerID, batchNumber string) (*entity.Batch, error)
	// Update guarda cantidad actual, frescura, ubicación hogar y estado.
	Update(ctx context.Context, batch *entity.Batch) error
	ListByProduct(ctx context.Context, sellerID, productID string) ([]*entity.Batch, error)
}
