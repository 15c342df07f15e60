package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchLocationRepository define el puerto para el stock autoritativo de un lote en una ubicación.
type BatchLocationRepository interface {
	// Create inserta el registro de la primera llegada. domain.ErrConflict si ya existe la clave (lote, ubicación).
	Create(ctx context.Context, bl *entity.BatchLocation) error
	GetByID(ctx context.Context, id string) (*entity.BatchLocation, error)
	// GetForUpdate obtiene el registro bloqueando la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.BatchLocation, error)
	GetByKey(ctx context.Context, batchID string, loc entity.Location) (*entity.BatchLocation, error)
	// CompareAndSwap escribe cantidad y reservado solo si la versión sigue siendo expectedVersion;
	// si otra escritura ganó devuelve domain.ErrConflict. Incrementa la versión.
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, quantity, reserved decimal.Decimal) error
	// UpdateShelfLife guarda coeficiente, vencimiento efectivo, frescura y fecha de llegada propios de la ubicación.
	UpdateShelfLife(ctx context.Context, bl *entity.BatchLocation) error
	// ListByLocation lista el stock de una ubicación con datos del lote desnormalizados.
	ListByLocation(ctx context.Context, sellerID string, loc entity.Location, withQuantityOnly bool) ([]entity.StockLine, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.BatchLocation, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*entity.BatchLocation, error)
}
