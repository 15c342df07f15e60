package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro mayor. Solo inserta; nunca actualiza ni borra.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	CreateBulk(ctx context.Context, movements []*entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	// ListByBatchLocation devuelve la cadena completa de un BatchLocation en orden de creación.
	ListByBatchLocation(ctx context.Context, batchLocationID string) ([]*entity.Movement, error)
	// Summary agrega ingresos, egresos y conteo por tipo en una sola pasada agrupada.
	Summary(ctx context.Context, sellerID string, from, to time.Time) (*entity.MovementSummary, error)
}
