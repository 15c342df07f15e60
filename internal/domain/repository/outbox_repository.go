package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// OutboxRepository cola transaccional de eventos de movimientos.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *entity.OutboxEvent) error
	// FetchPending toma hasta limit eventos no publicados, en orden de creación.
	FetchPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
	MarkFailed(ctx context.Context, id string) error
}
