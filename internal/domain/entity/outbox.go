package entity

import "time"

// OutboxEvent evento pendiente de publicar, escrito en la misma transacción que el movimiento.
type OutboxEvent struct {
	ID          string
	AggregateID string // ID del movimiento
	SellerID    string
	EventType   string // movement.RECEIVING, movement.TRANSFER_OUT, ...
	Payload     []byte // JSON
	CreatedAt   time.Time
	PublishedAt *time.Time
	Attempts    int
}
