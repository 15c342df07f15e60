package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementPublisher publica eventos de movimientos en un exchange topic de RabbitMQ.
// La clave de ruteo es el tipo de evento (movement.RECEIVING, movement.TRANSFER_OUT, ...).
type MovementPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// DialMovementPublisher conecta y declara el exchange (topic, durable).
func DialMovementPublisher(url, exchange string) (*MovementPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal RabbitMQ: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", exchange, err)
	}
	return &MovementPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish envía un evento de outbox. MessageId es el ID del evento para que el consumidor deduplique.
func (p *MovementPublisher) Publish(_ context.Context, e *entity.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("sin conexión a RabbitMQ")
	}
	err := p.channel.Publish(
		p.exchange,
		routingKey(e),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         e.Payload,
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Timestamp:    e.CreatedAt,
			Type:         e.EventType,
			Headers: amqp.Table{
				"seller_id":    e.SellerID,
				"aggregate_id": e.AggregateID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", e.EventType, err)
	}
	return nil
}

// Close cierra canal y conexión.
func (p *MovementPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

func routingKey(e *entity.OutboxEvent) string {
	return strings.ToLower(e.EventType)
}
