package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	DocumentNumber string                `json:"document_number,omitempty"`
	Source         LocationDTO           `json:"source"`
	Target         LocationDTO           `json:"target"`
	Comment        string                `json:"comment,omitempty"`
	Items          []TransferItemRequest `json:"items"`
}

// TransferItemRequest línea de traslado (alta o reemplazo).
type TransferItemRequest struct {
	BatchID           string          `json:"batch_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	Comment           string          `json:"comment,omitempty"`
}

// QuantityOverride cantidad explícita para una línea al enviar o recibir.
type QuantityOverride struct {
	Index    int             `json:"index"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TransferQuantitiesRequest body de send/receive; sin overrides se usan las cantidades del documento.
type TransferQuantitiesRequest struct {
	Overrides []QuantityOverride `json:"overrides,omitempty"`
}

// TransferItemResponse línea en respuestas.
type TransferItemResponse struct {
	Index                  int              `json:"index"`
	BatchID                string           `json:"batch_id"`
	BatchNumber            string           `json:"batch_number"`
	ProductID              string           `json:"product_id"`
	ProductName            string           `json:"product_name"`
	RequestedQuantity      decimal.Decimal  `json:"requested_quantity"`
	SentQuantity           *decimal.Decimal `json:"sent_quantity,omitempty"`
	ReceivedQuantity       *decimal.Decimal `json:"received_quantity,omitempty"`
	DestinationCoefficient float64          `json:"destination_coefficient,omitempty"`
	DestinationExpiration  *time.Time       `json:"destination_expiration,omitempty"`
	DestinationFreshness   *float64         `json:"destination_freshness,omitempty"`
	Comment                string           `json:"comment,omitempty"`
}

// TransferResponse traslado completo.
type TransferResponse struct {
	ID             string                 `json:"id"`
	SellerID       string                 `json:"seller_id"`
	DocumentNumber string                 `json:"document_number"`
	Type           string                 `json:"type"`
	Status         string                 `json:"status"`
	Source         LocationDTO            `json:"source"`
	Target         LocationDTO            `json:"target"`
	Comment        string                 `json:"comment,omitempty"`
	Items          []TransferItemResponse `json:"items"`
	CreatedBy      ActorDTO               `json:"created_by"`
	SentBy         *ActorDTO              `json:"sent_by,omitempty"`
	SentAt         *time.Time             `json:"sent_at,omitempty"`
	ReceivedBy     *ActorDTO              `json:"received_by,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	CancelledBy    *ActorDTO              `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// TransferListResponse listado paginado.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
