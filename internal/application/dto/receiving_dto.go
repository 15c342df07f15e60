package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReceivingRequest body para POST /api/receivings.
type CreateReceivingRequest struct {
	DocumentNumber  string                 `json:"document_number,omitempty"` // opcional: número pre-asignado
	Type            string                 `json:"type"`                      // SUPPLIER | RETURN | INITIAL
	Destination     LocationDTO            `json:"destination"`
	Supplier        string                 `json:"supplier,omitempty"`
	SupplierInvoice string                 `json:"supplier_invoice,omitempty"`
	Comment         string                 `json:"comment,omitempty"`
	Items           []ReceivingItemRequest `json:"items"`
}

// ReceivingItemRequest línea de recepción (alta o reemplazo).
type ReceivingItemRequest struct {
	ProductID           string           `json:"product_id"`
	ExpectedQuantity    decimal.Decimal  `json:"expected_quantity"`
	ActualQuantity      *decimal.Decimal `json:"actual_quantity,omitempty"`
	ExpirationDate      time.Time        `json:"expiration_date"`
	ProductionDate      *time.Time       `json:"production_date,omitempty"`
	SupplierBatchNumber string           `json:"supplier_batch_number,omitempty"`
	PurchasePrice       decimal.Decimal  `json:"purchase_price"`
}

// UpdateActualQuantityRequest body para PATCH /api/receivings/:id/items/:index/actual.
type UpdateActualQuantityRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
}

// ReceivingItemResponse línea en respuestas.
type ReceivingItemResponse struct {
	Index               int              `json:"index"`
	ProductID           string           `json:"product_id"`
	ProductName         string           `json:"product_name"`
	ExpectedQuantity    decimal.Decimal  `json:"expected_quantity"`
	ActualQuantity      *decimal.Decimal `json:"actual_quantity,omitempty"`
	ExpirationDate      time.Time        `json:"expiration_date"`
	ProductionDate      *time.Time       `json:"production_date,omitempty"`
	SupplierBatchNumber string           `json:"supplier_batch_number,omitempty"`
	PurchasePrice       decimal.Decimal  `json:"purchase_price"`
	CreatedBatchID      string           `json:"created_batch_id,omitempty"`
}

// ReceivingResponse recepción completa.
type ReceivingResponse struct {
	ID              string                  `json:"id"`
	SellerID        string                  `json:"seller_id"`
	DocumentNumber  string                  `json:"document_number"`
	Type            string                  `json:"type"`
	Status          string                  `json:"status"`
	Destination     LocationDTO             `json:"destination"`
	Supplier        string                  `json:"supplier,omitempty"`
	SupplierInvoice string                  `json:"supplier_invoice,omitempty"`
	Comment         string                  `json:"comment,omitempty"`
	Items           []ReceivingItemResponse `json:"items"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	TotalQuantity   decimal.Decimal         `json:"total_quantity"`
	CreatedBy       ActorDTO                `json:"created_by"`
	ConfirmedBy     *ActorDTO               `json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time              `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ReceivingListResponse listado paginado.
type ReceivingListResponse struct {
	Items []ReceivingResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
