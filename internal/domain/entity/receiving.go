package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción.
const (
	ReceivingStatusDraft     = "DRAFT"
	ReceivingStatusConfirmed = "CONFIRMED"
	ReceivingStatusCancelled = "CANCELLED"
)

// Tipos de recepción (metadato de clasificación).
const (
	ReceivingTypeSupplier = "SUPPLIER" // compra a proveedor
	ReceivingTypeReturn   = "RETURN"   // devolución de cliente
	ReceivingTypeInitial  = "INITIAL"  // carga inicial de inventario
)

// ReceivingNumberPrefix prefijo del consecutivo diario: RCV-YYYYMMDD-NNNN.
const ReceivingNumberPrefix = "RCV"

// ReceivingItem línea de una recepción.
type ReceivingItem struct {
	ProductID           string
	ProductName         string
	ExpectedQuantity    decimal.Decimal
	ActualQuantity      *decimal.Decimal // se llena antes de confirmar
	ExpirationDate      time.Time
	ProductionDate      *time.Time
	SupplierBatchNumber string
	PurchasePrice       decimal.Decimal
	CreatedBatchID      string // se llena al confirmar; marca la línea como ya procesada
}

// Quantity cantidad efectiva de la línea: real si existe, esperada si no.
func (it ReceivingItem) Quantity() decimal.Decimal {
	if it.ActualQuantity != nil {
		return *it.ActualQuantity
	}
	return it.ExpectedQuantity
}

// Receiving documento de entrada de mercancía a una ubicación.
type Receiving struct {
	ID              string
	SellerID        string
	DocumentNumber  string
	Type            string
	Status          string
	Destination     Location
	Supplier        string
	SupplierInvoice string
	Comment         string
	Items           []ReceivingItem
	TotalAmount     decimal.Decimal // Σ precio × (real ?? esperada)
	TotalQuantity   decimal.Decimal

	CreatedBy   Actor
	ConfirmedBy *Actor
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDraft indica si la recepción aún es editable.
func (r *Receiving) IsDraft() bool {
	return r.Status == ReceivingStatusDraft
}

// Ref referencia de documento para los movimientos.
func (r *Receiving) Ref() DocumentRef {
	return DocumentRef{Type: DocumentTypeReceiving, ID: r.ID, Number: r.DocumentNumber}
}

// CheckIndex valida un índice de línea contra la longitud actual.
func (r *Receiving) CheckIndex(i int) error {
	if i < 0 || i >= len(r.Items) {
		return fmt.Errorf("línea %d fuera de rango (%d líneas)", i, len(r.Items))
	}
	return nil
}

// RecalculateTotals recalcula TotalAmount y TotalQuantity a partir de las líneas.
func (r *Receiving) RecalculateTotals() {
	amount, qty := decimal.Zero, decimal.Zero
	for _, it := range r.Items {
		q := it.Quantity()
		amount = amount.Add(it.PurchasePrice.Mul(q))
		qty = qty.Add(q)
	}
	r.TotalAmount = amount
	r.TotalQuantity = qty
}

// MovementType tipo de movimiento que genera la confirmación.
func (r *Receiving) MovementType() string {
	switch r.Type {
	case ReceivingTypeInitial:
		return MovementTypeInitial
	case ReceivingTypeReturn:
		return MovementTypeReturnToStock
	}
	return MovementTypeReceiving
}
