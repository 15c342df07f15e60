package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado.
const (
	TransferStatusDraft     = "DRAFT"
	TransferStatusSent      = "SENT"
	TransferStatusReceived  = "RECEIVED"
	TransferStatusCancelled = "CANCELLED"
)

// Tipos de traslado; se derivan solo del tipo de origen y destino.
const (
	TransferTypeInternal        = "INTERNAL" // bodega a bodega
	TransferTypeWarehouseToShop = "WAREHOUSE_TO_SHOP"
	TransferTypeShopToWarehouse = "SHOP_TO_WAREHOUSE"
	TransferTypeShopToShop      = "SHOP_TO_SHOP"
)

// TransferNumberPrefix prefijo del consecutivo diario: TRF-YYYYMMDD-NNNN.
const TransferNumberPrefix = "TRF"

// ClassifyTransfer deriva el tipo de traslado de las ubicaciones.
func ClassifyTransfer(source, target Location) string {
	switch {
	case source.IsWarehouse() && target.IsShop():
		return TransferTypeWarehouseToShop
	case source.IsShop() && target.IsWarehouse():
		return TransferTypeShopToWarehouse
	case source.IsShop() && target.IsShop():
		return TransferTypeShopToShop
	}
	return TransferTypeInternal
}

// TransferItem línea de un traslado.
type TransferItem struct {
	BatchID           string
	ProductID         string
	ProductName       string
	BatchNumber       string
	RequestedQuantity decimal.Decimal
	SentQuantity      *decimal.Decimal // al enviar
	ReceivedQuantity  *decimal.Decimal // al recibir

	// Recalculados al enviar para usarlos en la recepción.
	DestinationCoefficient float64
	DestinationExpiration  *time.Time
	DestinationFreshness   *float64

	Comment string
}

// Transfer documento que mueve stock entre dos ubicaciones en dos fases (envío y recepción).
type Transfer struct {
	ID             string
	SellerID       string
	DocumentNumber string
	Type           string
	Status         string
	Source         Location
	Target         Location
	Comment        string
	Items          []TransferItem

	CreatedBy   Actor
	SentBy      *Actor
	SentAt      *time.Time
	ReceivedBy  *Actor
	ReceivedAt  *time.Time
	CancelledBy *Actor
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ref referencia de documento para los movimientos.
func (t *Transfer) Ref() DocumentRef {
	return DocumentRef{Type: DocumentTypeTransfer, ID: t.ID, Number: t.DocumentNumber}
}

// CheckIndex valida un índice de línea contra la longitud actual.
func (t *Transfer) CheckIndex(i int) error {
	if i < 0 || i >= len(t.Items) {
		return fmt.Errorf("línea %d fuera de rango (%d líneas)", i, len(t.Items))
	}
	return nil
}

// TotalRequested suma de cantidades solicitadas.
func (t *Transfer) TotalRequested() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.RequestedQuantity)
	}
	return total
}
