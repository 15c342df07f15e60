package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	BatchStatusActive = "ACTIVE"
	BatchStatusClosed = "CLOSED" // cantidad actual en cero; nunca se borra
)

// Batch representa un lote de un producto recibido de una sola vez.
// CurrentQuantity siempre es la suma de las cantidades de sus BatchLocation.
type Batch struct {
	ID          string
	SellerID    string
	ProductID   string
	BatchNumber string // único por vendedor

	ProductionDate      *time.Time
	ReceivedAt          time.Time
	ExpirationDate      time.Time
	EffectiveExpiration time.Time // ajustada por condiciones de almacenamiento
	Freshness           float64   // 0–10
	InitialFreshness    float64

	InitialQuantity decimal.Decimal
	CurrentQuantity decimal.Decimal

	Supplier        string
	SupplierInvoice string
	PurchasePrice   decimal.Decimal
	ReceivingID     string

	// Ubicación "hogar" desnormalizada; no es autoritativa para el saldo.
	CurrentLocation     Location
	LocationArrivedAt   time.Time
	LocationCoefficient float64

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClosed indica si el lote quedó sin existencias.
func (b *Batch) IsClosed() bool {
	return b.Status == BatchStatusClosed
}

// DaysUntilExpiry días hasta la fecha de vencimiento efectiva (negativo si ya venció).
func (b *Batch) DaysUntilExpiry(now time.Time) int {
	return int(b.EffectiveExpiration.Sub(now).Hours() / 24)
}
