package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchLocation cantidad autoritativa de un lote en una ubicación (tienda o bodega).
// Clave lógica: (BatchID, Location). Quantity solo cambia a través del motor de cantidades.
type BatchLocation struct {
	ID        string
	SellerID  string
	BatchID   string
	ProductID string
	Location  Location

	Quantity         decimal.Decimal // >= 0
	ReservedQuantity decimal.Decimal // <= Quantity; lo escribe el componente externo de reservas

	DegradationCoefficient float64
	EffectiveExpiration    time.Time
	Freshness              float64

	// Version token de compare-and-swap; se incrementa en cada escritura de cantidad.
	Version   int64
	ArrivedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available cantidad no reservada.
func (bl *BatchLocation) Available() decimal.Decimal {
	return bl.Quantity.Sub(bl.ReservedQuantity)
}

// StockLine fila de lectura para "qué hay aquí ahora": BatchLocation con datos del lote desnormalizados.
type StockLine struct {
	BatchLocation
	BatchNumber    string
	ExpirationDate time.Time
}
