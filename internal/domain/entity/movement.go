package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro mayor (enumeración cerrada).
const (
	MovementTypeReceiving          = "RECEIVING"
	MovementTypeTransferIn         = "TRANSFER_IN"
	MovementTypeTransferOut        = "TRANSFER_OUT"
	MovementTypeWriteOff           = "WRITE_OFF"
	MovementTypeSale               = "SALE"
	MovementTypeOfflineSale        = "OFFLINE_SALE"
	MovementTypeReservation        = "RESERVATION"
	MovementTypeReservationRelease = "RESERVATION_RELEASE"
	MovementTypeReservationConfirm = "RESERVATION_CONFIRM"
	MovementTypeAdjustmentPlus     = "ADJUSTMENT_PLUS"
	MovementTypeAdjustmentMinus    = "ADJUSTMENT_MINUS"
	MovementTypeReturnToStock      = "RETURN_TO_STOCK"
	MovementTypeSupplierReturn     = "SUPPLIER_RETURN"
	MovementTypeInitial            = "INITIAL"
)

var movementTypes = map[string]struct{}{
	MovementTypeReceiving: {}, MovementTypeTransferIn: {}, MovementTypeTransferOut: {},
	MovementTypeWriteOff: {}, MovementTypeSale: {}, MovementTypeOfflineSale: {},
	MovementTypeReservation: {}, MovementTypeReservationRelease: {}, MovementTypeReservationConfirm: {},
	MovementTypeAdjustmentPlus: {}, MovementTypeAdjustmentMinus: {}, MovementTypeReturnToStock: {},
	MovementTypeSupplierReturn: {}, MovementTypeInitial: {},
}

// IsMovementType indica si t pertenece a la enumeración.
func IsMovementType(t string) bool {
	_, ok := movementTypes[t]
	return ok
}

// IsReceiptMovement entradas que genera la confirmación de una recepción.
func IsReceiptMovement(t string) bool {
	return t == MovementTypeReceiving || t == MovementTypeReturnToStock || t == MovementTypeInitial
}

// IsReservationMovement movimientos que solo cambian el reservado (QuantityChange = 0).
func IsReservationMovement(t string) bool {
	return t == MovementTypeReservation || t == MovementTypeReservationRelease || t == MovementTypeReservationConfirm
}

// Movement entrada inmutable del libro mayor. Invariante: BalanceAfter = BalanceBefore + QuantityChange.
// Nunca se actualiza ni se borra; las correcciones son entradas nuevas.
type Movement struct {
	ID              string
	SellerID        string
	Type            string
	BatchID         string
	ProductID       string
	BatchLocationID string
	Location        Location

	QuantityChange decimal.Decimal // con signo; cero en reservas puras
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	ReservedBefore *decimal.Decimal
	ReservedAfter  *decimal.Decimal

	Document DocumentRef
	Actor    Actor
	Comment  string

	CreatedAt time.Time
}

// Balanced verifica la invariante de saldo.
func (m *Movement) Balanced() bool {
	return m.BalanceBefore.Add(m.QuantityChange).Equal(m.BalanceAfter)
}

// MovementFilter filtros de consulta por vendedor.
type MovementFilter struct {
	SellerID   string
	Types      []string
	BatchID    string
	ProductID  string
	Location   *Location
	DocumentID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// MovementSummary agregado de ingresos/egresos y conteo por tipo en un rango de fechas.
type MovementSummary struct {
	SellerID     string
	From         time.Time
	To           time.Time
	TotalIncome  decimal.Decimal // suma de cambios positivos
	TotalExpense decimal.Decimal // suma absoluta de cambios negativos
	CountByType  map[string]int
	Total        int
}
