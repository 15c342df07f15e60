package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una auditoría.
const (
	AuditStatusDraft      = "DRAFT"
	AuditStatusInProgress = "IN_PROGRESS"
	AuditStatusCompleted  = "COMPLETED"
	AuditStatusApplied    = "APPLIED"
	AuditStatusCancelled  = "CANCELLED"
)

// Tipos de auditoría.
const (
	AuditTypeFull    = "FULL"
	AuditTypePartial = "PARTIAL"
	AuditTypeControl = "CONTROL"
	AuditTypeExpress = "EXPRESS"
)

// Estado de cada línea contada.
const (
	AuditItemPending = "PENDING"
	AuditItemCounted = "COUNTED"
	AuditItemSkipped = "SKIPPED"
)

// Tipo de diferencia (signo de actual − esperado).
const (
	DiscrepancyNone     = "NONE"
	DiscrepancySurplus  = "SURPLUS"
	DiscrepancyShortage = "SHORTAGE"
)

// AuditNumberPrefix prefijo del consecutivo diario: AUD-YYYYMMDD-NNNN.
const AuditNumberPrefix = "AUD"

// AuditFilter filtros opcionales para el snapshot de Start.
type AuditFilter struct {
	ProductIDs         []string
	Category           string
	ExpiringWithinDays *int
}

// AuditItem línea de auditoría: un BatchLocation con su cantidad esperada (snapshot) y la contada.
type AuditItem struct {
	BatchID          string
	BatchLocationID  string
	ProductID        string
	ProductName      string
	BatchNumber      string
	ExpectedQuantity decimal.Decimal
	ActualQuantity   *decimal.Decimal
	Discrepancy      decimal.Decimal
	DiscrepancyType  string
	Status           string
	CountedBy        *Actor
	CountedAt        *time.Time
	Photos           []string
	Comment          string

	// CorrectionMovementID se llena cuando el ajuste de esta línea ya se aplicó.
	CorrectionMovementID string
}

// SetCount registra el conteo físico y deriva la diferencia y su tipo.
func (it *AuditItem) SetCount(actual decimal.Decimal, by Actor, at time.Time) {
	it.ActualQuantity = &actual
	it.Discrepancy = actual.Sub(it.ExpectedQuantity)
	switch it.Discrepancy.Sign() {
	case 1:
		it.DiscrepancyType = DiscrepancySurplus
	case -1:
		it.DiscrepancyType = DiscrepancyShortage
	default:
		it.DiscrepancyType = DiscrepancyNone
	}
	it.Status = AuditItemCounted
	it.CountedBy = &by
	it.CountedAt = &at
}

// NeedsCorrection línea contada con diferencia distinta de cero y aún sin ajuste.
func (it *AuditItem) NeedsCorrection() bool {
	return it.Status == AuditItemCounted && !it.Discrepancy.IsZero() && it.CorrectionMovementID == ""
}

// Audit documento que concilia stock esperado contra conteo físico.
type Audit struct {
	ID             string
	SellerID       string
	DocumentNumber string
	Type           string
	Status         string
	Location       Location
	Filter         AuditFilter
	Comment        string
	Items          []AuditItem

	TotalItems       int
	CountedItems     int
	DiscrepancyItems int
	TotalSurplus     decimal.Decimal
	TotalShortage    decimal.Decimal

	CreatedBy   Actor
	StartedAt   *time.Time
	CompletedBy *Actor
	CompletedAt *time.Time
	AppliedBy   *Actor
	AppliedAt   *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ref referencia de documento para los movimientos.
func (a *Audit) Ref() DocumentRef {
	return DocumentRef{Type: DocumentTypeAudit, ID: a.ID, Number: a.DocumentNumber}
}

// CheckIndex valida un índice de línea contra la longitud actual.
func (a *Audit) CheckIndex(i int) error {
	if i < 0 || i >= len(a.Items) {
		return fmt.Errorf("línea %d fuera de rango (%d líneas)", i, len(a.Items))
	}
	return nil
}

// RecomputeAggregates recorre todas las líneas y recalcula los contadores. Idempotente.
// Las líneas SKIPPED no cuentan para diferencias.
func (a *Audit) RecomputeAggregates() {
	a.TotalItems = len(a.Items)
	a.CountedItems = 0
	a.DiscrepancyItems = 0
	a.TotalSurplus = decimal.Zero
	a.TotalShortage = decimal.Zero
	for _, it := range a.Items {
		if it.Status != AuditItemCounted {
			continue
		}
		a.CountedItems++
		switch it.DiscrepancyType {
		case DiscrepancySurplus:
			a.DiscrepancyItems++
			a.TotalSurplus = a.TotalSurplus.Add(it.Discrepancy)
		case DiscrepancyShortage:
			a.DiscrepancyItems++
			a.TotalShortage = a.TotalShortage.Add(it.Discrepancy.Neg())
		}
	}
}

// CanCancel la cancelación está permitida en cualquier estado previo a APPLIED.
func (a *Audit) CanCancel() bool {
	return a.Status == AuditStatusDraft || a.Status == AuditStatusInProgress || a.Status == AuditStatusCompleted
}
