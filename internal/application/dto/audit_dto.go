package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFilterDTO filtros opcionales del snapshot.
type AuditFilterDTO struct {
	ProductIDs         []string `json:"product_ids,omitempty"`
	Category           string   `json:"category,omitempty"`
	ExpiringWithinDays *int     `json:"expiring_within_days,omitempty"`
}

// CreateAuditRequest body para POST /api/audits.
type CreateAuditRequest struct {
	DocumentNumber string         `json:"document_number,omitempty"`
	Type           string         `json:"type"` // FULL | PARTIAL | CONTROL | EXPRESS
	Location       LocationDTO    `json:"location"`
	Filter         AuditFilterDTO `json:"filter"`
	Comment        string         `json:"comment,omitempty"`
}

// CountItemRequest body para POST /api/audits/:id/items/:index/count.
type CountItemRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Photos         []string        `json:"photos,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

// BulkCountEntry conteo de una línea dentro de un lote de conteos.
type BulkCountEntry struct {
	Index          int             `json:"index"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Comment        string          `json:"comment,omitempty"`
}

// BulkCountRequest body para POST /api/audits/:id/bulk-count.
type BulkCountRequest struct {
	Counts []BulkCountEntry `json:"counts"`
}

// SkipItemRequest body para POST /api/audits/:id/items/:index/skip.
type SkipItemRequest struct {
	Comment string `json:"comment,omitempty"`
}

// CompleteAuditRequest body para POST /api/audits/:id/complete.
type CompleteAuditRequest struct {
	ApplyCorrections bool `json:"apply_corrections"`
}

// AuditItemResponse línea en respuestas.
type AuditItemResponse struct {
	Index                int              `json:"index"`
	BatchID              string           `json:"batch_id"`
	BatchLocationID      string           `json:"batch_location_id"`
	ProductID            string           `json:"product_id"`
	ProductName          string           `json:"product_name"`
	BatchNumber          string           `json:"batch_number"`
	ExpectedQuantity     decimal.Decimal  `json:"expected_quantity"`
	ActualQuantity       *decimal.Decimal `json:"actual_quantity,omitempty"`
	Discrepancy          decimal.Decimal  `json:"discrepancy"`
	DiscrepancyType      string           `json:"discrepancy_type,omitempty"`
	Status               string           `json:"status"`
	CountedBy            *ActorDTO        `json:"counted_by,omitempty"`
	CountedAt            *time.Time       `json:"counted_at,omitempty"`
	Photos               []string         `json:"photos,omitempty"`
	Comment              string           `json:"comment,omitempty"`
	CorrectionMovementID string           `json:"correction_movement_id,omitempty"`
}

// AuditResponse auditoría completa con agregados.
type AuditResponse struct {
	ID               string              `json:"id"`
	SellerID         string              `json:"seller_id"`
	DocumentNumber   string              `json:"document_number"`
	Type             string              `json:"type"`
	Status           string              `json:"status"`
	Location         LocationDTO         `json:"location"`
	Filter           AuditFilterDTO      `json:"filter"`
	Comment          string              `json:"comment,omitempty"`
	Items            []AuditItemResponse `json:"items"`
	TotalItems       int                 `json:"total_items"`
	CountedItems     int                 `json:"counted_items"`
	DiscrepancyItems int                 `json:"discrepancy_items"`
	TotalSurplus     decimal.Decimal     `json:"total_surplus"`
	TotalShortage    decimal.Decimal     `json:"total_shortage"`
	CreatedBy        ActorDTO            `json:"created_by"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedBy      *ActorDTO           `json:"completed_by,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	AppliedBy        *ActorDTO           `json:"applied_by,omitempty"`
	AppliedAt        *time.Time          `json:"applied_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// AuditListResponse listado paginado.
type AuditListResponse struct {
	Items []AuditResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AdjustmentResponse ajuste aplicado por una línea con diferencia.
type AdjustmentResponse struct {
	Index           int             `json:"index"`
	BatchLocationID string          `json:"batch_location_id"`
	MovementID      string          `json:"movement_id"`
	Type            string          `json:"type"` // ADJUSTMENT_PLUS | ADJUSTMENT_MINUS
	QuantityChange  decimal.Decimal `json:"quantity_change"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
}

// ApplyCorrectionsResponse resultado de aplicar (o completar y aplicar) una auditoría.
type ApplyCorrectionsResponse struct {
	Audit       AuditResponse        `json:"audit"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
}
