package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// DocumentNumberSource lectura del mayor consecutivo existente para un prefijo diario (ej. RCV-20260301-).
// Devuelve "" si no hay documentos con ese prefijo.
type DocumentNumberSource interface {
	MaxDocumentNumber(ctx context.Context, sellerID, prefix string) (string, error)
}

// DocumentListFilter filtros comunes para listar documentos.
type DocumentListFilter struct {
	SellerID string
	Status   string
	Limit    int
	Offset   int
}

// ReceivingRepository define el puerto de persistencia para recepciones (cabecera + líneas).
type ReceivingRepository interface {
	DocumentNumberSource
	// Create devuelve domain.ErrConflict si (vendedor, número) ya existe.
	Create(ctx context.Context, r *entity.Receiving) error
	GetByID(ctx context.Context, id string) (*entity.Receiving, error)
	// GetForUpdate lee la recepción bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error)
	// Update reemplaza cabecera y líneas.
	Update(ctx context.Context, r *entity.Receiving) error
	List(ctx context.Context, filter DocumentListFilter) ([]*entity.Receiving, error)
}

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	DocumentNumberSource
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, t *entity.Transfer) error
	List(ctx context.Context, filter DocumentListFilter) ([]*entity.Transfer, error)
}

// AuditRepository define el puerto de persistencia para auditorías.
type AuditRepository interface {
	DocumentNumberSource
	Create(ctx context.Context, a *entity.Audit) error
	GetByID(ctx context.Context, id string) (*entity.Audit, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Audit, error)
	Update(ctx context.Context, a *entity.Audit) error
	List(ctx context.Context, filter DocumentListFilter) ([]*entity.Audit, error)
}
