package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Batches    repository.BatchRepository
	Locations  repository.BatchLocationRepository
	Movements  repository.MovementRepository
	Receivings repository.ReceivingRepository
	Transfers  repository.TransferRepository
	Audits     repository.AuditRepository
	Outbox     repository.OutboxRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la escritura de cantidad y su movimiento (y el evento de outbox) se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// Catalog consulta de solo lectura al catálogo externo de productos.
// Devuelve nil, nil si el producto no existe.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}

// LocationDirectory consulta de tiendas y bodegas con sus condiciones reales de almacenamiento.
// Devuelve nil, nil si la ubicación no existe.
type LocationDirectory interface {
	GetLocation(ctx context.Context, loc entity.Location) (*entity.LocationInfo, error)
}

// ResolveProduct obtiene el producto o domain.ErrNotFound.
func ResolveProduct(ctx context.Context, catalog Catalog, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("product_id requerido: %w", domain.ErrInvalidInput)
	}
	p, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return p, nil
}

// ResolveLocation valida la ubicación y la busca en el directorio; domain.ErrNotFound si no existe
// o pertenece a otro vendedor.
func ResolveLocation(ctx context.Context, dir LocationDirectory, sellerID string, loc entity.Location) (*entity.LocationInfo, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	info, err := dir.GetLocation(ctx, loc)
	if err != nil {
		return nil, err
	}
	if info == nil || (info.SellerID != "" && info.SellerID != sellerID) {
		return nil, fmt.Errorf("ubicación %s: %w", loc, domain.ErrNotFound)
	}
	return info, nil
}
