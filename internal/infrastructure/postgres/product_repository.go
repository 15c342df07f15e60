package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

var _ inventory.Catalog = (*ProductRepo)(nil)

// ProductRepo vista de solo lectura del catálogo de productos (tabla products).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador del catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Upsert registra o actualiza un producto; lo usan la carga demo y ledgerctl.
func (r *ProductRepo) Upsert(ctx context.Context, p entity.Product) error {
	c := p.Conditions
	query := `
		INSERT INTO products (id, seller_id, name, category, storage_code, temperature_min, temperature_max,
			humidity_min, humidity_max, degradation_coefficient)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET seller_id = EXCLUDED.seller_id, name = EXCLUDED.name,
			category = EXCLUDED.category, storage_code = EXCLUDED.storage_code,
			temperature_min = EXCLUDED.temperature_min, temperature_max = EXCLUDED.temperature_max,
			humidity_min = EXCLUDED.humidity_min, humidity_max = EXCLUDED.humidity_max,
			degradation_coefficient = EXCLUDED.degradation_coefficient`
	_, err := r.q.Exec(ctx, query, p.ID, p.SellerID, p.Name, p.Category, c.Code,
		c.TemperatureMin, c.TemperatureMax, c.HumidityMin, c.HumidityMax, c.DegradationCoefficient)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// GetProduct obtiene un producto con sus condiciones de almacenamiento. nil, nil si no existe.
func (r *ProductRepo) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	query := `
		SELECT id, seller_id, name, category, storage_code, temperature_min, temperature_max,
			humidity_min, humidity_max, degradation_coefficient
		FROM products WHERE id = $1`
	var p entity.Product
	c := &p.Conditions
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Category, &c.Code, &c.TemperatureMin, &c.TemperatureMax,
		&c.HumidityMin, &c.HumidityMax, &c.DegradationCoefficient,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
