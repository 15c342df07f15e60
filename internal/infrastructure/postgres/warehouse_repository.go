package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

var _ inventory.LocationDirectory = (*LocationRepo)(nil)

// LocationRepo directorio de tiendas y bodegas con sus condiciones reales.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Upsert registra o actualiza una ubicación.
func (r *LocationRepo) Upsert(ctx context.Context, info entity.LocationInfo) error {
	if err := info.Location.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO locations (kind, id, seller_id, name, temperature, humidity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, id) DO UPDATE SET seller_id = EXCLUDED.seller_id, name = EXCLUDED.name,
			temperature = EXCLUDED.temperature, humidity = EXCLUDED.humidity`
	_, err := r.q.Exec(ctx, query, string(info.Location.Kind), info.Location.ID, info.SellerID, info.Name,
		info.Profile.Temperature, info.Profile.Humidity)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

// GetLocation obtiene una tienda o bodega. nil, nil si no existe.
func (r *LocationRepo) GetLocation(ctx context.Context, loc entity.Location) (*entity.LocationInfo, error) {
	query := `SELECT seller_id, name, temperature, humidity FROM locations WHERE kind = $1 AND id = $2`
	info := entity.LocationInfo{Location: loc}
	err := r.q.QueryRow(ctx, query, string(loc.Kind), loc.ID).Scan(
		&info.SellerID, &info.Name, &info.Profile.Temperature, &info.Profile.Humidity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &info, nil
}
