package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.BatchLocationRepository = (*BatchLocationRepo)(nil)

// BatchLocationRepo stock autoritativo por lote y ubicación sobre PostgreSQL.
type BatchLocationRepo struct {
	q Querier
}

// NewBatchLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchLocationRepository(q Querier) *BatchLocationRepo {
	return &BatchLocationRepo{q: q}
}

const batchLocationColumns = `bl.id, bl.seller_id, bl.batch_id, bl.product_id, bl.location_kind, bl.location_id,
	bl.quantity, bl.reserved_quantity, bl.degradation_coefficient, bl.effective_expiration, bl.freshness,
	bl.version, bl.arrived_at, bl.created_at, bl.updated_at`

// Create inserta el registro de la primera llegada del lote a la ubicación.
func (r *BatchLocationRepo) Create(ctx context.Context, bl *entity.BatchLocation) error {
	if bl.ID == "" {
		bl.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batch_locations (id, seller_id, batch_id, product_id, location_kind, location_id,
			quantity, reserved_quantity, degradation_coefficient, effective_expiration, freshness,
			version, arrived_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		bl.ID, bl.SellerID, bl.BatchID, bl.ProductID, string(bl.Location.Kind), bl.Location.ID,
		bl.Quantity, bl.ReservedQuantity, bl.DegradationCoefficient, bl.EffectiveExpiration, bl.Freshness,
		bl.Version, bl.ArrivedAt, bl.CreatedAt, bl.UpdatedAt,
	)
	return wrapWrite("create batch location", err)
}

// GetByID obtiene el registro sin bloquear.
func (r *BatchLocationRepo) GetByID(ctx context.Context, id string) (*entity.BatchLocation, error) {
	query := `SELECT ` + batchLocationColumns + ` FROM batch_locations bl WHERE bl.id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate obtiene el registro bloqueando la fila hasta el fin de la transacción.
func (r *BatchLocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.BatchLocation, error) {
	query := `SELECT ` + batchLocationColumns + ` FROM batch_locations bl WHERE bl.id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetByKey busca por la clave lógica (lote, ubicación).
func (r *BatchLocationRepo) GetByKey(ctx context.Context, batchID string, loc entity.Location) (*entity.BatchLocation, error) {
	query := `SELECT ` + batchLocationColumns + ` FROM batch_locations bl
		WHERE bl.batch_id = $1 AND bl.location_kind = $2 AND bl.location_id = $3`
	return r.getOne(ctx, query, batchID, string(loc.Kind), loc.ID)
}

func (r *BatchLocationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.BatchLocation, error) {
	bl, err := scanBatchLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch location: %w", err)
	}
	return bl, nil
}

// CompareAndSwap escribe cantidad y reservado si la versión no cambió.
func (r *BatchLocationRepo) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, quantity, reserved decimal.Decimal) error {
	query := `
		UPDATE batch_locations SET quantity = $3, reserved_quantity = $4, version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query, id, expectedVersion, quantity, reserved, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("compare and swap batch location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch location %s versión %d: %w", id, expectedVersion, domain.ErrConflict)
	}
	return nil
}

// UpdateShelfLife guarda coeficiente, vencimiento efectivo, frescura y fecha de llegada de la ubicación.
func (r *BatchLocationRepo) UpdateShelfLife(ctx context.Context, bl *entity.BatchLocation) error {
	query := `
		UPDATE batch_locations SET degradation_coefficient = $2, effective_expiration = $3, freshness = $4,
			arrived_at = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, bl.ID, bl.DegradationCoefficient, bl.EffectiveExpiration, bl.Freshness, bl.ArrivedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update shelf life: %w", err)
	}
	return nil
}

// ListByLocation stock de una ubicación con número de lote y vencimiento original.
// Orden: vencimiento efectivo más próximo primero.
func (r *BatchLocationRepo) ListByLocation(ctx context.Context, sellerID string, loc entity.Location, withQuantityOnly bool) ([]entity.StockLine, error) {
	query := `
		SELECT ` + batchLocationColumns + `, b.batch_number, b.expiration_date
		FROM batch_locations bl
		JOIN batches b ON b.id = bl.batch_id
		WHERE bl.seller_id = $1 AND bl.location_kind = $2 AND bl.location_id = $3`
	if withQuantityOnly {
		query += ` AND bl.quantity > 0`
	}
	query += ` ORDER BY bl.effective_expiration, b.batch_number`

	rows, err := r.q.Query(ctx, query, sellerID, string(loc.Kind), loc.ID)
	if err != nil {
		return nil, fmt.Errorf("list stock by location: %w", err)
	}
	defer rows.Close()
	var list []entity.StockLine
	for rows.Next() {
		var line entity.StockLine
		var kind, locID string
		bl := &line.BatchLocation
		if err := rows.Scan(
			&bl.ID, &bl.SellerID, &bl.BatchID, &bl.ProductID, &kind, &locID,
			&bl.Quantity, &bl.ReservedQuantity, &bl.DegradationCoefficient, &bl.EffectiveExpiration, &bl.Freshness,
			&bl.Version, &bl.ArrivedAt, &bl.CreatedAt, &bl.UpdatedAt,
			&line.BatchNumber, &line.ExpirationDate,
		); err != nil {
			return nil, fmt.Errorf("scan stock line: %w", err)
		}
		bl.Location = parseLocation(kind, locID)
		list = append(list, line)
	}
	return list, rows.Err()
}

// ListByBatch todas las ubicaciones de un lote.
func (r *BatchLocationRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.BatchLocation, error) {
	query := `SELECT ` + batchLocationColumns + ` FROM batch_locations bl WHERE bl.batch_id = $1 ORDER BY bl.created_at`
	return r.list(ctx, query, batchID)
}

// ListBySeller todos los registros del vendedor (verificación de consistencia).
func (r *BatchLocationRepo) ListBySeller(ctx context.Context, sellerID string) ([]*entity.BatchLocation, error) {
	query := `SELECT ` + batchLocationColumns + ` FROM batch_locations bl WHERE bl.seller_id = $1 ORDER BY bl.batch_id, bl.created_at`
	return r.list(ctx, query, sellerID)
}

func (r *BatchLocationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.BatchLocation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batch locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchLocation
	for rows.Next() {
		bl, err := scanBatchLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch location: %w", err)
		}
		list = append(list, bl)
	}
	return list, rows.Err()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func scanBatchLocation(row pgx.Row) (*entity.BatchLocation, error) {
	var bl entity.BatchLocation
	var kind, locID string
	err := row.Scan(
		&bl.ID, &bl.SellerID, &bl.BatchID, &bl.ProductID, &kind, &locID,
		&bl.Quantity, &bl.ReservedQuantity, &bl.DegradationCoefficient, &bl.EffectiveExpiration, &bl.Freshness,
		&bl.Version, &bl.ArrivedAt, &bl.CreatedAt, &bl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	bl.Location = parseLocation(kind, locID)
	return &bl, nil
}
