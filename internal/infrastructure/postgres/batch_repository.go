package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, seller_id, product_id, batch_number, production_date, received_at,
	expiration_date, effective_expiration, freshness, initial_freshness, initial_quantity, current_quantity,
	supplier, supplier_invoice, purchase_price, receiving_id, location_kind, location_id,
	location_arrived_at, location_coefficient, status, created_at, updated_at`

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.SellerID, b.ProductID, b.BatchNumber, b.ProductionDate, b.ReceivedAt,
		b.ExpirationDate, b.EffectiveExpiration, b.Freshness, b.InitialFreshness, b.InitialQuantity, b.CurrentQuantity,
		b.Supplier, b.SupplierInvoice, b.PurchasePrice, b.ReceivingID, string(b.CurrentLocation.Kind), b.CurrentLocation.ID,
		b.LocationArrivedAt, b.LocationCoefficient, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	return wrapWrite("create batch", err)
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByNumber obtiene un lote por su número dentro del vendedor.
func (r *BatchRepo) GetByNumber(ctx context.Context, sellerID, batchNumber string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE seller_id = $1 AND batch_number = $2`
	return r.getOne(ctx, query, sellerID, batchNumber)
}

func (r *BatchRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update guarda cantidad actual, frescura, ubicación hogar y estado.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches SET current_quantity = $2, effective_expiration = $3, freshness = $4,
			location_kind = $5, location_id = $6, location_arrived_at = $7, location_coefficient = $8,
			status = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.CurrentQuantity, b.EffectiveExpiration, b.Freshness,
		string(b.CurrentLocation.Kind), b.CurrentLocation.ID, b.LocationArrivedAt, b.LocationCoefficient,
		b.Status, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update batch %s: no existe", b.ID)
	}
	return nil
}

// ListByProduct lista los lotes de un producto, más antiguos primero.
func (r *BatchRepo) ListByProduct(ctx context.Context, sellerID, productID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE seller_id = $1 AND product_id = $2 ORDER BY received_at, batch_number`
	rows, err := r.q.Query(ctx, query, sellerID, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var kind, locID string
	err := row.Scan(
		&b.ID, &b.SellerID, &b.ProductID, &b.BatchNumber, &b.ProductionDate, &b.ReceivedAt,
		&b.ExpirationDate, &b.EffectiveExpiration, &b.Freshness, &b.InitialFreshness, &b.InitialQuantity, &b.CurrentQuantity,
		&b.Supplier, &b.SupplierInvoice, &b.PurchasePrice, &b.ReceivingID, &kind, &locID,
		&b.LocationArrivedAt, &b.LocationCoefficient, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CurrentLocation = parseLocation(kind, locID)
	return &b, nil
}
