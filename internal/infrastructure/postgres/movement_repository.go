package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro mayor sobre PostgreSQL. Solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, seller_id, type, batch_id, product_id, batch_location_id, location_kind, location_id,
	quantity_change, balance_before, balance_after, reserved_before, reserved_after,
	document_type, document_id, document_number, actor_type, actor_id, actor_name, comment, created_at`

const insertMovement = `INSERT INTO movements (` + movementColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

func movementArgs(m *entity.Movement) []any {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return []any{
		m.ID, m.SellerID, m.Type, m.BatchID, m.ProductID, m.BatchLocationID, string(m.Location.Kind), m.Location.ID,
		m.QuantityChange, m.BalanceBefore, m.BalanceAfter, m.ReservedBefore, m.ReservedAfter,
		m.Document.Type, m.Document.ID, m.Document.Number, m.Actor.Type, m.Actor.ID, m.Actor.Name, m.Comment, m.CreatedAt,
	}
}

// Create agrega un movimiento al libro.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if _, err := r.q.Exec(ctx, insertMovement, movementArgs(m)...); err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// CreateBulk agrega varios movimientos en un solo viaje (pgx.Batch).
func (r *MovementRepo) CreateBulk(ctx context.Context, movements []*entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range movements {
		batch.Queue(insertMovement, movementArgs(m)...)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range movements {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("create movements: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List movimientos filtrados del vendedor, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	conds := []string{"seller_id = $1"}
	args := []any{f.SellerID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.Types) > 0 {
		add("type = ANY($%d)", f.Types)
	}
	if f.BatchID != "" {
		add("batch_id = $%d", f.BatchID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Location != nil {
		add("location_kind = $%d", string(f.Location.Kind))
		add("location_id = $%d", f.Location.ID)
	}
	if f.DocumentID != "" {
		add("document_id = $%d", f.DocumentID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM movements WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

// ListByBatchLocation cadena completa de un BatchLocation en orden de inserción.
func (r *MovementRepo) ListByBatchLocation(ctx context.Context, batchLocationID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE batch_location_id = $1 ORDER BY seq`
	return r.list(ctx, query, batchLocationID)
}

// Summary ingresos, egresos y conteo por tipo en [from, to) con una sola consulta agrupada.
func (r *MovementRepo) Summary(ctx context.Context, sellerID string, from, to time.Time) (*entity.MovementSummary, error) {
	query := `
		SELECT type,
			COUNT(*),
			COALESCE(SUM(quantity_change) FILTER (WHERE quantity_change > 0), 0),
			COALESCE(-SUM(quantity_change) FILTER (WHERE quantity_change < 0), 0)
		FROM movements
		WHERE seller_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY type`
	rows, err := r.q.Query(ctx, query, sellerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("movement summary: %w", err)
	}
	defer rows.Close()
	sum := &entity.MovementSummary{
		SellerID:     sellerID,
		From:         from,
		To:           to,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		CountByType:  make(map[string]int),
	}
	for rows.Next() {
		var typ string
		var count int
		var income, expense decimal.Decimal
		if err := rows.Scan(&typ, &count, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan movement summary: %w", err)
		}
		sum.CountByType[typ] = count
		sum.Total += count
		sum.TotalIncome = sum.TotalIncome.Add(income)
		sum.TotalExpense = sum.TotalExpense.Add(expense)
	}
	return sum, rows.Err()
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var kind, locID string
	err := row.Scan(
		&m.ID, &m.SellerID, &m.Type, &m.BatchID, &m.ProductID, &m.BatchLocationID, &kind, &locID,
		&m.QuantityChange, &m.BalanceBefore, &m.BalanceAfter, &m.ReservedBefore, &m.ReservedAfter,
		&m.Document.Type, &m.Document.ID, &m.Document.Number, &m.Actor.Type, &m.Actor.ID, &m.Actor.Name, &m.Comment, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Location = parseLocation(kind, locID)
	return &m, nil
}
