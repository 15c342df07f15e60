package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// recordingQuerier guarda el SQL y los argumentos; las lecturas de una fila no encuentran nada.
type recordingQuerier struct {
	sql  []string
	args [][]any
}

func (q *recordingQuerier) record(sql string, args []any) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	return nil, pgx.ErrNoRows
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.record(sql, args)
	return emptyRow{}
}

func (q *recordingQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

type emptyRow struct{}

func (emptyRow) Scan(...any) error { return pgx.ErrNoRows }

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: la lectura para modificar bloquea la fila; la lectura simple no.
func TestDocumentRepos_GetForUpdateBloqueaLaFila(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		get    func(q Querier) (bool, error)
		locked func(q Querier) (bool, error)
	}{
		{
			name: "recepciones",
			get: func(q Querier) (bool, error) {
				r, err := NewReceivingRepository(q).GetByID(ctx, "doc-1")
				return r == nil, err
			},
			locked: func(q Querier) (bool, error) {
				r, err := NewReceivingRepository(q).GetForUpdate(ctx, "doc-1")
				return r == nil, err
			},
		},
		{
			name: "traslados",
			get: func(q Querier) (bool, error) {
				tr, err := NewTransferRepository(q).GetByID(ctx, "doc-1")
				return tr == nil, err
			},
			locked: func(q Querier) (bool, error) {
				tr, err := NewTransferRepository(q).GetForUpdate(ctx, "doc-1")
				return tr == nil, err
			},
		},
		{
			name: "auditorías",
			get: func(q Querier) (bool, error) {
				a, err := NewAuditRepository(q).GetByID(ctx, "doc-1")
				return a == nil, err
			},
			locked: func(q Querier) (bool, error) {
				a, err := NewAuditRepository(q).GetForUpdate(ctx, "doc-1")
				return a == nil, err
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			q := &recordingQuerier{}
			missing, err := tc.get(q)
			require.NoError(t, err)
			assert.True(t, missing, "sin fila devuelve nil")
			missing, err = tc.locked(q)
			require.NoError(t, err)
			assert.True(t, missing)

			require.Len(t, q.sql, 2)
			assert.NotContains(t, q.sql[0], "FOR UPDATE")
			assert.Contains(t, q.sql[1], "WHERE id = $1 FOR UPDATE")
			assert.Equal(t, []any{"doc-1"}, q.args[1])
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones de lote
// ──────────────────────────────────────────────────────────────────────────────

// Caso 2: la segunda llegada de un traslado actualiza la fecha de llegada junto con la frescura.
func TestBatchLocationRepo_UpdateShelfLifeGuardaLlegada(t *testing.T) {
	q := &recordingQuerier{}
	arrived := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	bl := &entity.BatchLocation{
		ID:                     "bl-1",
		DegradationCoefficient: 1.5,
		EffectiveExpiration:    arrived.AddDate(0, 0, 10),
		Freshness:              8,
		ArrivedAt:              arrived,
	}

	require.NoError(t, NewBatchLocationRepository(q).UpdateShelfLife(context.Background(), bl))

	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "arrived_at = $5")
	require.Len(t, q.args[0], 6)
	assert.Equal(t, "bl-1", q.args[0][0])
	assert.Equal(t, arrived, q.args[0][4])
}
