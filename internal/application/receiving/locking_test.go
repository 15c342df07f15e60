package receiving_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/receiving"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

// spyTx envuelve el almacén en memoria: cuenta las lecturas de la recepción dentro de la
// transacción y puede ejecutar una edición concurrente justo antes de la primera transacción.
type spyTx struct {
	store    *memory.Store
	before   func()
	locked   int
	unlocked int
}

func (s *spyTx) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if before := s.before; before != nil {
		s.before = nil
		before()
	}
	return s.store.Run(ctx, func(repos inventory.Repos) error {
		repos.Receivings = spyReceivings{ReceivingRepository: repos.Receivings, tx: s}
		return fn(repos)
	})
}

type spyReceivings struct {
	repository.ReceivingRepository
	tx *spyTx
}

func (r spyReceivings) GetByID(ctx context.Context, id string) (*entity.Receiving, error) {
	r.tx.unlocked++
	return r.ReceivingRepository.GetByID(ctx, id)
}

func (r spyReceivings) GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error) {
	r.tx.locked++
	return r.ReceivingRepository.GetForUpdate(ctx, id)
}

func withTx(store *memory.Store, tx inventory.TxRunner) *receiving.UseCase {
	repos := store.Repos()
	ledger := inventory.NewLedger(repos.Movements, zerolog.Nop())
	engine := inventory.NewQuantityEngine(repos.Locations, ledger, zerolog.Nop())
	return receiving.NewUseCase(tx, repos.Receivings, engine, store, store, zerolog.Nop(), 3)
}

// Caso 1: dentro de la transacción la recepción se lee siempre con la fila bloqueada.
func TestTransacciones_LeenElDocumentoBloqueado(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	spy := &spyTx{store: f.store}
	uc := withTx(f.store, spy)

	r := f.create(t, "", warehouse, item(milk, 2), item(bread, 1))
	_, err := uc.RemoveItem(ctx, seller, r.ID, 1)
	require.NoError(t, err)
	_, err = uc.Confirm(ctx, seller, r.ID, employee)
	require.NoError(t, err)

	other := f.create(t, "", warehouse, item(milk, 1))
	_, err = uc.Cancel(ctx, seller, other.ID, employee, "duplicada")
	require.NoError(t, err)

	assert.Zero(t, spy.unlocked)
	assert.GreaterOrEqual(t, spy.locked, 4, "edición, línea, cierre y cancelación")
}

// Caso 2: la línea cambia de producto entre la primera lectura y su transacción; el lote toma las
// condiciones del producto vigente en la fila bloqueada.
func TestConfirm_LineaEditadaUsaElProductoVigente(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cold := entity.StorageConditions{Code: "COLD", TemperatureMin: 2, TemperatureMax: 8, HumidityMin: 30, HumidityMax: 70, DegradationCoefficient: 2}
	f.store.PutProduct(entity.Product{ID: bread, SellerID: seller, Name: "Pan", Conditions: cold})
	r := f.create(t, "", warehouse, item(milk, 3))

	spy := &spyTx{store: f.store, before: func() {
		err := f.store.Run(ctx, func(repos inventory.Repos) error {
			cur, err := repos.Receivings.GetForUpdate(ctx, r.ID)
			if err != nil {
				return err
			}
			cur.Items[0].ProductID = bread
			cur.Items[0].ProductName = "Pan"
			return repos.Receivings.Update(ctx, cur)
		})
		require.NoError(t, err)
	}}
	_, err := withTx(f.store, spy).Confirm(ctx, seller, r.ID, employee)
	require.NoError(t, err)

	milkBatches, err := f.store.Repos().Batches.ListByProduct(ctx, seller, milk)
	require.NoError(t, err)
	assert.Empty(t, milkBatches)

	lines, err := f.store.Repos().Locations.ListByLocation(ctx, seller, warehouse, true)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, bread, lines[0].ProductID)
	assert.InDelta(t, 3.0, lines[0].DegradationCoefficient, 1e-9, "2 × 1.5 fuera de rango")
}

// Caso 3: confirmaciones y cancelaciones simultáneas del mismo borrador; solo una gana.
func TestConcurrencia_UnaSolaTransicion(t *testing.T) {
	cases := []struct {
		name      string
		op        func(f fixture, id string) error
		movements int
	}{
		{
			name: "confirmar",
			op: func(f fixture, id string) error {
				_, err := f.uc.Confirm(context.Background(), seller, id, employee)
				return err
			},
			movements: 1,
		},
		{
			name: "cancelar",
			op: func(f fixture, id string) error {
				_, err := f.uc.Cancel(context.Background(), seller, id, employee, "")
				return err
			},
			movements: 0,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			r := f.create(t, "", warehouse, item(milk, 5))

			const n = 4
			errs := make([]error, n)
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					errs[i] = tc.op(f, r.ID)
				}()
			}
			close(start)
			wg.Wait()

			ok := 0
			for _, err := range errs {
				if err == nil {
					ok++
					continue
				}
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			}
			assert.Equal(t, 1, ok)

			movs, err := f.store.Repos().Movements.List(ctx, entity.MovementFilter{SellerID: seller, DocumentID: r.ID})
			require.NoError(t, err)
			assert.Len(t, movs, tc.movements)
			batches, err := f.store.Repos().Batches.ListByProduct(ctx, seller, milk)
			require.NoError(t, err)
			assert.Len(t, batches, tc.movements)
		})
	}
}
