package transfer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/transfer"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

// spyTx cuenta cómo se lee el traslado dentro de cada transacción.
type spyTx struct {
	store    *memory.Store
	locked   int
	unlocked int
}

func (s *spyTx) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return s.store.Run(ctx, func(repos inventory.Repos) error {
		repos.Transfers = spyTransfers{TransferRepository: repos.Transfers, tx: s}
		return fn(repos)
	})
}

type spyTransfers struct {
	repository.TransferRepository
	tx *spyTx
}

func (r spyTransfers) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	r.tx.unlocked++
	return r.TransferRepository.GetByID(ctx, id)
}

func (r spyTransfers) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	r.tx.locked++
	return r.TransferRepository.GetForUpdate(ctx, id)
}

// Caso 1: envío, recepción, edición y cancelación leen el traslado con la fila bloqueada.
func TestTransacciones_LeenElDocumentoBloqueado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spy := &spyTx{store: f.store}
	repos := f.store.Repos()
	ledger := inventory.NewLedger(repos.Movements, zerolog.Nop())
	engine := inventory.NewQuantityEngine(repos.Locations, ledger, zerolog.Nop())
	uc := transfer.NewUseCase(spy, repos.Transfers, engine, f.store, f.store, zerolog.Nop(), 3, transfer.DefaultFreshnessPenalty)

	tr := f.create(t, shop, 2)
	_, err := uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	_, err = uc.Receive(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)

	other := f.create(t, shop, 1)
	_, err = uc.RemoveItem(ctx, seller, other.ID, 0)
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, seller, other.ID, employee, "")
	require.NoError(t, err)

	assert.Zero(t, spy.unlocked)
	assert.Equal(t, 4, spy.locked)
}

// Caso 2: la misma transición lanzada varias veces a la vez mueve stock una sola vez.
func TestConcurrencia_UnaSolaTransicion(t *testing.T) {
	cases := []struct {
		name      string
		sent      bool
		op        func(f fixture, id string) error
		movements int // del documento al terminar
		warehouse int64
	}{
		{
			name: "enviar",
			op: func(f fixture, id string) error {
				_, err := f.uc.Send(context.Background(), seller, id, employee, nil)
				return err
			},
			movements: 1,
			warehouse: 6,
		},
		{
			name: "recibir",
			sent: true,
			op: func(f fixture, id string) error {
				_, err := f.uc.Receive(context.Background(), seller, id, employee, nil)
				return err
			},
			movements: 2,
			warehouse: 6,
		},
		{
			name: "cancelar enviado",
			sent: true,
			op: func(f fixture, id string) error {
				_, err := f.uc.Cancel(context.Background(), seller, id, employee, "")
				return err
			},
			movements: 2,
			warehouse: 10,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			tr := f.create(t, shop, 4)
			if tc.sent {
				_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
				require.NoError(t, err)
			}

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
					errs[i] = tc.op(f, tr.ID)
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

			movs, err := f.store.Repos().Movements.List(ctx, entity.MovementFilter{SellerID: seller, DocumentID: tr.ID})
			require.NoError(t, err)
			assert.Len(t, movs, tc.movements)
			assert.True(t, f.quantityAt(t, warehouse).Equal(qty(tc.warehouse)))
		})
	}
}
