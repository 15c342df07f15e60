package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	seller = "seller-1"
	milk   = "prod-milk"
	soap   = "prod-soap"
)

var (
	shop    = entity.ShopLocation("shop-1")
	counter = entity.Actor{Type: entity.ActorTypeEmployee, ID: "emp-7", Name: "Marta"}
)

type fixture struct {
	store  *memory.Store
	engine *inventory.QuantityEngine
	uc     *audit.UseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	store.PutProduct(entity.Product{ID: milk, SellerID: seller, Name: "Leche", Category: "lacteos", Conditions: entity.DefaultStorageConditions()})
	store.PutProduct(entity.Product{ID: soap, SellerID: seller, Name: "Jabón", Category: "aseo", Conditions: entity.DefaultStorageConditions()})
	store.PutLocation(entity.LocationInfo{Location: shop, SellerID: seller, Name: "Centro", Profile: entity.StorageProfile{Temperature: 20, Humidity: 50}})

	repos := store.Repos()
	ledger := inventory.NewLedger(repos.Movements, zerolog.Nop())
	engine := inventory.NewQuantityEngine(repos.Locations, ledger, zerolog.Nop())
	uc := audit.NewUseCase(store, repos.Audits, engine, store, store, zerolog.Nop(), 3)
	return fixture{store: store, engine: engine, uc: uc}
}

func (f fixture) seed(t *testing.T, product string, qty int64, days int) *entity.BatchLocation {
	t.Helper()
	bl, err := f.store.SeedStock(context.Background(), f.engine, memory.SeedLot{
		SellerID:   seller,
		ProductID:  product,
		Location:   shop,
		Quantity:   decimal.NewFromInt(qty),
		Expiration: time.Now().UTC().AddDate(0, 0, days),
	})
	require.NoError(t, err)
	return bl
}

func (f fixture) started(t *testing.T, filter dto.AuditFilterDTO) *dto.AuditResponse {
	t.Helper()
	ctx := context.Background()
	a, err := f.uc.Create(ctx, seller, counter, dto.CreateAuditRequest{Location: dto.FromLocation(shop), Filter: filter})
	require.NoError(t, err)
	a, err = f.uc.Start(ctx, seller, a.ID, counter)
	require.NoError(t, err)
	return a
}

func (f fixture) count(t *testing.T, id string, index int, actual int64) *dto.AuditResponse {
	t.Helper()
	a, err := f.uc.CountItem(context.Background(), seller, id, index, counter, dto.CountItemRequest{ActualQuantity: decimal.NewFromInt(actual)})
	require.NoError(t, err)
	return a
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: la foto incluye registros en cero para poder corregir stock fantasma.
func TestStart_FotoIncluyeRegistrosEnCero(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 30)
	f.seed(t, soap, 0, 300)

	a := f.started(t, dto.AuditFilterDTO{})
	assert.Equal(t, entity.AuditStatusInProgress, a.Status)
	require.Len(t, a.Items, 2)
	assert.Equal(t, 2, a.TotalItems)
	for _, it := range a.Items {
		assert.Equal(t, entity.AuditItemPending, it.Status)
		assert.NotEmpty(t, it.BatchNumber)
	}
}

func TestStart_DosVecesEsTransicionInvalida(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})

	_, err := f.uc.Start(context.Background(), seller, a.ID, counter)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStart_Filtros(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 3)
	f.seed(t, soap, 2, 300)

	byProduct := f.started(t, dto.AuditFilterDTO{ProductIDs: []string{soap}})
	require.Len(t, byProduct.Items, 1)
	assert.Equal(t, soap, byProduct.Items[0].ProductID)

	byCategory := f.started(t, dto.AuditFilterDTO{Category: "LACTEOS"})
	require.Len(t, byCategory.Items, 1)
	assert.Equal(t, "Leche", byCategory.Items[0].ProductName)

	week := 7
	expiring := f.started(t, dto.AuditFilterDTO{ExpiringWithinDays: &week})
	require.Len(t, expiring.Items, 1)
	assert.Equal(t, milk, expiring.Items[0].ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo
// ──────────────────────────────────────────────────────────────────────────────

func TestCount_DiferenciasYAgregados(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 30)
	f.seed(t, soap, 2, 300)
	a := f.started(t, dto.AuditFilterDTO{})
	// la foto va ordenada por vencimiento efectivo: leche primero
	require.Equal(t, milk, a.Items[0].ProductID)

	a = f.count(t, a.ID, 0, 3)
	a = f.count(t, a.ID, 1, 6)

	assert.Equal(t, 2, a.CountedItems)
	assert.Equal(t, 2, a.DiscrepancyItems)
	assert.True(t, a.TotalSurplus.Equal(qty(4)))
	assert.True(t, a.TotalShortage.Equal(qty(2)))

	a, err := f.uc.SkipItem(context.Background(), seller, a.ID, 1, counter, "estante bloqueado")
	require.NoError(t, err)
	assert.Equal(t, entity.AuditItemSkipped, a.Items[1].Status)
	assert.Nil(t, a.Items[1].ActualQuantity)
	assert.Equal(t, 1, a.CountedItems)
	assert.Equal(t, 1, a.DiscrepancyItems)
	assert.True(t, a.TotalSurplus.IsZero())
	assert.True(t, a.TotalShortage.Equal(qty(2)))
}

func TestCount_TiposDeDiferencia(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})

	a = f.count(t, a.ID, 0, 5)
	assert.Equal(t, entity.DiscrepancyNone, a.Items[0].DiscrepancyType)
	a = f.count(t, a.ID, 0, 7)
	assert.Equal(t, entity.DiscrepancySurplus, a.Items[0].DiscrepancyType)
	a = f.count(t, a.ID, 0, 1)
	assert.Equal(t, entity.DiscrepancyShortage, a.Items[0].DiscrepancyType)
	assert.True(t, a.Items[0].Discrepancy.Equal(qty(-4)))
	require.NotNil(t, a.Items[0].CountedBy)
	assert.Equal(t, counter.ID, a.Items[0].CountedBy.ID)
}

func TestCount_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)

	draft, err := f.uc.Create(ctx, seller, counter, dto.CreateAuditRequest{Location: dto.FromLocation(shop)})
	require.NoError(t, err)
	_, err = f.uc.CountItem(ctx, seller, draft.ID, 0, counter, dto.CountItemRequest{ActualQuantity: qty(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sin iniciar")

	a := f.started(t, dto.AuditFilterDTO{})
	_, err = f.uc.CountItem(ctx, seller, a.ID, 1, counter, dto.CountItemRequest{ActualQuantity: qty(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.CountItem(ctx, seller, a.ID, 0, counter, dto.CountItemRequest{ActualQuantity: qty(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Caso 2: un conteo inválido dentro del lote descarta todos los conteos.
func TestBulkCount_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})

	_, err := f.uc.BulkCountItems(ctx, seller, a.ID, counter, dto.BulkCountRequest{Counts: []dto.BulkCountEntry{
		{Index: 0, ActualQuantity: qty(4)},
		{Index: 9, ActualQuantity: qty(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.uc.Get(ctx, seller, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditItemPending, got.Items[0].Status)

	got, err = f.uc.BulkCountItems(ctx, seller, a.ID, counter, dto.BulkCountRequest{Counts: []dto.BulkCountEntry{{Index: 0, ActualQuantity: qty(4)}}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.CountedItems)
}

func TestRecomputeAggregates_Idempotente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})
	a = f.count(t, a.ID, 0, 2)

	again, err := f.uc.RecomputeAggregates(context.Background(), seller, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.CountedItems, again.CountedItems)
	assert.True(t, a.TotalShortage.Equal(again.TotalShortage))
	assert.True(t, again.TotalShortage.Equal(qty(3)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre y ajustes
// ──────────────────────────────────────────────────────────────────────────────

// Caso 3: esperado 5, contado 3 → un movimiento de −2 y el BatchLocation queda en 3.
func TestApplyCorrections_FaltanteDeDos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bl := f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})
	a = f.count(t, a.ID, 0, 3)

	_, err := f.uc.ApplyCorrections(ctx, seller, a.ID, counter)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sin completar")

	done, err := f.uc.Complete(ctx, seller, a.ID, counter, false)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusCompleted, done.Audit.Status)
	assert.Empty(t, done.Adjustments)

	res, err := f.uc.ApplyCorrections(ctx, seller, a.ID, counter)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusApplied, res.Audit.Status)
	require.Len(t, res.Adjustments, 1)
	adj := res.Adjustments[0]
	assert.Equal(t, entity.MovementTypeAdjustmentMinus, adj.Type)
	assert.True(t, adj.QuantityChange.Equal(qty(-2)))
	assert.True(t, adj.BalanceAfter.Equal(qty(3)))
	assert.Equal(t, adj.MovementID, res.Audit.Items[0].CorrectionMovementID)

	cur, err := f.store.Repos().Locations.GetByID(ctx, bl.ID)
	require.NoError(t, err)
	assert.True(t, cur.Quantity.Equal(qty(3)))

	_, err = f.uc.ApplyCorrections(ctx, seller, a.ID, counter)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "ya aplicada")

	movs, err := f.store.Repos().Movements.List(ctx, entity.MovementFilter{SellerID: seller, DocumentID: a.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestComplete_EncadenaAjustes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)
	f.seed(t, soap, 1, 300)
	a := f.started(t, dto.AuditFilterDTO{})
	for i, it := range a.Items {
		actual := it.ExpectedQuantity.IntPart()
		if it.ProductID == soap {
			actual += 2
		}
		a = f.count(t, a.ID, i, actual)
	}

	res, err := f.uc.Complete(ctx, seller, a.ID, counter, true)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusApplied, res.Audit.Status)
	require.Len(t, res.Adjustments, 1, "solo la línea con diferencia")
	assert.Equal(t, entity.MovementTypeAdjustmentPlus, res.Adjustments[0].Type)
	assert.True(t, res.Adjustments[0].BalanceAfter.Equal(qty(3)))
}

func TestApplyCorrections_LineasOmitidasNoAjustan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})
	a = f.count(t, a.ID, 0, 1)
	_, err := f.uc.SkipItem(ctx, seller, a.ID, 0, counter, "")
	require.NoError(t, err)

	res, err := f.uc.Complete(ctx, seller, a.ID, counter, true)
	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación y creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_AntesDeAplicar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)

	a := f.started(t, dto.AuditFilterDTO{})
	out, err := f.uc.Cancel(ctx, seller, a.ID, counter, "recuento repetido")
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusCancelled, out.Status)
	assert.Contains(t, out.Comment, "recuento repetido")

	_, err = f.uc.Cancel(ctx, seller, a.ID, counter, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_AplicadaNoSePuede(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)
	a := f.started(t, dto.AuditFilterDTO{})
	f.count(t, a.ID, 0, 4)
	_, err := f.uc.Complete(ctx, seller, a.ID, counter, true)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, seller, a.ID, counter, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Caso 2: la primera línea (sobrante) se aplica y la segunda (faltante) ya no tiene stock; la
// auditoría queda COMPLETED con un ajuste y aun así se puede cancelar conservando ese ajuste.
func TestCancel_TrasAplicacionParcial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, milk, 5, 30)
	f.seed(t, soap, 5, 300)
	a := f.started(t, dto.AuditFilterDTO{})
	require.Len(t, a.Items, 2)
	f.count(t, a.ID, 0, 7)
	f.count(t, a.ID, 1, 1)
	_, err := f.uc.Complete(ctx, seller, a.ID, counter, false)
	require.NoError(t, err)

	// Merma posterior al conteo: quedan 2 y el ajuste de -4 ya no cabe.
	err = f.store.Run(ctx, func(repos inventory.Repos) error {
		_, _, err := f.engine.Apply(ctx, repos, inventory.ChangeRequest{
			BatchLocationID: a.Items[1].BatchLocationID,
			Delta:           qty(-3),
			Type:            entity.MovementTypeWriteOff,
			Document:        entity.DocumentRef{Type: entity.DocumentTypeManual, ID: "merma-1", Number: "MAN-1"},
			Actor:           counter,
		})
		return err
	})
	require.NoError(t, err)

	_, err = f.uc.ApplyCorrections(ctx, seller, a.ID, counter)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	partial, err := f.uc.Get(ctx, seller, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusCompleted, partial.Status)
	assert.NotEmpty(t, partial.Items[0].CorrectionMovementID)
	assert.Empty(t, partial.Items[1].CorrectionMovementID)

	out, err := f.uc.Cancel(ctx, seller, a.ID, counter, "merma durante el conteo")
	require.NoError(t, err)
	assert.Equal(t, entity.AuditStatusCancelled, out.Status)
	assert.Contains(t, out.Comment, "merma durante el conteo")
	assert.Contains(t, out.Comment, "Ajustes conservados en líneas 1")
	assert.Equal(t, partial.Items[0].CorrectionMovementID, out.Items[0].CorrectionMovementID)

	movs, err := f.store.Repos().Movements.List(ctx, entity.MovementFilter{SellerID: seller, DocumentID: a.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1, "el ajuste aplicado sigue en el libro")
	assert.Equal(t, entity.MovementTypeAdjustmentPlus, movs[0].Type)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, seller, counter, dto.CreateAuditRequest{Type: "MENSUAL", Location: dto.FromLocation(shop)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, seller, counter, dto.CreateAuditRequest{Location: dto.FromLocation(entity.WarehouseLocation("x"))})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	a, err := f.uc.Create(ctx, seller, counter, dto.CreateAuditRequest{Type: "control", Location: dto.FromLocation(shop)})
	require.NoError(t, err)
	assert.Equal(t, entity.AuditTypeControl, a.Type)
	assert.Equal(t, entity.AuditStatusDraft, a.Status)
	assert.Empty(t, a.Items)
	assert.Contains(t, a.DocumentNumber, "AUD-")

	_, err = f.uc.Get(ctx, "seller-2", a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
