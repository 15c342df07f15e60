package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/transfer"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	seller  = "seller-1"
	product = "prod-milk"
)

var (
	warehouse = entity.WarehouseLocation("wh-1")
	shop      = entity.ShopLocation("shop-1")
	hotShop   = entity.ShopLocation("shop-hot")
	employee  = entity.Actor{Type: entity.ActorTypeEmployee, ID: "emp-1", Name: "Ana"}
)

type fixture struct {
	store *memory.Store
	uc    *transfer.UseCase
	batch string // lote sembrado con 10 unidades en la bodega
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	store.PutProduct(entity.Product{ID: product, SellerID: seller, Name: "Leche", Conditions: entity.DefaultStorageConditions()})
	store.PutLocation(entity.LocationInfo{Location: warehouse, SellerID: seller, Name: "Bodega", Profile: entity.StorageProfile{Temperature: 18, Humidity: 50}})
	store.PutLocation(entity.LocationInfo{Location: shop, SellerID: seller, Name: "Centro", Profile: entity.StorageProfile{Temperature: 20, Humidity: 50}})
	store.PutLocation(entity.LocationInfo{Location: hotShop, SellerID: seller, Name: "Playa", Profile: entity.StorageProfile{Temperature: 32, Humidity: 50}})

	repos := store.Repos()
	ledger := inventory.NewLedger(repos.Movements, zerolog.Nop())
	engine := inventory.NewQuantityEngine(repos.Locations, ledger, zerolog.Nop())
	bl, err := store.SeedStock(ctx, engine, memory.SeedLot{
		SellerID:   seller,
		ProductID:  product,
		Location:   warehouse,
		Quantity:   decimal.NewFromInt(10),
		Expiration: time.Now().UTC().AddDate(0, 0, 30),
	})
	require.NoError(t, err)

	uc := transfer.NewUseCase(store, repos.Transfers, engine, store, store, zerolog.Nop(), 3, transfer.DefaultFreshnessPenalty)
	return fixture{store: store, uc: uc, batch: bl.BatchID}
}

func (f fixture) create(t *testing.T, target entity.Location, qty int64) *dto.TransferResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), seller, employee, dto.CreateTransferRequest{
		Source: dto.FromLocation(warehouse),
		Target: dto.FromLocation(target),
		Items:  []dto.TransferItemRequest{{BatchID: f.batch, RequestedQuantity: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	return out
}

func (f fixture) quantityAt(t *testing.T, loc entity.Location) decimal.Decimal {
	t.Helper()
	bl, err := f.store.Repos().Locations.GetByKey(context.Background(), f.batch, loc)
	require.NoError(t, err)
	if bl == nil {
		return decimal.Zero
	}
	return bl.Quantity
}

func (f fixture) movements(t *testing.T, docID, typ string) []*entity.Movement {
	t.Helper()
	list, err := f.store.Repos().Movements.List(context.Background(), entity.MovementFilter{
		SellerID: seller, DocumentID: docID, Types: []string{typ},
	})
	require.NoError(t, err)
	return list
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Envío y recepción
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: 4 de 10 de bodega a tienda; el total entre ambas ubicaciones no cambia.
func TestSendReceive_ConservaCantidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 4)
	assert.Equal(t, entity.TransferTypeWarehouseToShop, tr.Type)

	sent, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusSent, sent.Status)
	require.NotNil(t, sent.Items[0].SentQuantity)
	assert.True(t, sent.Items[0].SentQuantity.Equal(qty(4)))
	assert.True(t, f.quantityAt(t, warehouse).Equal(qty(6)))

	out := f.movements(t, tr.ID, entity.MovementTypeTransferOut)
	require.Len(t, out, 1)
	assert.True(t, out[0].QuantityChange.Equal(qty(-4)))
	assert.True(t, out[0].BalanceAfter.Equal(qty(6)))

	received, err := f.uc.Receive(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusReceived, received.Status)
	assert.True(t, f.quantityAt(t, shop).Equal(qty(4)))

	in := f.movements(t, tr.ID, entity.MovementTypeTransferIn)
	require.Len(t, in, 1)
	assert.True(t, in[0].BalanceBefore.IsZero())
	assert.True(t, in[0].BalanceAfter.Equal(qty(4)))

	total := f.quantityAt(t, warehouse).Add(f.quantityAt(t, shop))
	assert.True(t, total.Equal(qty(10)))

	batch, err := f.store.Repos().Batches.GetByID(ctx, f.batch)
	require.NoError(t, err)
	assert.True(t, batch.CurrentQuantity.Equal(qty(10)))
	assert.Equal(t, shop, batch.CurrentLocation)
}

func TestSend_StockInsuficienteNoTocaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 11)

	_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.quantityAt(t, warehouse).Equal(qty(10)))
	assert.Empty(t, f.movements(t, tr.ID, entity.MovementTypeTransferOut))
	got, err := f.uc.Get(ctx, seller, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)
}

// Caso 2: dos líneas, la segunda sin stock; la primera tampoco queda enviada.
func TestSend_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 6)
	_, err := f.uc.AddItem(ctx, seller, tr.ID, dto.TransferItemRequest{BatchID: f.batch, RequestedQuantity: qty(6)})
	require.NoError(t, err)

	_, err = f.uc.Send(ctx, seller, tr.ID, employee, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.quantityAt(t, warehouse).Equal(qty(10)))
}

func TestSend_OverrideDeCantidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 4)

	_, err := f.uc.Send(ctx, seller, tr.ID, employee, []dto.QuantityOverride{{Index: 3, Quantity: qty(1)}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sent, err := f.uc.Send(ctx, seller, tr.ID, employee, []dto.QuantityOverride{{Index: 0, Quantity: qty(2)}})
	require.NoError(t, err)
	assert.True(t, sent.Items[0].SentQuantity.Equal(qty(2)))
	assert.True(t, f.quantityAt(t, warehouse).Equal(qty(8)))
}

// Caso 3: recibir menos de lo enviado deja la diferencia en el comentario, sin baja automática.
func TestReceive_DiferenciaQuedaEnComentario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 4)
	_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)

	out, err := f.uc.Receive(ctx, seller, tr.ID, employee, []dto.QuantityOverride{{Index: 0, Quantity: qty(3)}})
	require.NoError(t, err)
	assert.True(t, out.Items[0].ReceivedQuantity.Equal(qty(3)))
	assert.Contains(t, out.Items[0].Comment, "recibido 3 de 4")
	assert.True(t, f.quantityAt(t, shop).Equal(qty(3)))
	assert.Empty(t, f.movements(t, tr.ID, entity.MovementTypeWriteOff))
}

func TestReceive_SegundaLlegadaSumaAlMismoRegistro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		tr := f.create(t, shop, 2)
		_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
		require.NoError(t, err)
		_, err = f.uc.Receive(ctx, seller, tr.ID, employee, nil)
		require.NoError(t, err)
	}
	bls, err := f.store.Repos().Locations.ListByBatch(ctx, f.batch)
	require.NoError(t, err)
	assert.Len(t, bls, 2, "bodega y tienda")
	assert.True(t, f.quantityAt(t, shop).Equal(qty(4)))
}

func TestReceive_SoloDesdeEnviado(t *testing.T) {
	f := newFixture(t)
	tr := f.create(t, shop, 1)
	_, err := f.uc.Receive(context.Background(), seller, tr.ID, employee, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ─── frescura en destino ──────────────────────────────────────────────────────

func TestSend_PenalizacionDeManipulacion(t *testing.T) {
	f := newFixture(t)
	tr := f.create(t, shop, 1)
	sent, err := f.uc.Send(context.Background(), seller, tr.ID, employee, nil)
	require.NoError(t, err)

	it := sent.Items[0]
	assert.InDelta(t, 1.0, it.DestinationCoefficient, 1e-9)
	require.NotNil(t, it.DestinationFreshness)
	assert.InDelta(t, 9.9, *it.DestinationFreshness, 0.01)
}

// Caso 4: el destino fuera de rango de temperatura acelera la degradación.
func TestSend_DestinoSeveroUsaCoeficienteDelDirectorio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, hotShop, 2)
	sent, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)

	it := sent.Items[0]
	assert.InDelta(t, 1.5, it.DestinationCoefficient, 1e-9)
	require.NotNil(t, it.DestinationFreshness)
	assert.Less(t, *it.DestinationFreshness, 9.9)
	require.NotNil(t, it.DestinationExpiration)
	assert.True(t, it.DestinationExpiration.Before(time.Now().UTC().AddDate(0, 0, 25)))

	_, err = f.uc.Receive(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	dest, err := f.store.Repos().Locations.GetByKey(ctx, f.batch, hotShop)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, dest.DegradationCoefficient, 1e-9)
	assert.InDelta(t, *it.DestinationFreshness, dest.Freshness, 1e-9)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_EnviadoDevuelveAlOrigen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 4)
	_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)

	out, err := f.uc.Cancel(ctx, seller, tr.ID, employee, "camión averiado")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, out.Status)
	assert.Contains(t, out.Comment, "camión averiado")
	assert.True(t, f.quantityAt(t, warehouse).Equal(qty(10)))

	reversal := f.movements(t, tr.ID, entity.MovementTypeTransferIn)
	require.Len(t, reversal, 1)
	assert.Equal(t, warehouse, reversal[0].Location)
	assert.True(t, reversal[0].BalanceAfter.Equal(qty(10)))
}

func TestCancel_BorradorSinMovimientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 4)

	_, err := f.uc.Cancel(ctx, seller, tr.ID, employee, "")
	require.NoError(t, err)
	list, err := f.store.Repos().Movements.List(ctx, entity.MovementFilter{SellerID: seller, DocumentID: tr.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCancel_RecibidoNoSePuede(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 1)
	_, err := f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	_, err = f.uc.Receive(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, seller, tr.ID, employee, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, seller, employee, dto.CreateTransferRequest{
		Source: dto.FromLocation(warehouse), Target: dto.FromLocation(warehouse),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "origen igual a destino")

	_, err = f.uc.Create(ctx, seller, employee, dto.CreateTransferRequest{
		Source: dto.FromLocation(shop), Target: dto.FromLocation(warehouse),
		Items: []dto.TransferItemRequest{{BatchID: f.batch, RequestedQuantity: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el lote no está en el origen")

	_, err = f.uc.Create(ctx, "seller-2", employee, dto.CreateTransferRequest{
		Source: dto.FromLocation(warehouse), Target: dto.FromLocation(shop),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "ubicaciones de otro vendedor")
}

func TestCreate_TipoPorUbicaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr, err := f.uc.Create(ctx, seller, employee, dto.CreateTransferRequest{
		Source: dto.FromLocation(shop), Target: dto.FromLocation(hotShop),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferTypeShopToShop, tr.Type)
	assert.Contains(t, tr.DocumentNumber, "TRF-")

	_, err = f.uc.Send(ctx, seller, tr.ID, employee, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")
}

func TestItems_SoloEnBorrador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, shop, 1)

	upd, err := f.uc.UpdateItem(ctx, seller, tr.ID, 0, dto.TransferItemRequest{BatchID: f.batch, RequestedQuantity: qty(3)})
	require.NoError(t, err)
	assert.True(t, upd.Items[0].RequestedQuantity.Equal(qty(3)))
	assert.Equal(t, "Leche", upd.Items[0].ProductName)

	_, err = f.uc.RemoveItem(ctx, seller, tr.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Send(ctx, seller, tr.ID, employee, nil)
	require.NoError(t, err)
	_, err = f.uc.RemoveItem(ctx, seller, tr.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
