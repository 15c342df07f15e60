// Package transfer implementa el flujo de traslados: DRAFT → SENT → RECEIVED, DRAFT|SENT → CANCELLED.
package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	shelflife "github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// DefaultFreshnessPenalty puntos de frescura que se descuentan por manipulación en cada envío.
const DefaultFreshnessPenalty = 0.1

// UseCase casos de uso de traslados.
type UseCase struct {
	tx        inventory.TxRunner
	repo      repository.TransferRepository
	engine    *inventory.QuantityEngine
	catalog   inventory.Catalog
	directory inventory.LocationDirectory
	log       zerolog.Logger
	retries   int
	penalty   float64
	now       func() time.Time
}

// NewUseCase construye el caso de uso. penalty < 0 usa DefaultFreshnessPenalty.
func NewUseCase(
	tx inventory.TxRunner,
	repo repository.TransferRepository,
	engine *inventory.QuantityEngine,
	catalog inventory.Catalog,
	directory inventory.LocationDirectory,
	log zerolog.Logger,
	retries int,
	penalty float64,
) *UseCase {
	if penalty < 0 {
		penalty = DefaultFreshnessPenalty
	}
	return &UseCase{
		tx:        tx,
		repo:      repo,
		engine:    engine,
		catalog:   catalog,
		directory: directory,
		log:       log.With().Str("component", "transfer").Logger(),
		retries:   retries,
		penalty:   penalty,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDocumentNumber siguiente número TRF-YYYYMMDD-NNNN del vendedor, sin reservarlo.
func (uc *UseCase) GenerateDocumentNumber(ctx context.Context, sellerID string) (string, error) {
	if sellerID == "" {
		return "", fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	return inventory.NextDocumentNumber(ctx, uc.repo, sellerID, entity.TransferNumberPrefix, uc.now())
}

// Create crea el traslado en DRAFT. El tipo se deriva de las ubicaciones de origen y destino.
func (uc *UseCase) Create(ctx context.Context, sellerID string, actor entity.Actor, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	source, err := in.Source.ToLocation()
	if err != nil {
		return nil, fmt.Errorf("origen: %v: %w", err, domain.ErrInvalidInput)
	}
	target, err := in.Target.ToLocation()
	if err != nil {
		return nil, fmt.Errorf("destino: %v: %w", err, domain.ErrInvalidInput)
	}
	if source == target {
		return nil, fmt.Errorf("origen y destino iguales (%s): %w", source, domain.ErrInvalidInput)
	}
	if _, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, source); err != nil {
		return nil, err
	}
	if _, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, target); err != nil {
		return nil, err
	}

	now := uc.now()
	t := &entity.Transfer{
		ID:        uuid.New().String(),
		SellerID:  sellerID,
		Type:      entity.ClassifyTransfer(source, target),
		Status:    entity.TransferStatusDraft,
		Source:    source,
		Target:    target,
		Comment:   in.Comment,
		Items:     make([]entity.TransferItem, 0, len(in.Items)),
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.Run(ctx, func(repos inventory.Repos) error {
		for _, req := range in.Items {
			it, err := uc.buildItem(ctx, repos, t, req)
			if err != nil {
				return err
			}
			t.Items = append(t.Items, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.DocumentNumber != "" {
		if !strings.HasPrefix(in.DocumentNumber, entity.TransferNumberPrefix+"-") {
			return nil, fmt.Errorf("número %q: %w", in.DocumentNumber, domain.ErrInvalidInput)
		}
		t.DocumentNumber = in.DocumentNumber
		if err := uc.repo.Create(ctx, t); err != nil {
			return nil, err
		}
	} else {
		_, err := inventory.CreateWithNumber(ctx, uc.repo, sellerID, entity.TransferNumberPrefix, now, uc.retries, func(number string) error {
			t.DocumentNumber = number
			return uc.repo.Create(ctx, t)
		})
		if err != nil {
			return nil, err
		}
	}

	uc.log.Info().Str("transfer_id", t.ID).Str("number", t.DocumentNumber).Str("type", t.Type).Msg("traslado creado")
	return toTransferResponse(t), nil
}

// Get obtiene un traslado del vendedor.
func (uc *UseCase) Get(ctx context.Context, sellerID, id string) (*dto.TransferResponse, error) {
	t, err := uc.load(ctx, uc.repo, sellerID, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// List lista traslados del vendedor, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, sellerID, status string, page dto.PageRequest) (*dto.TransferListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.DocumentListFilter{
		SellerID: sellerID, Status: strings.ToUpper(status), Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// AddItem agrega una línea (solo DRAFT).
func (uc *UseCase) AddItem(ctx context.Context, sellerID, id string, in dto.TransferItemRequest) (*dto.TransferResponse, error) {
	return uc.mutateDraft(ctx, sellerID, id, func(repos inventory.Repos, t *entity.Transfer) error {
		it, err := uc.buildItem(ctx, repos, t, in)
		if err != nil {
			return err
		}
		t.Items = append(t.Items, it)
		return nil
	})
}

// UpdateItem reemplaza la línea index (solo DRAFT).
func (uc *UseCase) UpdateItem(ctx context.Context, sellerID, id string, index int, in dto.TransferItemRequest) (*dto.TransferResponse, error) {
	return uc.mutateDraft(ctx, sellerID, id, func(repos inventory.Repos, t *entity.Transfer) error {
		if err := t.CheckIndex(index); err != nil {
			return inventory.IndexError(err)
		}
		it, err := uc.buildItem(ctx, repos, t, in)
		if err != nil {
			return err
		}
		t.Items[index] = it
		return nil
	})
}

// RemoveItem elimina la línea index (solo DRAFT).
func (uc *UseCase) RemoveItem(ctx context.Context, sellerID, id string, index int) (*dto.TransferResponse, error) {
	return uc.mutateDraft(ctx, sellerID, id, func(_ inventory.Repos, t *entity.Transfer) error {
		if err := t.CheckIndex(index); err != nil {
			return inventory.IndexError(err)
		}
		t.Items = append(t.Items[:index], t.Items[index+1:]...)
		return nil
	})
}

// Send descuenta el origen de cada línea con un TRANSFER_OUT y guarda en la línea la frescura,
// el vencimiento y el coeficiente recalculados para el destino. Todo en una transacción.
func (uc *UseCase) Send(ctx context.Context, sellerID, id string, actor entity.Actor, overrides []dto.QuantityOverride) (*dto.TransferResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		t, err := uc.lock(ctx, repos.Transfers, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(t.Status, entity.TransferStatusDraft); err != nil {
			return err
		}
		if len(t.Items) == 0 {
			return fmt.Errorf("traslado %s sin líneas: %w", t.DocumentNumber, domain.ErrInvalidInput)
		}
		quantities, err := resolveOverrides(t, overrides)
		if err != nil {
			return err
		}
		target, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, t.Target)
		if err != nil {
			return err
		}

		now := uc.now()
		for i := range t.Items {
			it := &t.Items[i]
			qty := it.RequestedQuantity
			if q, ok := quantities[i]; ok {
				qty = q
			}
			if err := uc.sendItem(ctx, repos, t, it, qty, target.Profile, actor, now); err != nil {
				return fmt.Errorf("línea %d: %w", i, err)
			}
		}

		t.Status = entity.TransferStatusSent
		t.SentBy = &actor
		t.SentAt = &now
		t.UpdatedAt = now
		out = t
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", id).Str("number", out.DocumentNumber).Msg("traslado enviado")
	return toTransferResponse(out), nil
}

func (uc *UseCase) sendItem(
	ctx context.Context,
	repos inventory.Repos,
	t *entity.Transfer,
	it *entity.TransferItem,
	qty decimal.Decimal,
	profile entity.StorageProfile,
	actor entity.Actor,
	now time.Time,
) error {
	if err := inventory.RequireNonNegative("sent_quantity", qty); err != nil {
		return err
	}
	src, err := repos.Locations.GetByKey(ctx, it.BatchID, t.Source)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("lote %s en %s: %w", it.BatchNumber, t.Source, domain.ErrNotFound)
	}
	if src.Quantity.LessThan(qty) {
		return fmt.Errorf("lote %s en %s tiene %s, se envían %s: %w", it.BatchNumber, t.Source, src.Quantity, qty, domain.ErrInsufficientStock)
	}

	product, err := inventory.ResolveProduct(ctx, uc.catalog, it.ProductID)
	if err != nil {
		return err
	}
	coef := shelflife.CoefficientAt(product.Conditions, profile)
	freshness := shelflife.ApplyPenalty(
		shelflife.RecalculateForNewLocation(src.Freshness, shelflife.DaysElapsed(src.ArrivedAt, now), src.DegradationCoefficient, coef),
		uc.penalty,
	)
	expiration := shelflife.RecalculateExpiration(src.EffectiveExpiration, now, src.DegradationCoefficient, coef)

	if qty.IsPositive() {
		if _, _, err := uc.engine.Apply(ctx, repos, inventory.ChangeRequest{
			BatchLocationID: src.ID,
			Delta:           qty.Neg(),
			Type:            entity.MovementTypeTransferOut,
			Document:        t.Ref(),
			Actor:           actor,
			Comment:         "hacia " + t.Target.String(),
		}); err != nil {
			return err
		}
	}

	sent := qty
	it.SentQuantity = &sent
	it.DestinationCoefficient = coef
	it.DestinationExpiration = &expiration
	it.DestinationFreshness = &freshness
	return nil
}

// Receive acredita el destino de cada línea con un TRANSFER_IN (creando el BatchLocation si es la
// primera llegada del lote) y mueve el puntero de ubicación del lote. Una diferencia contra lo
// enviado queda en el comentario de la línea; no genera bajas automáticas.
func (uc *UseCase) Receive(ctx context.Context, sellerID, id string, actor entity.Actor, overrides []dto.QuantityOverride) (*dto.TransferResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		t, err := uc.lock(ctx, repos.Transfers, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(t.Status, entity.TransferStatusSent); err != nil {
			return err
		}
		quantities, err := resolveOverrides(t, overrides)
		if err != nil {
			return err
		}

		now := uc.now()
		for i := range t.Items {
			it := &t.Items[i]
			sent := decimal.Zero
			if it.SentQuantity != nil {
				sent = *it.SentQuantity
			}
			qty := sent
			if q, ok := quantities[i]; ok {
				qty = q
			}
			if err := uc.receiveItem(ctx, repos, t, it, qty, actor, now); err != nil {
				return fmt.Errorf("línea %d: %w", i, err)
			}
			if !qty.Equal(sent) {
				it.Comment = appendNote(it.Comment, fmt.Sprintf("recibido %s de %s enviado", qty, sent))
				uc.log.Warn().Str("transfer_id", t.ID).Int("index", i).
					Str("sent", sent.String()).Str("received", qty.String()).Msg("diferencia en recepción de traslado")
			}
		}

		t.Status = entity.TransferStatusReceived
		t.ReceivedBy = &actor
		t.ReceivedAt = &now
		t.UpdatedAt = now
		out = t
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", id).Str("number", out.DocumentNumber).Msg("traslado recibido")
	return toTransferResponse(out), nil
}

func (uc *UseCase) receiveItem(
	ctx context.Context,
	repos inventory.Repos,
	t *entity.Transfer,
	it *entity.TransferItem,
	qty decimal.Decimal,
	actor entity.Actor,
	now time.Time,
) error {
	if err := inventory.RequireNonNegative("received_quantity", qty); err != nil {
		return err
	}
	received := qty
	it.ReceivedQuantity = &received
	if qty.IsZero() {
		return nil
	}

	batch, err := repos.Batches.GetByID(ctx, it.BatchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("lote %s: %w", it.BatchID, domain.ErrNotFound)
	}
	dest, err := repos.Locations.GetByKey(ctx, it.BatchID, t.Target)
	if err != nil {
		return err
	}
	freshness, expiration := destinationShelfLife(it, batch)
	if dest == nil {
		dest = &entity.BatchLocation{
			ID:                     uuid.New().String(),
			SellerID:               t.SellerID,
			BatchID:                it.BatchID,
			ProductID:              it.ProductID,
			Location:               t.Target,
			Quantity:               decimal.Zero,
			ReservedQuantity:       decimal.Zero,
			DegradationCoefficient: it.DestinationCoefficient,
			EffectiveExpiration:    expiration,
			Freshness:              freshness,
			ArrivedAt:              now,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := repos.Locations.Create(ctx, dest); err != nil {
			return err
		}
	} else {
		// Se mezcla con lo que ya había: se conserva lo más degradado.
		if freshness < dest.Freshness || dest.Quantity.IsZero() {
			dest.Freshness = freshness
		}
		if expiration.Before(dest.EffectiveExpiration) || dest.Quantity.IsZero() {
			dest.EffectiveExpiration = expiration
		}
		dest.DegradationCoefficient = it.DestinationCoefficient
		dest.ArrivedAt = now
		dest.UpdatedAt = now
		if err := repos.Locations.UpdateShelfLife(ctx, dest); err != nil {
			return err
		}
	}

	if _, _, err := uc.engine.Apply(ctx, repos, inventory.ChangeRequest{
		BatchLocationID: dest.ID,
		Delta:           qty,
		Type:            entity.MovementTypeTransferIn,
		Document:        t.Ref(),
		Actor:           actor,
		Comment:         "desde " + t.Source.String(),
	}); err != nil {
		return err
	}

	// Apply ya ajustó la cantidad del lote; se relee para no pisarla.
	batch, err = repos.Batches.GetByID(ctx, it.BatchID)
	if err != nil {
		return err
	}
	batch.CurrentLocation = t.Target
	batch.LocationArrivedAt = now
	batch.LocationCoefficient = it.DestinationCoefficient
	batch.Freshness = dest.Freshness
	batch.EffectiveExpiration = dest.EffectiveExpiration
	batch.UpdatedAt = now
	return repos.Batches.Update(ctx, batch)
}

// Cancel desde DRAFT no toca stock; desde SENT devuelve lo enviado al origen con un TRANSFER_IN
// por línea. Un traslado RECEIVED no se puede cancelar.
func (uc *UseCase) Cancel(ctx context.Context, sellerID, id string, actor entity.Actor, reason string) (*dto.TransferResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		t, err := uc.lock(ctx, repos.Transfers, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(t.Status, entity.TransferStatusDraft, entity.TransferStatusSent); err != nil {
			return err
		}
		if t.Status == entity.TransferStatusSent {
			for i, it := range t.Items {
				if it.SentQuantity == nil || !it.SentQuantity.IsPositive() {
					continue
				}
				src, err := repos.Locations.GetByKey(ctx, it.BatchID, t.Source)
				if err != nil {
					return err
				}
				if src == nil {
					return fmt.Errorf("línea %d: lote %s en %s: %w", i, it.BatchNumber, t.Source, domain.ErrNotFound)
				}
				if _, _, err := uc.engine.Apply(ctx, repos, inventory.ChangeRequest{
					BatchLocationID: src.ID,
					Delta:           *it.SentQuantity,
					Type:            entity.MovementTypeTransferIn,
					Document:        t.Ref(),
					Actor:           actor,
					Comment:         "reverso por cancelación de " + t.DocumentNumber,
				}); err != nil {
					return fmt.Errorf("línea %d: %w", i, err)
				}
			}
		}
		now := uc.now()
		t.Status = entity.TransferStatusCancelled
		t.CancelledBy = &actor
		t.CancelledAt = &now
		t.UpdatedAt = now
		if reason = strings.TrimSpace(reason); reason != "" {
			t.Comment = appendNote(t.Comment, "Cancelado: "+reason)
		}
		out = t
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", id).Str("actor", actor.ID).Msg("traslado cancelado")
	return toTransferResponse(out), nil
}

// ─── helpers ──────────────────────────────────────────────────────────────────

// buildItem valida que el lote sea del vendedor y esté en el origen.
func (uc *UseCase) buildItem(ctx context.Context, repos inventory.Repos, t *entity.Transfer, in dto.TransferItemRequest) (entity.TransferItem, error) {
	if in.BatchID == "" {
		return entity.TransferItem{}, fmt.Errorf("batch_id requerido: %w", domain.ErrInvalidInput)
	}
	if err := inventory.RequirePositive("requested_quantity", in.RequestedQuantity); err != nil {
		return entity.TransferItem{}, err
	}
	batch, err := repos.Batches.GetByID(ctx, in.BatchID)
	if err != nil {
		return entity.TransferItem{}, err
	}
	if batch == nil || batch.SellerID != t.SellerID {
		return entity.TransferItem{}, fmt.Errorf("lote %s: %w", in.BatchID, domain.ErrNotFound)
	}
	src, err := repos.Locations.GetByKey(ctx, batch.ID, t.Source)
	if err != nil {
		return entity.TransferItem{}, err
	}
	if src == nil {
		return entity.TransferItem{}, fmt.Errorf("lote %s sin stock en %s: %w", batch.BatchNumber, t.Source, domain.ErrNotFound)
	}
	name := ""
	if p, err := uc.catalog.GetProduct(ctx, batch.ProductID); err == nil && p != nil {
		name = p.Name
	}
	return entity.TransferItem{
		BatchID:           batch.ID,
		ProductID:         batch.ProductID,
		ProductName:       name,
		BatchNumber:       batch.BatchNumber,
		RequestedQuantity: in.RequestedQuantity,
		Comment:           in.Comment,
	}, nil
}

func (uc *UseCase) mutateDraft(ctx context.Context, sellerID, id string, fn func(repos inventory.Repos, t *entity.Transfer) error) (*dto.TransferResponse, error) {
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		t, err := uc.lock(ctx, repos.Transfers, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(t.Status, entity.TransferStatusDraft); err != nil {
			return err
		}
		if err := fn(repos, t); err != nil {
			return err
		}
		t.UpdatedAt = uc.now()
		out = t
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(out), nil
}

// lock lee el documento con su fila bloqueada; se usa dentro de tx.Run antes de mutarlo.
func (uc *UseCase) lock(ctx context.Context, repo repository.TransferRepository, sellerID, id string) (*entity.Transfer, error) {
	t, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(t, sellerID, id)
}

func (uc *UseCase) load(ctx context.Context, repo repository.TransferRepository, sellerID, id string) (*entity.Transfer, error) {
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(t, sellerID, id)
}

func owned(t *entity.Transfer, sellerID, id string) (*entity.Transfer, error) {
	if t == nil {
		return nil, fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
	}
	if err := inventory.RequireSeller(t.SellerID, sellerID); err != nil {
		return nil, fmt.Errorf("traslado %s: %w", id, err)
	}
	return t, nil
}

// resolveOverrides valida índices y cantidades explícitas; la última gana si un índice se repite.
func resolveOverrides(t *entity.Transfer, overrides []dto.QuantityOverride) (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal, len(overrides))
	for _, o := range overrides {
		if err := t.CheckIndex(o.Index); err != nil {
			return nil, inventory.IndexError(err)
		}
		if err := inventory.RequireNonNegative("quantity", o.Quantity); err != nil {
			return nil, err
		}
		out[o.Index] = o.Quantity
	}
	return out, nil
}

// destinationShelfLife valores calculados en el envío; sin ellos se usan los del lote.
func destinationShelfLife(it *entity.TransferItem, batch *entity.Batch) (float64, time.Time) {
	freshness, expiration := batch.Freshness, batch.EffectiveExpiration
	if it.DestinationFreshness != nil {
		freshness = *it.DestinationFreshness
	}
	if it.DestinationExpiration != nil {
		expiration = *it.DestinationExpiration
	}
	return freshness, expiration
}

func appendNote(comment, note string) string {
	if comment == "" {
		return note
	}
	return comment + "\n" + note
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for i, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			Index:                  i,
			BatchID:                it.BatchID,
			BatchNumber:            it.BatchNumber,
			ProductID:              it.ProductID,
			ProductName:            it.ProductName,
			RequestedQuantity:      it.RequestedQuantity,
			SentQuantity:           it.SentQuantity,
			ReceivedQuantity:       it.ReceivedQuantity,
			DestinationCoefficient: it.DestinationCoefficient,
			DestinationExpiration:  it.DestinationExpiration,
			DestinationFreshness:   it.DestinationFreshness,
			Comment:                it.Comment,
		})
	}
	return &dto.TransferResponse{
		ID:             t.ID,
		SellerID:       t.SellerID,
		DocumentNumber: t.DocumentNumber,
		Type:           t.Type,
		Status:         t.Status,
		Source:         dto.FromLocation(t.Source),
		Target:         dto.FromLocation(t.Target),
		Comment:        t.Comment,
		Items:          items,
		CreatedBy:      *dto.FromActor(&t.CreatedBy),
		SentBy:         dto.FromActor(t.SentBy),
		SentAt:         t.SentAt,
		ReceivedBy:     dto.FromActor(t.ReceivedBy),
		ReceivedAt:     t.ReceivedAt,
		CancelledBy:    dto.FromActor(t.CancelledBy),
		CancelledAt:    t.CancelledAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
