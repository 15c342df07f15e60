// Package receiving implementa el flujo de recepciones: DRAFT → CONFIRMED | CANCELLED.
package receiving

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

// MaxShelfLifeYears límite de vencimiento aceptado al recibir; más allá es un error de captura.
const MaxShelfLifeYears = 100

// UseCase casos de uso de recepciones.
type UseCase struct {
	tx        inventory.TxRunner
	repo      repository.ReceivingRepository
	engine    *inventory.QuantityEngine
	catalog   inventory.Catalog
	directory inventory.LocationDirectory
	log       zerolog.Logger
	retries   int
	now       func() time.Time
}

// NewUseCase construye el caso de uso. retries = intentos de reserva de número (Ledger.NumberRetries).
func NewUseCase(
	tx inventory.TxRunner,
	repo repository.ReceivingRepository,
	engine *inventory.QuantityEngine,
	catalog inventory.Catalog,
	directory inventory.LocationDirectory,
	log zerolog.Logger,
	retries int,
) *UseCase {
	return &UseCase{
		tx:        tx,
		repo:      repo,
		engine:    engine,
		catalog:   catalog,
		directory: directory,
		log:       log.With().Str("component", "receiving").Logger(),
		retries:   retries,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDocumentNumber siguiente número RCV-YYYYMMDD-NNNN del vendedor, sin reservarlo.
func (uc *UseCase) GenerateDocumentNumber(ctx context.Context, sellerID string) (string, error) {
	if sellerID == "" {
		return "", fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	return inventory.NextDocumentNumber(ctx, uc.repo, sellerID, entity.ReceivingNumberPrefix, uc.now())
}

// Create crea la recepción en DRAFT. Si no trae número pre-asignado se reserva uno con reintento.
func (uc *UseCase) Create(ctx context.Context, sellerID string, actor entity.Actor, in dto.CreateReceivingRequest) (*dto.ReceivingResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	typ := strings.ToUpper(in.Type)
	switch typ {
	case "":
		typ = entity.ReceivingTypeSupplier
	case entity.ReceivingTypeSupplier, entity.ReceivingTypeReturn, entity.ReceivingTypeInitial:
	default:
		return nil, fmt.Errorf("tipo de recepción %q: %w", in.Type, domain.ErrInvalidInput)
	}
	dest, err := in.Destination.ToLocation()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if _, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, dest); err != nil {
		return nil, err
	}

	items := make([]entity.ReceivingItem, 0, len(in.Items))
	for _, req := range in.Items {
		it, err := uc.buildItem(ctx, req)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	now := uc.now()
	r := &entity.Receiving{
		ID:              uuid.New().String(),
		SellerID:        sellerID,
		Type:            typ,
		Status:          entity.ReceivingStatusDraft,
		Destination:     dest,
		Supplier:        in.Supplier,
		SupplierInvoice: in.SupplierInvoice,
		Comment:         in.Comment,
		Items:           items,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.RecalculateTotals()

	if in.DocumentNumber != "" {
		if !strings.HasPrefix(in.DocumentNumber, entity.ReceivingNumberPrefix+"-") {
			return nil, fmt.Errorf("número %q: %w", in.DocumentNumber, domain.ErrInvalidInput)
		}
		r.DocumentNumber = in.DocumentNumber
		if err := uc.repo.Create(ctx, r); err != nil {
			return nil, err
		}
	} else {
		_, err := inventory.CreateWithNumber(ctx, uc.repo, sellerID, entity.ReceivingNumberPrefix, now, uc.retries, func(number string) error {
			r.DocumentNumber = number
			return uc.repo.Create(ctx, r)
		})
		if err != nil {
			return nil, err
		}
	}

	uc.log.Info().Str("receiving_id", r.ID).Str("number", r.DocumentNumber).Msg("recepción creada")
	return toReceivingResponse(r), nil
}

// Get obtiene una recepción del vendedor.
func (uc *UseCase) Get(ctx context.Context, sellerID, id string) (*dto.ReceivingResponse, error) {
	r, err := uc.load(ctx, uc.repo, sellerID, id)
	if err != nil {
		return nil, err
	}
	return toReceivingResponse(r), nil
}

// List lista recepciones del vendedor, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, sellerID, status string, page dto.PageRequest) (*dto.ReceivingListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.DocumentListFilter{
		SellerID: sellerID, Status: strings.ToUpper(status), Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceivingResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toReceivingResponse(r))
	}
	return &dto.ReceivingListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// AddItem agrega una línea (solo DRAFT).
func (uc *UseCase) AddItem(ctx context.Context, sellerID, id string, in dto.ReceivingItemRequest) (*dto.ReceivingResponse, error) {
	it, err := uc.buildItem(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.mutateDraft(ctx, sellerID, id, func(r *entity.Receiving) error {
		r.Items = append(r.Items, it)
		return nil
	})
}

// UpdateItem reemplaza la línea index (solo DRAFT).
func (uc *UseCase) UpdateItem(ctx context.Context, sellerID, id string, index int, in dto.ReceivingItemRequest) (*dto.ReceivingResponse, error) {
	it, err := uc.buildItem(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.mutateDraft(ctx, sellerID, id, func(r *entity.Receiving) error {
		if err := editableItem(r, index); err != nil {
			return err
		}
		r.Items[index] = it
		return nil
	})
}

// RemoveItem elimina la línea index (solo DRAFT).
func (uc *UseCase) RemoveItem(ctx context.Context, sellerID, id string, index int) (*dto.ReceivingResponse, error) {
	return uc.mutateDraft(ctx, sellerID, id, func(r *entity.Receiving) error {
		if err := editableItem(r, index); err != nil {
			return err
		}
		r.Items = append(r.Items[:index], r.Items[index+1:]...)
		return nil
	})
}

// UpdateActualQuantity registra la cantidad realmente recibida de una línea (solo DRAFT).
func (uc *UseCase) UpdateActualQuantity(ctx context.Context, sellerID, id string, index int, actual decimal.Decimal) (*dto.ReceivingResponse, error) {
	if err := inventory.RequireNonNegative("actual_quantity", actual); err != nil {
		return nil, err
	}
	return uc.mutateDraft(ctx, sellerID, id, func(r *entity.Receiving) error {
		if err := editableItem(r, index); err != nil {
			return err
		}
		q := actual
		r.Items[index].ActualQuantity = &q
		return nil
	})
}

// Confirm crea un lote, su BatchLocation en el destino y un movimiento RECEIVING (o INITIAL) por
// cada línea con cantidad > 0. Cada línea va en su propia transacción y queda marcada con el lote
// creado, así que si falla a mitad de camino volver a confirmar continúa desde la línea pendiente.
func (uc *UseCase) Confirm(ctx context.Context, sellerID, id string, actor entity.Actor) (*dto.ReceivingResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	r, err := uc.load(ctx, uc.repo, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := inventory.RequireStatus(r.Status, entity.ReceivingStatusDraft); err != nil {
		return nil, err
	}
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("recepción %s sin líneas: %w", r.DocumentNumber, domain.ErrInvalidInput)
	}
	dest, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, r.Destination)
	if err != nil {
		return nil, err
	}

	for i, it := range r.Items {
		if it.CreatedBatchID != "" {
			continue
		}
		if err := uc.confirmItem(ctx, sellerID, id, i, dest.Profile, actor); err != nil {
			uc.log.Warn().Err(err).Str("receiving_id", id).Int("index", i).Msg("confirmación parcial; se puede reintentar")
			return nil, err
		}
	}

	var out *entity.Receiving
	err = uc.tx.Run(ctx, func(repos inventory.Repos) error {
		cur, err := uc.lock(ctx, repos.Receivings, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(cur.Status, entity.ReceivingStatusDraft); err != nil {
			return err
		}
		now := uc.now()
		cur.Status = entity.ReceivingStatusConfirmed
		cur.ConfirmedBy = &actor
		cur.ConfirmedAt = &now
		cur.UpdatedAt = now
		cur.RecalculateTotals()
		out = cur
		return repos.Receivings.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("receiving_id", id).Str("number", out.DocumentNumber).Int("items", len(out.Items)).Msg("recepción confirmada")
	return toReceivingResponse(out), nil
}

func (uc *UseCase) confirmItem(
	ctx context.Context,
	sellerID, id string,
	index int,
	profile entity.StorageProfile,
	actor entity.Actor,
) error {
	return uc.tx.Run(ctx, func(repos inventory.Repos) error {
		r, err := uc.lock(ctx, repos.Receivings, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(r.Status, entity.ReceivingStatusDraft); err != nil {
			return err
		}
		if err := r.CheckIndex(index); err != nil {
			return inventory.IndexError(err)
		}
		it := r.Items[index]
		if it.CreatedBatchID != "" {
			return nil // ya procesada por otra confirmación
		}
		qty := it.Quantity()
		if !qty.IsPositive() {
			return nil
		}
		// La línea pudo editarse desde la primera lectura: el producto sale de la fila bloqueada.
		product, err := inventory.ResolveProduct(ctx, uc.catalog, it.ProductID)
		if err != nil {
			return err
		}

		now := uc.now()
		coef := shelflife.CoefficientAt(product.Conditions, profile)
		cond := product.Conditions
		cond.DegradationCoefficient = coef
		life := shelflife.CalculateInitialFreshnessFrom(cond, it.ProductionDate, it.ExpirationDate, now)

		batchNumber, err := uc.batchNumber(ctx, repos, r, index)
		if err != nil {
			return err
		}
		batch := &entity.Batch{
			ID:                  uuid.New().String(),
			SellerID:            sellerID,
			ProductID:           it.ProductID,
			BatchNumber:         batchNumber,
			ProductionDate:      it.ProductionDate,
			ReceivedAt:          now,
			ExpirationDate:      it.ExpirationDate,
			EffectiveExpiration: life.EffectiveExpiration,
			Freshness:           life.Freshness,
			InitialFreshness:    life.Freshness,
			InitialQuantity:     qty,
			CurrentQuantity:     decimal.Zero,
			Supplier:            r.Supplier,
			SupplierInvoice:     r.SupplierInvoice,
			PurchasePrice:       it.PurchasePrice,
			ReceivingID:         r.ID,
			CurrentLocation:     r.Destination,
			LocationArrivedAt:   now,
			LocationCoefficient: coef,
			Status:              entity.BatchStatusActive,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := repos.Batches.Create(ctx, batch); err != nil {
			return err
		}
		bl := &entity.BatchLocation{
			ID:                     uuid.New().String(),
			SellerID:               sellerID,
			BatchID:                batch.ID,
			ProductID:              it.ProductID,
			Location:               r.Destination,
			Quantity:               decimal.Zero,
			ReservedQuantity:       decimal.Zero,
			DegradationCoefficient: coef,
			EffectiveExpiration:    life.EffectiveExpiration,
			Freshness:              life.Freshness,
			ArrivedAt:              now,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := repos.Locations.Create(ctx, bl); err != nil {
			return err
		}
		if _, _, err := uc.engine.Apply(ctx, repos, inventory.ChangeRequest{
			BatchLocationID: bl.ID,
			Delta:           qty,
			Type:            r.MovementType(),
			Document:        r.Ref(),
			Actor:           actor,
			Comment:         itemComment(r, index),
		}); err != nil {
			return err
		}

		r.Items[index].CreatedBatchID = batch.ID
		r.UpdatedAt = now
		return repos.Receivings.Update(ctx, r)
	})
}

// itemComment identifica la línea del documento en el movimiento; incluye el lote del proveedor si vino.
func itemComment(r *entity.Receiving, index int) string {
	c := fmt.Sprintf("recepción %s línea %d", r.DocumentNumber, index+1)
	if sbn := r.Items[index].SupplierBatchNumber; sbn != "" {
		c += ", lote proveedor " + sbn
	}
	return c
}

// batchNumber usa el lote del proveedor si está libre; si no, NUMERO-DOC-NN.
func (uc *UseCase) batchNumber(ctx context.Context, repos inventory.Repos, r *entity.Receiving, index int) (string, error) {
	if sbn := r.Items[index].SupplierBatchNumber; sbn != "" {
		existing, err := repos.Batches.GetByNumber(ctx, r.SellerID, sbn)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return sbn, nil
		}
	}
	return fmt.Sprintf("%s-%02d", r.DocumentNumber, index+1), nil
}

// Cancel cancela una recepción en DRAFT sin efecto en stock. El motivo se agrega al comentario.
func (uc *UseCase) Cancel(ctx context.Context, sellerID, id string, actor entity.Actor, reason string) (*dto.ReceivingResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Receiving
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		r, err := uc.lock(ctx, repos.Receivings, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(r.Status, entity.ReceivingStatusDraft); err != nil {
			return err
		}
		for _, it := range r.Items {
			if it.CreatedBatchID != "" {
				return fmt.Errorf("recepción %s con confirmación en curso: %w", r.DocumentNumber, domain.ErrInvalidTransition)
			}
		}
		now := uc.now()
		r.Status = entity.ReceivingStatusCancelled
		r.CancelledAt = &now
		r.UpdatedAt = now
		r.Comment = appendReason(r.Comment, reason)
		out = r
		return repos.Receivings.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("receiving_id", id).Str("actor", actor.ID).Msg("recepción cancelada")
	return toReceivingResponse(out), nil
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func (uc *UseCase) buildItem(ctx context.Context, in dto.ReceivingItemRequest) (entity.ReceivingItem, error) {
	product, err := inventory.ResolveProduct(ctx, uc.catalog, in.ProductID)
	if err != nil {
		return entity.ReceivingItem{}, err
	}
	if err := inventory.RequirePositive("expected_quantity", in.ExpectedQuantity); err != nil {
		return entity.ReceivingItem{}, err
	}
	if in.ActualQuantity != nil {
		if err := inventory.RequireNonNegative("actual_quantity", *in.ActualQuantity); err != nil {
			return entity.ReceivingItem{}, err
		}
	}
	if err := inventory.RequireNonNegative("purchase_price", in.PurchasePrice); err != nil {
		return entity.ReceivingItem{}, err
	}
	if in.ExpirationDate.IsZero() {
		return entity.ReceivingItem{}, fmt.Errorf("expiration_date requerida: %w", domain.ErrInvalidInput)
	}
	if in.ExpirationDate.After(uc.now().AddDate(MaxShelfLifeYears, 0, 0)) {
		return entity.ReceivingItem{}, fmt.Errorf("expiration_date a más de %d años: %w", MaxShelfLifeYears, domain.ErrInvalidInput)
	}
	if in.ProductionDate != nil && in.ProductionDate.After(in.ExpirationDate) {
		return entity.ReceivingItem{}, fmt.Errorf("producción posterior al vencimiento: %w", domain.ErrInvalidInput)
	}
	return entity.ReceivingItem{
		ProductID:           product.ID,
		ProductName:         product.Name,
		ExpectedQuantity:    in.ExpectedQuantity,
		ActualQuantity:      in.ActualQuantity,
		ExpirationDate:      in.ExpirationDate,
		ProductionDate:      in.ProductionDate,
		SupplierBatchNumber: in.SupplierBatchNumber,
		PurchasePrice:       in.PurchasePrice,
	}, nil
}

func (uc *UseCase) mutateDraft(ctx context.Context, sellerID, id string, fn func(r *entity.Receiving) error) (*dto.ReceivingResponse, error) {
	var out *entity.Receiving
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		r, err := uc.lock(ctx, repos.Receivings, sellerID, id)
		if err != nil {
			return err
		}
		if !r.IsDraft() {
			return fmt.Errorf("recepción %s en estado %s: %w", r.DocumentNumber, r.Status, domain.ErrInvalidTransition)
		}
		if err := fn(r); err != nil {
			return err
		}
		r.RecalculateTotals()
		r.UpdatedAt = uc.now()
		out = r
		return repos.Receivings.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return toReceivingResponse(out), nil
}

// lock lee el documento con su fila bloqueada; se usa dentro de tx.Run antes de mutarlo.
func (uc *UseCase) lock(ctx context.Context, repo repository.ReceivingRepository, sellerID, id string) (*entity.Receiving, error) {
	r, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(r, sellerID, id)
}

func (uc *UseCase) load(ctx context.Context, repo repository.ReceivingRepository, sellerID, id string) (*entity.Receiving, error) {
	r, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(r, sellerID, id)
}

func owned(r *entity.Receiving, sellerID, id string) (*entity.Receiving, error) {
	if r == nil {
		return nil, fmt.Errorf("recepción %s: %w", id, domain.ErrNotFound)
	}
	if err := inventory.RequireSeller(r.SellerID, sellerID); err != nil {
		return nil, fmt.Errorf("recepción %s: %w", id, err)
	}
	return r, nil
}

func editableItem(r *entity.Receiving, index int) error {
	if err := r.CheckIndex(index); err != nil {
		return inventory.IndexError(err)
	}
	if r.Items[index].CreatedBatchID != "" {
		return fmt.Errorf("línea %d ya generó el lote %s: %w", index, r.Items[index].CreatedBatchID, domain.ErrInvalidTransition)
	}
	return nil
}

func appendReason(comment, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return comment
	}
	if comment == "" {
		return "Cancelada: " + reason
	}
	return comment + "\nCancelada: " + reason
}

func toReceivingResponse(r *entity.Receiving) *dto.ReceivingResponse {
	if r == nil {
		return nil
	}
	items := make([]dto.ReceivingItemResponse, 0, len(r.Items))
	for i, it := range r.Items {
		items = append(items, dto.ReceivingItemResponse{
			Index:               i,
			ProductID:           it.ProductID,
			ProductName:         it.ProductName,
			ExpectedQuantity:    it.ExpectedQuantity,
			ActualQuantity:      it.ActualQuantity,
			ExpirationDate:      it.ExpirationDate,
			ProductionDate:      it.ProductionDate,
			SupplierBatchNumber: it.SupplierBatchNumber,
			PurchasePrice:       it.PurchasePrice,
			CreatedBatchID:      it.CreatedBatchID,
		})
	}
	return &dto.ReceivingResponse{
		ID:              r.ID,
		SellerID:        r.SellerID,
		DocumentNumber:  r.DocumentNumber,
		Type:            r.Type,
		Status:          r.Status,
		Destination:     dto.FromLocation(r.Destination),
		Supplier:        r.Supplier,
		SupplierInvoice: r.SupplierInvoice,
		Comment:         r.Comment,
		Items:           items,
		TotalAmount:     r.TotalAmount,
		TotalQuantity:   r.TotalQuantity,
		CreatedBy:       *dto.FromActor(&r.CreatedBy),
		ConfirmedBy:     dto.FromActor(r.ConfirmedBy),
		ConfirmedAt:     r.ConfirmedAt,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
