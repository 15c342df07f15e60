// Package audit implementa el flujo de auditorías de inventario:
// DRAFT → IN_PROGRESS → COMPLETED → APPLIED, y CANCELLED desde cualquier estado previo a APPLIED.
package audit

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// UseCase casos de uso de auditorías.
type UseCase struct {
	tx        inventory.TxRunner
	repo      repository.AuditRepository
	engine    *inventory.QuantityEngine
	catalog   inventory.Catalog
	directory inventory.LocationDirectory
	log       zerolog.Logger
	retries   int
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx inventory.TxRunner,
	repo repository.AuditRepository,
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
		log:       log.With().Str("component", "audit").Logger(),
		retries:   retries,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDocumentNumber siguiente número AUD-YYYYMMDD-NNNN del vendedor, sin reservarlo.
func (uc *UseCase) GenerateDocumentNumber(ctx context.Context, sellerID string) (string, error) {
	if sellerID == "" {
		return "", fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	return inventory.NextDocumentNumber(ctx, uc.repo, sellerID, entity.AuditNumberPrefix, uc.now())
}

// Create crea la auditoría en DRAFT, sin líneas; las líneas se toman en Start.
func (uc *UseCase) Create(ctx context.Context, sellerID string, actor entity.Actor, in dto.CreateAuditRequest) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	typ := strings.ToUpper(in.Type)
	switch typ {
	case "":
		typ = entity.AuditTypeFull
	case entity.AuditTypeFull, entity.AuditTypePartial, entity.AuditTypeControl, entity.AuditTypeExpress:
	default:
		return nil, fmt.Errorf("tipo de auditoría %q: %w", in.Type, domain.ErrInvalidInput)
	}
	loc, err := in.Location.ToLocation()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if _, err := inventory.ResolveLocation(ctx, uc.directory, sellerID, loc); err != nil {
		return nil, err
	}
	if d := in.Filter.ExpiringWithinDays; d != nil && *d < 0 {
		return nil, fmt.Errorf("expiring_within_days negativo: %w", domain.ErrInvalidInput)
	}

	now := uc.now()
	a := &entity.Audit{
		ID:       uuid.New().String(),
		SellerID: sellerID,
		Type:     typ,
		Status:   entity.AuditStatusDraft,
		Location: loc,
		Filter: entity.AuditFilter{
			ProductIDs:         slices.Clone(in.Filter.ProductIDs),
			Category:           in.Filter.Category,
			ExpiringWithinDays: in.Filter.ExpiringWithinDays,
		},
		Comment:       in.Comment,
		Items:         []entity.AuditItem{},
		TotalSurplus:  decimal.Zero,
		TotalShortage: decimal.Zero,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.DocumentNumber != "" {
		if !strings.HasPrefix(in.DocumentNumber, entity.AuditNumberPrefix+"-") {
			return nil, fmt.Errorf("número %q: %w", in.DocumentNumber, domain.ErrInvalidInput)
		}
		a.DocumentNumber = in.DocumentNumber
		if err := uc.repo.Create(ctx, a); err != nil {
			return nil, err
		}
	} else {
		_, err := inventory.CreateWithNumber(ctx, uc.repo, sellerID, entity.AuditNumberPrefix, now, uc.retries, func(number string) error {
			a.DocumentNumber = number
			return uc.repo.Create(ctx, a)
		})
		if err != nil {
			return nil, err
		}
	}

	uc.log.Info().Str("audit_id", a.ID).Str("number", a.DocumentNumber).Str("location", loc.String()).Msg("auditoría creada")
	return toAuditResponse(a), nil
}

// Get obtiene una auditoría del vendedor.
func (uc *UseCase) Get(ctx context.Context, sellerID, id string) (*dto.AuditResponse, error) {
	a, err := uc.load(ctx, uc.repo, sellerID, id)
	if err != nil {
		return nil, err
	}
	return toAuditResponse(a), nil
}

// List lista auditorías del vendedor, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, sellerID, status string, page dto.PageRequest) (*dto.AuditListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.DocumentListFilter{
		SellerID: sellerID, Status: strings.ToUpper(status), Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toAuditResponse(a))
	}
	return &dto.AuditListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Start toma la foto de todos los BatchLocation de la ubicación (incluidos los que están en cero,
// para poder corregir registros fantasma) y los deja como líneas PENDING. Solo una vez.
func (uc *UseCase) Start(ctx context.Context, sellerID, id string, actor entity.Actor) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Audit
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(a.Status, entity.AuditStatusDraft); err != nil {
			return err
		}
		lines, err := repos.Locations.ListByLocation(ctx, sellerID, a.Location, false)
		if err != nil {
			return err
		}

		now := uc.now()
		names := map[string]*entity.Product{}
		items := make([]entity.AuditItem, 0, len(lines))
		for _, line := range lines {
			p, err := uc.product(ctx, names, line.ProductID)
			if err != nil {
				return err
			}
			if !matchesFilter(a.Filter, line, p, now) {
				continue
			}
			name := ""
			if p != nil {
				name = p.Name
			}
			items = append(items, entity.AuditItem{
				BatchID:          line.BatchID,
				BatchLocationID:  line.ID,
				ProductID:        line.ProductID,
				ProductName:      name,
				BatchNumber:      line.BatchNumber,
				ExpectedQuantity: line.Quantity,
				Discrepancy:      decimal.Zero,
				Status:           entity.AuditItemPending,
			})
		}

		a.Items = items
		a.Status = entity.AuditStatusInProgress
		a.StartedAt = &now
		a.UpdatedAt = now
		a.RecomputeAggregates()
		out = a
		return repos.Audits.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("audit_id", id).Int("items", len(out.Items)).Msg("auditoría iniciada")
	return toAuditResponse(out), nil
}

// CountItem registra el conteo físico de una línea y recalcula los agregados.
func (uc *UseCase) CountItem(ctx context.Context, sellerID, id string, index int, actor entity.Actor, in dto.CountItemRequest) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	return uc.mutateInProgress(ctx, sellerID, id, func(a *entity.Audit, now time.Time) error {
		return countItem(a, index, in.ActualQuantity, in.Photos, in.Comment, actor, now)
	})
}

// BulkCountItems registra varios conteos; si uno falla no se guarda ninguno.
func (uc *UseCase) BulkCountItems(ctx context.Context, sellerID, id string, actor entity.Actor, in dto.BulkCountRequest) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	if len(in.Counts) == 0 {
		return nil, fmt.Errorf("sin conteos: %w", domain.ErrInvalidInput)
	}
	return uc.mutateInProgress(ctx, sellerID, id, func(a *entity.Audit, now time.Time) error {
		for _, c := range in.Counts {
			if err := countItem(a, c.Index, c.ActualQuantity, nil, c.Comment, actor, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// SkipItem marca una línea como SKIPPED; queda fuera de las diferencias.
func (uc *UseCase) SkipItem(ctx context.Context, sellerID, id string, index int, actor entity.Actor, comment string) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	return uc.mutateInProgress(ctx, sellerID, id, func(a *entity.Audit, now time.Time) error {
		if err := a.CheckIndex(index); err != nil {
			return inventory.IndexError(err)
		}
		it := &a.Items[index]
		it.Status = entity.AuditItemSkipped
		it.ActualQuantity = nil
		it.Discrepancy = decimal.Zero
		it.DiscrepancyType = ""
		it.CountedBy = &actor
		it.CountedAt = &now
		if comment != "" {
			it.Comment = comment
		}
		return nil
	})
}

// RecomputeAggregates vuelve a calcular los contadores desde las líneas. Idempotente.
func (uc *UseCase) RecomputeAggregates(ctx context.Context, sellerID, id string) (*dto.AuditResponse, error) {
	var out *entity.Audit
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		a.RecomputeAggregates()
		out = a
		return repos.Audits.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return toAuditResponse(out), nil
}

// Complete cierra el conteo (IN_PROGRESS → COMPLETED). Con applyCorrections encadena ApplyCorrections.
func (uc *UseCase) Complete(ctx context.Context, sellerID, id string, actor entity.Actor, applyCorrections bool) (*dto.ApplyCorrectionsResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Audit
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(a.Status, entity.AuditStatusInProgress); err != nil {
			return err
		}
		now := uc.now()
		a.RecomputeAggregates()
		a.Status = entity.AuditStatusCompleted
		a.CompletedBy = &actor
		a.CompletedAt = &now
		a.UpdatedAt = now
		out = a
		return repos.Audits.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("audit_id", id).Int("discrepancies", out.DiscrepancyItems).Msg("auditoría completada")

	if applyCorrections {
		return uc.ApplyCorrections(ctx, sellerID, id, actor)
	}
	return &dto.ApplyCorrectionsResponse{Audit: *toAuditResponse(out), Adjustments: []dto.AdjustmentResponse{}}, nil
}

// ApplyCorrections genera un ajuste por cada línea contada con diferencia (COMPLETED → APPLIED).
// Cada línea va en su propia transacción y queda marcada con su movimiento, así que un fallo a
// mitad de camino se retoma llamando de nuevo sin duplicar ajustes.
func (uc *UseCase) ApplyCorrections(ctx context.Context, sellerID, id string, actor entity.Actor) (*dto.ApplyCorrectionsResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	a, err := uc.load(ctx, uc.repo, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := inventory.RequireStatus(a.Status, entity.AuditStatusCompleted); err != nil {
		return nil, err
	}

	adjustments := []dto.AdjustmentResponse{}
	for i, it := range a.Items {
		it := it
		if it.CorrectionMovementID != "" {
			adj, err := uc.previousAdjustment(ctx, i, it)
			if err != nil {
				return nil, err
			}
			adjustments = append(adjustments, adj)
			continue
		}
		if !it.NeedsCorrection() {
			continue
		}
		adj, err := uc.applyItem(ctx, sellerID, id, i, actor)
		if err != nil {
			uc.log.Warn().Err(err).Str("audit_id", id).Int("index", i).Msg("ajuste parcial; se puede reintentar")
			return nil, err
		}
		if adj != nil {
			adjustments = append(adjustments, *adj)
		}
	}

	var out *entity.Audit
	err = uc.tx.Run(ctx, func(repos inventory.Repos) error {
		cur, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(cur.Status, entity.AuditStatusCompleted); err != nil {
			return err
		}
		now := uc.now()
		cur.Status = entity.AuditStatusApplied
		cur.AppliedBy = &actor
		cur.AppliedAt = &now
		cur.UpdatedAt = now
		out = cur
		return repos.Audits.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("audit_id", id).Str("number", out.DocumentNumber).Int("adjustments", len(adjustments)).Msg("ajustes de auditoría aplicados")
	return &dto.ApplyCorrectionsResponse{Audit: *toAuditResponse(out), Adjustments: adjustments}, nil
}

func (uc *UseCase) applyItem(ctx context.Context, sellerID, id string, index int, actor entity.Actor) (*dto.AdjustmentResponse, error) {
	var adj *dto.AdjustmentResponse
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(a.Status, entity.AuditStatusCompleted); err != nil {
			return err
		}
		if err := a.CheckIndex(index); err != nil {
			return inventory.IndexError(err)
		}
		it := &a.Items[index]
		if !it.NeedsCorrection() {
			return nil // aplicada por otra llamada
		}
		typ := entity.MovementTypeAdjustmentPlus
		if it.Discrepancy.IsNegative() {
			typ = entity.MovementTypeAdjustmentMinus
		}
		_, mov, err := uc.engine.Apply(ctx, repos, inventory.ChangeRequest{
			BatchLocationID: it.BatchLocationID,
			Delta:           it.Discrepancy,
			Type:            typ,
			Document:        a.Ref(),
			Actor:           actor,
			Comment:         fmt.Sprintf("auditoría %s: esperado %s, contado %s", a.DocumentNumber, it.ExpectedQuantity, it.ActualQuantity),
		})
		if err != nil {
			return err
		}
		it.CorrectionMovementID = mov.ID
		a.UpdatedAt = uc.now()
		adj = toAdjustment(index, mov)
		return repos.Audits.Update(ctx, a)
	})
	return adj, err
}

func (uc *UseCase) previousAdjustment(ctx context.Context, index int, it entity.AuditItem) (dto.AdjustmentResponse, error) {
	mov, err := uc.engine.Ledger().Get(ctx, it.CorrectionMovementID)
	if err != nil {
		return dto.AdjustmentResponse{}, err
	}
	return *toAdjustment(index, mov), nil
}

// Cancel cancela la auditoría antes de APPLIED. Si una aplicación quedó a medias, los ajustes ya
// registrados se conservan en el libro y el comentario indica qué líneas alcanzaron a corregirse.
func (uc *UseCase) Cancel(ctx context.Context, sellerID, id string, actor entity.Actor, reason string) (*dto.AuditResponse, error) {
	if err := inventory.RequireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Audit
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if !a.CanCancel() {
			return fmt.Errorf("auditoría %s en estado %s: %w", a.DocumentNumber, a.Status, domain.ErrInvalidTransition)
		}
		now := uc.now()
		a.Status = entity.AuditStatusCancelled
		a.CancelledAt = &now
		a.UpdatedAt = now
		if reason = strings.TrimSpace(reason); reason != "" {
			appendComment(a, "Cancelada: "+reason)
		}
		if lines := correctedLines(a); len(lines) > 0 {
			appendComment(a, "Ajustes conservados en líneas "+strings.Join(lines, ", "))
			uc.log.Warn().Str("audit_id", id).Int("adjustments", len(lines)).Msg("auditoría cancelada con ajustes parciales")
		}
		out = a
		return repos.Audits.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("audit_id", id).Str("actor", actor.ID).Msg("auditoría cancelada")
	return toAuditResponse(out), nil
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func appendComment(a *entity.Audit, line string) {
	if a.Comment != "" {
		a.Comment += "\n"
	}
	a.Comment += line
}

// correctedLines números de línea (base 1) que ya tienen movimiento de ajuste.
func correctedLines(a *entity.Audit) []string {
	var out []string
	for i, it := range a.Items {
		if it.CorrectionMovementID != "" {
			out = append(out, strconv.Itoa(i+1))
		}
	}
	return out
}

func (uc *UseCase) mutateInProgress(ctx context.Context, sellerID, id string, fn func(a *entity.Audit, now time.Time) error) (*dto.AuditResponse, error) {
	var out *entity.Audit
	err := uc.tx.Run(ctx, func(repos inventory.Repos) error {
		a, err := uc.lock(ctx, repos.Audits, sellerID, id)
		if err != nil {
			return err
		}
		if err := inventory.RequireStatus(a.Status, entity.AuditStatusInProgress); err != nil {
			return err
		}
		now := uc.now()
		if err := fn(a, now); err != nil {
			return err
		}
		a.RecomputeAggregates()
		a.UpdatedAt = now
		out = a
		return repos.Audits.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return toAuditResponse(out), nil
}

// lock lee el documento con su fila bloqueada; se usa dentro de tx.Run antes de mutarlo.
func (uc *UseCase) lock(ctx context.Context, repo repository.AuditRepository, sellerID, id string) (*entity.Audit, error) {
	a, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(a, sellerID, id)
}

func (uc *UseCase) load(ctx context.Context, repo repository.AuditRepository, sellerID, id string) (*entity.Audit, error) {
	a, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(a, sellerID, id)
}

func owned(a *entity.Audit, sellerID, id string) (*entity.Audit, error) {
	if a == nil {
		return nil, fmt.Errorf("auditoría %s: %w", id, domain.ErrNotFound)
	}
	if err := inventory.RequireSeller(a.SellerID, sellerID); err != nil {
		return nil, fmt.Errorf("auditoría %s: %w", id, err)
	}
	return a, nil
}

// product consulta el catálogo una vez por producto. Un producto retirado del catálogo no impide
// auditar su stock: se devuelve nil.
func (uc *UseCase) product(ctx context.Context, cache map[string]*entity.Product, productID string) (*entity.Product, error) {
	if p, ok := cache[productID]; ok {
		return p, nil
	}
	p, err := uc.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cache[productID] = p
	return p, nil
}

func matchesFilter(f entity.AuditFilter, line entity.StockLine, p *entity.Product, now time.Time) bool {
	if len(f.ProductIDs) > 0 && !slices.Contains(f.ProductIDs, line.ProductID) {
		return false
	}
	if f.Category != "" && (p == nil || !strings.EqualFold(p.Category, f.Category)) {
		return false
	}
	if f.ExpiringWithinDays != nil {
		limit := now.AddDate(0, 0, *f.ExpiringWithinDays)
		if line.EffectiveExpiration.After(limit) {
			return false
		}
	}
	return true
}

func countItem(a *entity.Audit, index int, actual decimal.Decimal, photos []string, comment string, actor entity.Actor, now time.Time) error {
	if err := a.CheckIndex(index); err != nil {
		return inventory.IndexError(err)
	}
	if err := inventory.RequireNonNegative("actual_quantity", actual); err != nil {
		return err
	}
	it := &a.Items[index]
	it.SetCount(actual, actor, now)
	if len(photos) > 0 {
		it.Photos = slices.Clone(photos)
	}
	if comment != "" {
		it.Comment = comment
	}
	return nil
}

func toAdjustment(index int, m *entity.Movement) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		Index:           index,
		BatchLocationID: m.BatchLocationID,
		MovementID:      m.ID,
		Type:            m.Type,
		QuantityChange:  m.QuantityChange,
		BalanceAfter:    m.BalanceAfter,
	}
}

func toAuditResponse(a *entity.Audit) *dto.AuditResponse {
	if a == nil {
		return nil
	}
	items := make([]dto.AuditItemResponse, 0, len(a.Items))
	for i, it := range a.Items {
		items = append(items, dto.AuditItemResponse{
			Index:                i,
			BatchID:              it.BatchID,
			BatchLocationID:      it.BatchLocationID,
			ProductID:            it.ProductID,
			ProductName:          it.ProductName,
			BatchNumber:          it.BatchNumber,
			ExpectedQuantity:     it.ExpectedQuantity,
			ActualQuantity:       it.ActualQuantity,
			Discrepancy:          it.Discrepancy,
			DiscrepancyType:      it.DiscrepancyType,
			Status:               it.Status,
			CountedBy:            dto.FromActor(it.CountedBy),
			CountedAt:            it.CountedAt,
			Photos:               it.Photos,
			Comment:              it.Comment,
			CorrectionMovementID: it.CorrectionMovementID,
		})
	}
	return &dto.AuditResponse{
		ID:             a.ID,
		SellerID:       a.SellerID,
		DocumentNumber: a.DocumentNumber,
		Type:           a.Type,
		Status:         a.Status,
		Location:       dto.FromLocation(a.Location),
		Filter: dto.AuditFilterDTO{
			ProductIDs:         a.Filter.ProductIDs,
			Category:           a.Filter.Category,
			ExpiringWithinDays: a.Filter.ExpiringWithinDays,
		},
		Comment:          a.Comment,
		Items:            items,
		TotalItems:       a.TotalItems,
		CountedItems:     a.CountedItems,
		DiscrepancyItems: a.DiscrepancyItems,
		TotalSurplus:     a.TotalSurplus,
		TotalShortage:    a.TotalShortage,
		CreatedBy:        *dto.FromActor(&a.CreatedBy),
		StartedAt:        a.StartedAt,
		CompletedBy:      dto.FromActor(a.CompletedBy),
		CompletedAt:      a.CompletedAt,
		AppliedBy:        dto.FromActor(a.AppliedBy),
		AppliedAt:        a.AppliedAt,
		CancelledAt:      a.CancelledAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
