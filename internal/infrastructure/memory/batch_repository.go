package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.BatchRepository         = (*BatchRepo)(nil)
	_ repository.BatchLocationRepository = (*BatchLocationRepo)(nil)
)

// BatchRepo lotes en memoria.
type BatchRepo struct{ v view }

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.batches[b.ID]; ok {
			return fmt.Errorf("lote %s: %w", b.ID, domain.ErrConflict)
		}
		for _, other := range st.batches {
			if other.SellerID == b.SellerID && other.BatchNumber == b.BatchNumber {
				return fmt.Errorf("número de lote %s: %w", b.BatchNumber, domain.ErrConflict)
			}
		}
		st.batches[b.ID] = *b
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	r.v.read(func(st *state) {
		if b, ok := st.batches[id]; ok {
			out = &b
		}
	})
	return out, nil
}

func (r *BatchRepo) GetByNumber(_ context.Context, sellerID, batchNumber string) (*entity.Batch, error) {
	var out *entity.Batch
	r.v.read(func(st *state) {
		for _, b := range st.batches {
			b := b
			if b.SellerID == sellerID && b.BatchNumber == batchNumber {
				out = &b
				return
			}
		}
	})
	return out, nil
}

func (r *BatchRepo) Update(_ context.Context, b *entity.Batch) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.batches[b.ID]; !ok {
			return fmt.Errorf("lote %s: %w", b.ID, domain.ErrNotFound)
		}
		st.batches[b.ID] = *b
		return nil
	})
}

func (r *BatchRepo) ListByProduct(_ context.Context, sellerID, productID string) ([]*entity.Batch, error) {
	out := []*entity.Batch{}
	r.v.read(func(st *state) {
		for _, b := range st.batches {
			b := b
			if b.SellerID == sellerID && b.ProductID == productID {
				out = append(out, &b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

// BatchLocationRepo stock por ubicación en memoria. Dentro de Run el mutex del almacén ya serializa,
// así que GetForUpdate es una lectura simple.
type BatchLocationRepo struct{ v view }

func (r *BatchLocationRepo) Create(_ context.Context, bl *entity.BatchLocation) error {
	return r.v.write(func(st *state) error {
		for _, other := range st.batchLocations {
			if other.BatchID == bl.BatchID && other.Location == bl.Location {
				return fmt.Errorf("lote %s en %s: %w", bl.BatchID, bl.Location, domain.ErrConflict)
			}
		}
		st.batchLocations[bl.ID] = *bl
		return nil
	})
}

func (r *BatchLocationRepo) GetByID(_ context.Context, id string) (*entity.BatchLocation, error) {
	var out *entity.BatchLocation
	r.v.read(func(st *state) {
		if bl, ok := st.batchLocations[id]; ok {
			out = &bl
		}
	})
	return out, nil
}

func (r *BatchLocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.BatchLocation, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchLocationRepo) GetByKey(_ context.Context, batchID string, loc entity.Location) (*entity.BatchLocation, error) {
	var out *entity.BatchLocation
	r.v.read(func(st *state) {
		for _, bl := range st.batchLocations {
			bl := bl
			if bl.BatchID == batchID && bl.Location == loc {
				out = &bl
				return
			}
		}
	})
	return out, nil
}

func (r *BatchLocationRepo) CompareAndSwap(_ context.Context, id string, expectedVersion int64, quantity, reserved decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		bl, ok := st.batchLocations[id]
		if !ok {
			return fmt.Errorf("batch location %s: %w", id, domain.ErrNotFound)
		}
		if bl.Version != expectedVersion {
			return fmt.Errorf("versión %d, esperada %d: %w", bl.Version, expectedVersion, domain.ErrConflict)
		}
		bl.Quantity = quantity
		bl.ReservedQuantity = reserved
		bl.Version++
		bl.UpdatedAt = time.Now().UTC()
		st.batchLocations[id] = bl
		return nil
	})
}

func (r *BatchLocationRepo) UpdateShelfLife(_ context.Context, in *entity.BatchLocation) error {
	return r.v.write(func(st *state) error {
		bl, ok := st.batchLocations[in.ID]
		if !ok {
			return fmt.Errorf("batch location %s: %w", in.ID, domain.ErrNotFound)
		}
		bl.DegradationCoefficient = in.DegradationCoefficient
		bl.EffectiveExpiration = in.EffectiveExpiration
		bl.Freshness = in.Freshness
		bl.ArrivedAt = in.ArrivedAt
		bl.UpdatedAt = time.Now().UTC()
		st.batchLocations[in.ID] = bl
		return nil
	})
}

func (r *BatchLocationRepo) ListByLocation(_ context.Context, sellerID string, loc entity.Location, withQuantityOnly bool) ([]entity.StockLine, error) {
	out := []entity.StockLine{}
	r.v.read(func(st *state) {
		for _, bl := range st.batchLocations {
			if bl.SellerID != sellerID || bl.Location != loc {
				continue
			}
			if withQuantityOnly && !bl.Quantity.IsPositive() {
				continue
			}
			line := entity.StockLine{BatchLocation: bl}
			if b, ok := st.batches[bl.BatchID]; ok {
				line.BatchNumber = b.BatchNumber
				line.ExpirationDate = b.ExpirationDate
			}
			out = append(out, line)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveExpiration.Equal(out[j].EffectiveExpiration) {
			return out[i].EffectiveExpiration.Before(out[j].EffectiveExpiration)
		}
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out, nil
}

func (r *BatchLocationRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.BatchLocation, error) {
	return r.filter(func(bl entity.BatchLocation) bool { return bl.BatchID == batchID }), nil
}

func (r *BatchLocationRepo) ListBySeller(_ context.Context, sellerID string) ([]*entity.BatchLocation, error) {
	return r.filter(func(bl entity.BatchLocation) bool { return bl.SellerID == sellerID }), nil
}

func (r *BatchLocationRepo) filter(keep func(entity.BatchLocation) bool) []*entity.BatchLocation {
	out := []*entity.BatchLocation{}
	r.v.read(func(st *state) {
		for _, bl := range st.batchLocations {
			bl := bl
			if keep(bl) {
				out = append(out, &bl)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
