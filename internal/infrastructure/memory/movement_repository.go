package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.OutboxRepository   = (*OutboxRepo)(nil)
)

// MovementRepo libro mayor en memoria: slice en orden de inserción, solo se agrega.
type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.movements {
			if existing.ID == m.ID {
				return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrConflict)
			}
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) CreateBulk(ctx context.Context, movements []*entity.Movement) error {
	for _, m := range movements {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			m := m
			if m.ID == id {
				out = &m
				return
			}
		}
	})
	return out, nil
}

// List devuelve los movimientos que cumplen el filtro, más recientes primero.
func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	out := []*entity.Movement{}
	r.v.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if matches(m, f) {
				out = append(out, &m)
			}
		}
	})
	return page(out, f.Limit, f.Offset), nil
}

func matches(m entity.Movement, f entity.MovementFilter) bool {
	switch {
	case m.SellerID != f.SellerID:
		return false
	case len(f.Types) > 0 && !slices.Contains(f.Types, m.Type):
		return false
	case f.BatchID != "" && m.BatchID != f.BatchID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.Location != nil && m.Location != *f.Location:
		return false
	case f.DocumentID != "" && m.Document.ID != f.DocumentID:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && !m.CreatedAt.Before(*f.To):
		return false
	}
	return true
}

func (r *MovementRepo) ListByBatchLocation(_ context.Context, batchLocationID string) ([]*entity.Movement, error) {
	out := []*entity.Movement{}
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			m := m
			if m.BatchLocationID == batchLocationID {
				out = append(out, &m)
			}
		}
	})
	return out, nil
}

func (r *MovementRepo) Summary(_ context.Context, sellerID string, from, to time.Time) (*entity.MovementSummary, error) {
	sum := &entity.MovementSummary{
		SellerID:     sellerID,
		From:         from,
		To:           to,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		CountByType:  make(map[string]int),
	}
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.SellerID != sellerID || m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
				continue
			}
			sum.Total++
			sum.CountByType[m.Type]++
			switch m.QuantityChange.Sign() {
			case 1:
				sum.TotalIncome = sum.TotalIncome.Add(m.QuantityChange)
			case -1:
				sum.TotalExpense = sum.TotalExpense.Add(m.QuantityChange.Neg())
			}
		}
	})
	return sum, nil
}

// OutboxRepo cola de eventos en memoria.
type OutboxRepo struct{ v view }

func (r *OutboxRepo) Enqueue(_ context.Context, e *entity.OutboxEvent) error {
	return r.v.write(func(st *state) error {
		st.outbox = append(st.outbox, *e)
		return nil
	})
}

func (r *OutboxRepo) FetchPending(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	out := []*entity.OutboxEvent{}
	r.v.read(func(st *state) {
		for _, e := range st.outbox {
			e := e
			if e.PublishedAt != nil {
				continue
			}
			out = append(out, &e)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

func (r *OutboxRepo) MarkPublished(_ context.Context, ids []string, at time.Time) error {
	return r.v.write(func(st *state) error {
		for i := range st.outbox {
			if slices.Contains(ids, st.outbox[i].ID) {
				t := at
				st.outbox[i].PublishedAt = &t
			}
		}
		return nil
	})
}

func (r *OutboxRepo) MarkFailed(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				st.outbox[i].Attempts++
				return nil
			}
		}
		return fmt.Errorf("evento %s: %w", id, domain.ErrNotFound)
	})
}
