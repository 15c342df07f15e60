package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ReceivingRepository = (*ReceivingRepo)(nil)
	_ repository.TransferRepository  = (*TransferRepo)(nil)
	_ repository.AuditRepository     = (*AuditRepo)(nil)
)

// ReceivingRepo recepciones en memoria; la unicidad (vendedor, número) se valida en Create.
type ReceivingRepo struct{ v view }

func (r *ReceivingRepo) MaxDocumentNumber(_ context.Context, sellerID, prefix string) (string, error) {
	var numbers []string
	r.v.read(func(st *state) {
		for _, doc := range st.receivings {
			if doc.SellerID == sellerID {
				numbers = append(numbers, doc.DocumentNumber)
			}
		}
	})
	return maxNumber(numbers, prefix), nil
}

func (r *ReceivingRepo) Create(_ context.Context, in *entity.Receiving) error {
	return r.v.write(func(st *state) error {
		for _, doc := range st.receivings {
			if doc.SellerID == in.SellerID && doc.DocumentNumber == in.DocumentNumber {
				return fmt.Errorf("recepción %s: %w", in.DocumentNumber, domain.ErrConflict)
			}
		}
		st.receivings[in.ID] = cloneReceiving(*in)
		return nil
	})
}

func (r *ReceivingRepo) GetByID(_ context.Context, id string) (*entity.Receiving, error) {
	var out *entity.Receiving
	r.v.read(func(st *state) {
		if doc, ok := st.receivings[id]; ok {
			c := cloneReceiving(doc)
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: Store.Run ya serializa las transacciones.
func (r *ReceivingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error) {
	return r.GetByID(ctx, id)
}

func (r *ReceivingRepo) Update(_ context.Context, in *entity.Receiving) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.receivings[in.ID]; !ok {
			return fmt.Errorf("recepción %s: %w", in.ID, domain.ErrNotFound)
		}
		st.receivings[in.ID] = cloneReceiving(*in)
		return nil
	})
}

func (r *ReceivingRepo) List(_ context.Context, f repository.DocumentListFilter) ([]*entity.Receiving, error) {
	out := []*entity.Receiving{}
	r.v.read(func(st *state) {
		for _, doc := range st.receivings {
			if doc.SellerID == f.SellerID && (f.Status == "" || doc.Status == f.Status) {
				c := cloneReceiving(doc)
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber > out[j].DocumentNumber })
	return page(out, f.Limit, f.Offset), nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ v view }

func (r *TransferRepo) MaxDocumentNumber(_ context.Context, sellerID, prefix string) (string, error) {
	var numbers []string
	r.v.read(func(st *state) {
		for _, doc := range st.transfers {
			if doc.SellerID == sellerID {
				numbers = append(numbers, doc.DocumentNumber)
			}
		}
	})
	return maxNumber(numbers, prefix), nil
}

func (r *TransferRepo) Create(_ context.Context, in *entity.Transfer) error {
	return r.v.write(func(st *state) error {
		for _, doc := range st.transfers {
			if doc.SellerID == in.SellerID && doc.DocumentNumber == in.DocumentNumber {
				return fmt.Errorf("traslado %s: %w", in.DocumentNumber, domain.ErrConflict)
			}
		}
		st.transfers[in.ID] = cloneTransfer(*in)
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	r.v.read(func(st *state) {
		if doc, ok := st.transfers[id]; ok {
			c := cloneTransfer(doc)
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: Store.Run ya serializa las transacciones.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(_ context.Context, in *entity.Transfer) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.transfers[in.ID]; !ok {
			return fmt.Errorf("traslado %s: %w", in.ID, domain.ErrNotFound)
		}
		st.transfers[in.ID] = cloneTransfer(*in)
		return nil
	})
}

func (r *TransferRepo) List(_ context.Context, f repository.DocumentListFilter) ([]*entity.Transfer, error) {
	out := []*entity.Transfer{}
	r.v.read(func(st *state) {
		for _, doc := range st.transfers {
			if doc.SellerID == f.SellerID && (f.Status == "" || doc.Status == f.Status) {
				c := cloneTransfer(doc)
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber > out[j].DocumentNumber })
	return page(out, f.Limit, f.Offset), nil
}

// AuditRepo auditorías en memoria.
type AuditRepo struct{ v view }

func (r *AuditRepo) MaxDocumentNumber(_ context.Context, sellerID, prefix string) (string, error) {
	var numbers []string
	r.v.read(func(st *state) {
		for _, doc := range st.audits {
			if doc.SellerID == sellerID {
				numbers = append(numbers, doc.DocumentNumber)
			}
		}
	})
	return maxNumber(numbers, prefix), nil
}

func (r *AuditRepo) Create(_ context.Context, in *entity.Audit) error {
	return r.v.write(func(st *state) error {
		for _, doc := range st.audits {
			if doc.SellerID == in.SellerID && doc.DocumentNumber == in.DocumentNumber {
				return fmt.Errorf("auditoría %s: %w", in.DocumentNumber, domain.ErrConflict)
			}
		}
		st.audits[in.ID] = cloneAudit(*in)
		return nil
	})
}

func (r *AuditRepo) GetByID(_ context.Context, id string) (*entity.Audit, error) {
	var out *entity.Audit
	r.v.read(func(st *state) {
		if doc, ok := st.audits[id]; ok {
			c := cloneAudit(doc)
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: Store.Run ya serializa las transacciones.
func (r *AuditRepo) GetForUpdate(ctx context.Context, id string) (*entity.Audit, error) {
	return r.GetByID(ctx, id)
}

func (r *AuditRepo) Update(_ context.Context, in *entity.Audit) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.audits[in.ID]; !ok {
			return fmt.Errorf("auditoría %s: %w", in.ID, domain.ErrNotFound)
		}
		st.audits[in.ID] = cloneAudit(*in)
		return nil
	})
}

func (r *AuditRepo) List(_ context.Context, f repository.DocumentListFilter) ([]*entity.Audit, error) {
	out := []*entity.Audit{}
	r.v.read(func(st *state) {
		for _, doc := range st.audits {
			if doc.SellerID == f.SellerID && (f.Status == "" || doc.Status == f.Status) {
				c := cloneAudit(doc)
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber > out[j].DocumentNumber })
	return page(out, f.Limit, f.Offset), nil
}
