package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ReceivingRepository = (*ReceivingRepo)(nil)
	_ repository.TransferRepository  = (*TransferRepo)(nil)
	_ repository.AuditRepository     = (*AuditRepo)(nil)
)

// Las líneas y los sellos de actor de los documentos se guardan como JSONB; el documento
// se reescribe completo en cada Update.

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones
// ──────────────────────────────────────────────────────────────────────────────

// ReceivingRepo recepciones sobre PostgreSQL.
type ReceivingRepo struct {
	q Querier
}

// NewReceivingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivingRepository(q Querier) *ReceivingRepo {
	return &ReceivingRepo{q: q}
}

const receivingColumns = `id, seller_id, document_number, type, status, location_kind, location_id,
	supplier, supplier_invoice, comment, items, total_amount, total_quantity,
	created_by, confirmed_by, confirmed_at, cancelled_at, created_at, updated_at`

func (r *ReceivingRepo) MaxDocumentNumber(ctx context.Context, sellerID, prefix string) (string, error) {
	return maxDocumentNumber(ctx, r.q, "receivings", sellerID, prefix)
}

// Create persiste la recepción. domain.ErrConflict si el número ya existe.
func (r *ReceivingRepo) Create(ctx context.Context, rc *entity.Receiving) error {
	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	args, err := receivingArgs(rc)
	if err != nil {
		return err
	}
	query := `INSERT INTO receivings (` + receivingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = r.q.Exec(ctx, query, args...)
	return wrapWrite("create receiving", err)
}

func (r *ReceivingRepo) GetByID(ctx context.Context, id string) (*entity.Receiving, error) {
	return r.get(ctx, `SELECT `+receivingColumns+` FROM receivings WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del documento; dos flujos concurrentes sobre el mismo documento se
// serializan y el segundo ve el estado ya confirmado por el primero.
func (r *ReceivingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receiving, error) {
	return r.get(ctx, `SELECT `+receivingColumns+` FROM receivings WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReceivingRepo) get(ctx context.Context, query, id string) (*entity.Receiving, error) {
	rc, err := scanReceiving(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving: %w", err)
	}
	return rc, nil
}

// Update reemplaza cabecera y líneas.
func (r *ReceivingRepo) Update(ctx context.Context, rc *entity.Receiving) error {
	args, err := receivingArgs(rc)
	if err != nil {
		return err
	}
	query := `
		UPDATE receivings SET document_number = $3, type = $4, status = $5, location_kind = $6, location_id = $7,
			supplier = $8, supplier_invoice = $9, comment = $10, items = $11, total_amount = $12, total_quantity = $13,
			created_by = $14, confirmed_by = $15, confirmed_at = $16, cancelled_at = $17, created_at = $18, updated_at = $19
		WHERE id = $1 AND seller_id = $2`
	return execUpdate(ctx, r.q, "receiving", rc.ID, query, args)
}

func (r *ReceivingRepo) List(ctx context.Context, f repository.DocumentListFilter) ([]*entity.Receiving, error) {
	query, args := listQuery(receivingColumns, "receivings", f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receivings: %w", err)
	}
	defer rows.Close()
	list := []*entity.Receiving{}
	for rows.Next() {
		rc, err := scanReceiving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receiving: %w", err)
		}
		list = append(list, rc)
	}
	return list, rows.Err()
}

func receivingArgs(rc *entity.Receiving) ([]any, error) {
	items, err := json.Marshal(rc.Items)
	if err != nil {
		return nil, fmt.Errorf("serializar líneas de recepción: %w", err)
	}
	createdBy, confirmedBy, err := actorsJSON(&rc.CreatedBy, rc.ConfirmedBy)
	if err != nil {
		return nil, err
	}
	return []any{
		rc.ID, rc.SellerID, rc.DocumentNumber, rc.Type, rc.Status, string(rc.Destination.Kind), rc.Destination.ID,
		rc.Supplier, rc.SupplierInvoice, rc.Comment, items, rc.TotalAmount, rc.TotalQuantity,
		createdBy, confirmedBy, rc.ConfirmedAt, rc.CancelledAt, rc.CreatedAt, rc.UpdatedAt,
	}, nil
}

func scanReceiving(row pgx.Row) (*entity.Receiving, error) {
	var rc entity.Receiving
	var kind, locID string
	var items, createdBy, confirmedBy []byte
	err := row.Scan(
		&rc.ID, &rc.SellerID, &rc.DocumentNumber, &rc.Type, &rc.Status, &kind, &locID,
		&rc.Supplier, &rc.SupplierInvoice, &rc.Comment, &items, &rc.TotalAmount, &rc.TotalQuantity,
		&createdBy, &confirmedBy, &rc.ConfirmedAt, &rc.CancelledAt, &rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rc.Destination = parseLocation(kind, locID)
	if err := json.Unmarshal(items, &rc.Items); err != nil {
		return nil, fmt.Errorf("líneas de recepción: %w", err)
	}
	if err := json.Unmarshal(createdBy, &rc.CreatedBy); err != nil {
		return nil, fmt.Errorf("created_by: %w", err)
	}
	if rc.ConfirmedBy, err = optionalActor(confirmedBy); err != nil {
		return nil, err
	}
	return &rc, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

// TransferRepo traslados sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, seller_id, document_number, type, status, source_kind, source_id, target_kind, target_id,
	comment, items, created_by, sent_by, sent_at, received_by, received_at, cancelled_by, cancelled_at,
	created_at, updated_at`

func (r *TransferRepo) MaxDocumentNumber(ctx context.Context, sellerID, prefix string) (string, error) {
	return maxDocumentNumber(ctx, r.q, "transfers", sellerID, prefix)
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	args, err := transferArgs(t)
	if err != nil {
		return err
	}
	query := `INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = r.q.Exec(ctx, query, args...)
	return wrapWrite("create transfer", err)
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del documento; dos flujos concurrentes sobre el mismo documento se
// serializan y el segundo ve el estado ya confirmado por el primero.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	args, err := transferArgs(t)
	if err != nil {
		return err
	}
	query := `
		UPDATE transfers SET document_number = $3, type = $4, status = $5, source_kind = $6, source_id = $7,
			target_kind = $8, target_id = $9, comment = $10, items = $11, created_by = $12, sent_by = $13, sent_at = $14,
			received_by = $15, received_at = $16, cancelled_by = $17, cancelled_at = $18, created_at = $19, updated_at = $20
		WHERE id = $1 AND seller_id = $2`
	return execUpdate(ctx, r.q, "transfer", t.ID, query, args)
}

func (r *TransferRepo) List(ctx context.Context, f repository.DocumentListFilter) ([]*entity.Transfer, error) {
	query, args := listQuery(transferColumns, "transfers", f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	list := []*entity.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func transferArgs(t *entity.Transfer) ([]any, error) {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return nil, fmt.Errorf("serializar líneas de traslado: %w", err)
	}
	createdBy, sentBy, err := actorsJSON(&t.CreatedBy, t.SentBy)
	if err != nil {
		return nil, err
	}
	receivedBy, cancelledBy, err := actorsJSON(t.ReceivedBy, t.CancelledBy)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID, t.SellerID, t.DocumentNumber, t.Type, t.Status,
		string(t.Source.Kind), t.Source.ID, string(t.Target.Kind), t.Target.ID,
		t.Comment, items, createdBy, sentBy, t.SentAt, receivedBy, t.ReceivedAt, cancelledBy, t.CancelledAt,
		t.CreatedAt, t.UpdatedAt,
	}, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var srcKind, srcID, dstKind, dstID string
	var items, createdBy, sentBy, receivedBy, cancelledBy []byte
	err := row.Scan(
		&t.ID, &t.SellerID, &t.DocumentNumber, &t.Type, &t.Status, &srcKind, &srcID, &dstKind, &dstID,
		&t.Comment, &items, &createdBy, &sentBy, &t.SentAt, &receivedBy, &t.ReceivedAt, &cancelledBy, &t.CancelledAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Source = parseLocation(srcKind, srcID)
	t.Target = parseLocation(dstKind, dstID)
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("líneas de traslado: %w", err)
	}
	if err := json.Unmarshal(createdBy, &t.CreatedBy); err != nil {
		return nil, fmt.Errorf("created_by: %w", err)
	}
	if t.SentBy, err = optionalActor(sentBy); err != nil {
		return nil, err
	}
	if t.ReceivedBy, err = optionalActor(receivedBy); err != nil {
		return nil, err
	}
	if t.CancelledBy, err = optionalActor(cancelledBy); err != nil {
		return nil, err
	}
	return &t, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditorías
// ──────────────────────────────────────────────────────────────────────────────

// AuditRepo auditorías sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

const auditColumns = `id, seller_id, document_number, type, status, location_kind, location_id, filter, comment, items,
	total_items, counted_items, discrepancy_items, total_surplus, total_shortage,
	created_by, started_at, completed_by, completed_at, applied_by, applied_at, cancelled_at, created_at, updated_at`

func (r *AuditRepo) MaxDocumentNumber(ctx context.Context, sellerID, prefix string) (string, error) {
	return maxDocumentNumber(ctx, r.q, "audits", sellerID, prefix)
}

func (r *AuditRepo) Create(ctx context.Context, a *entity.Audit) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	args, err := auditArgs(a)
	if err != nil {
		return err
	}
	query := `INSERT INTO audits (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.q.Exec(ctx, query, args...)
	return wrapWrite("create audit", err)
}

func (r *AuditRepo) GetByID(ctx context.Context, id string) (*entity.Audit, error) {
	return r.get(ctx, `SELECT `+auditColumns+` FROM audits WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del documento; dos flujos concurrentes sobre el mismo documento se
// serializan y el segundo ve el estado ya confirmado por el primero.
func (r *AuditRepo) GetForUpdate(ctx context.Context, id string) (*entity.Audit, error) {
	return r.get(ctx, `SELECT `+auditColumns+` FROM audits WHERE id = $1 FOR UPDATE`, id)
}

func (r *AuditRepo) get(ctx context.Context, query, id string) (*entity.Audit, error) {
	a, err := scanAudit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit: %w", err)
	}
	return a, nil
}

func (r *AuditRepo) Update(ctx context.Context, a *entity.Audit) error {
	args, err := auditArgs(a)
	if err != nil {
		return err
	}
	query := `
		UPDATE audits SET document_number = $3, type = $4, status = $5, location_kind = $6, location_id = $7,
			filter = $8, comment = $9, items = $10, total_items = $11, counted_items = $12, discrepancy_items = $13,
			total_surplus = $14, total_shortage = $15, created_by = $16, started_at = $17, completed_by = $18,
			completed_at = $19, applied_by = $20, applied_at = $21, cancelled_at = $22, created_at = $23, updated_at = $24
		WHERE id = $1 AND seller_id = $2`
	return execUpdate(ctx, r.q, "audit", a.ID, query, args)
}

func (r *AuditRepo) List(ctx context.Context, f repository.DocumentListFilter) ([]*entity.Audit, error) {
	query, args := listQuery(auditColumns, "audits", f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()
	list := []*entity.Audit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func auditArgs(a *entity.Audit) ([]any, error) {
	items, err := json.Marshal(a.Items)
	if err != nil {
		return nil, fmt.Errorf("serializar líneas de auditoría: %w", err)
	}
	filter, err := json.Marshal(a.Filter)
	if err != nil {
		return nil, fmt.Errorf("serializar filtro de auditoría: %w", err)
	}
	createdBy, completedBy, err := actorsJSON(&a.CreatedBy, a.CompletedBy)
	if err != nil {
		return nil, err
	}
	appliedBy, _, err := actorsJSON(a.AppliedBy, nil)
	if err != nil {
		return nil, err
	}
	return []any{
		a.ID, a.SellerID, a.DocumentNumber, a.Type, a.Status, string(a.Location.Kind), a.Location.ID, filter, a.Comment, items,
		a.TotalItems, a.CountedItems, a.DiscrepancyItems, a.TotalSurplus, a.TotalShortage,
		createdBy, a.StartedAt, completedBy, a.CompletedAt, appliedBy, a.AppliedAt, a.CancelledAt, a.CreatedAt, a.UpdatedAt,
	}, nil
}

func scanAudit(row pgx.Row) (*entity.Audit, error) {
	var a entity.Audit
	var kind, locID string
	var filter, items, createdBy, completedBy, appliedBy []byte
	err := row.Scan(
		&a.ID, &a.SellerID, &a.DocumentNumber, &a.Type, &a.Status, &kind, &locID, &filter, &a.Comment, &items,
		&a.TotalItems, &a.CountedItems, &a.DiscrepancyItems, &a.TotalSurplus, &a.TotalShortage,
		&createdBy, &a.StartedAt, &completedBy, &a.CompletedAt, &appliedBy, &a.AppliedAt, &a.CancelledAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Location = parseLocation(kind, locID)
	if err := json.Unmarshal(filter, &a.Filter); err != nil {
		return nil, fmt.Errorf("filtro de auditoría: %w", err)
	}
	if err := json.Unmarshal(items, &a.Items); err != nil {
		return nil, fmt.Errorf("líneas de auditoría: %w", err)
	}
	if err := json.Unmarshal(createdBy, &a.CreatedBy); err != nil {
		return nil, fmt.Errorf("created_by: %w", err)
	}
	if a.CompletedBy, err = optionalActor(completedBy); err != nil {
		return nil, err
	}
	if a.AppliedBy, err = optionalActor(appliedBy); err != nil {
		return nil, err
	}
	return &a, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// maxDocumentNumber mayor número con el prefijo; los de más dígitos ganan aunque el orden léxico diga otra cosa.
func maxDocumentNumber(ctx context.Context, q Querier, table, sellerID, prefix string) (string, error) {
	query := `SELECT document_number FROM ` + table + `
		WHERE seller_id = $1 AND document_number LIKE $2
		ORDER BY length(document_number) DESC, document_number DESC
		LIMIT 1`
	var number string
	err := q.QueryRow(ctx, query, sellerID, numberPattern(prefix)).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("max document number %s: %w", table, err)
	}
	return number, nil
}

func listQuery(columns, table string, f repository.DocumentListFilter) (string, []any) {
	query := `SELECT ` + columns + ` FROM ` + table + ` WHERE seller_id = $1`
	args := []any{f.SellerID}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY length(document_number) DESC, document_number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func execUpdate(ctx context.Context, q Querier, kind, id, query string, args []any) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return wrapWrite("update "+kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s %s: no existe", kind, id)
	}
	return nil
}

// actorsJSON serializa dos sellos de actor; nil se guarda como NULL.
func actorsJSON(a, b *entity.Actor) (any, any, error) {
	ja, err := actorJSON(a)
	if err != nil {
		return nil, nil, err
	}
	jb, err := actorJSON(b)
	if err != nil {
		return nil, nil, err
	}
	return ja, jb, nil
}

func actorJSON(a *entity.Actor) (any, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("serializar actor: %w", err)
	}
	return raw, nil
}

func optionalActor(raw []byte) (*entity.Actor, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var a entity.Actor
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("actor: %w", err)
	}
	return &a, nil
}
