// Package memory implementa los puertos de persistencia en memoria para pruebas y modo demo (STORE=memory).
package memory

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

var (
	_ inventory.TxRunner          = (*Store)(nil)
	_ inventory.Catalog           = (*Store)(nil)
	_ inventory.LocationDirectory = (*Store)(nil)
)

// state todo lo que una transacción puede modificar; Run toma una copia para poder revertir.
type state struct {
	batches        map[string]entity.Batch
	batchLocations map[string]entity.BatchLocation
	movements      []entity.Movement
	receivings     map[string]entity.Receiving
	transfers      map[string]entity.Transfer
	audits         map[string]entity.Audit
	outbox         []entity.OutboxEvent
}

func newState() *state {
	return &state{
		batches:        make(map[string]entity.Batch),
		batchLocations: make(map[string]entity.BatchLocation),
		receivings:     make(map[string]entity.Receiving),
		transfers:      make(map[string]entity.Transfer),
		audits:         make(map[string]entity.Audit),
	}
}

func (st *state) clone() *state {
	c := &state{
		batches:        maps.Clone(st.batches),
		batchLocations: maps.Clone(st.batchLocations),
		movements:      slices.Clone(st.movements),
		receivings:     make(map[string]entity.Receiving, len(st.receivings)),
		transfers:      make(map[string]entity.Transfer, len(st.transfers)),
		audits:         make(map[string]entity.Audit, len(st.audits)),
		outbox:         slices.Clone(st.outbox),
	}
	for k, v := range st.receivings {
		c.receivings[k] = cloneReceiving(v)
	}
	for k, v := range st.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range st.audits {
		c.audits[k] = cloneAudit(v)
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con un único mutex y revierten
// restaurando la copia tomada al inicio.
type Store struct {
	mu   sync.Mutex
	data *state

	catalogMu sync.RWMutex
	products  map[string]entity.Product
	locations map[string]entity.LocationInfo
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		data:      newState(),
		products:  make(map[string]entity.Product),
		locations: make(map[string]entity.LocationInfo),
	}
}

// Repos devuelve los repositorios para uso fuera de transacción (cada llamada toma el mutex).
func (s *Store) Repos() inventory.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) inventory.Repos {
	v := view{s: s, inTx: inTx}
	return inventory.Repos{
		Batches:    &BatchRepo{v},
		Locations:  &BatchLocationRepo{v},
		Movements:  &MovementRepo{v},
		Receivings: &ReceivingRepo{v},
		Transfers:  &TransferRepo{v},
		Audits:     &AuditRepo{v},
		Outbox:     &OutboxRepo{v},
	}
}

// Run ejecuta fn con el mutex tomado; si fn falla restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// view acceso al estado: dentro de Run el mutex ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read(fn func(st *state)) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn(v.s.data)
}

func (v view) write(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.data)
}

// ─── Catálogo y directorio de ubicaciones ─────────────────────────────────────

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.products[p.ID] = p
}

// PutLocation registra o reemplaza una tienda o bodega del directorio.
func (s *Store) PutLocation(info entity.LocationInfo) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.locations[info.Location.String()] = info
}

// GetProduct devuelve nil, nil si el producto no existe.
func (s *Store) GetProduct(_ context.Context, productID string) (*entity.Product, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetLocation devuelve nil, nil si la ubicación no existe.
func (s *Store) GetLocation(_ context.Context, loc entity.Location) (*entity.LocationInfo, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	info, ok := s.locations[loc.String()]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// maxNumber mayor número de documento con el prefijo dado, comparando el sufijo numérico.
func maxNumber(numbers []string, prefix string) string {
	best, bestN := "", -1
	for _, num := range numbers {
		if !strings.HasPrefix(num, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(num, prefix))
		if err != nil {
			continue
		}
		if n > bestN {
			best, bestN = num, n
		}
	}
	return best
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneReceiving(r entity.Receiving) entity.Receiving {
	r.Items = slices.Clone(r.Items)
	return r
}

func cloneTransfer(t entity.Transfer) entity.Transfer {
	t.Items = slices.Clone(t.Items)
	return t
}

func cloneAudit(a entity.Audit) entity.Audit {
	a.Items = slices.Clone(a.Items)
	a.Filter.ProductIDs = slices.Clone(a.Filter.ProductIDs)
	return a
}
