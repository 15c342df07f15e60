package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// ExpiryReport genera la lista de rotación de una ubicación: lotes con stock disponible que vencen
// dentro de la ventana pedida, para moverlos a venta o darlos de baja antes de perderlos.
type ExpiryReport struct {
	locations repository.BatchLocationRepository
	catalog   Catalog
	now       func() time.Time
}

// NewExpiryReport construye el reporte de vencimientos.
func NewExpiryReport(locations repository.BatchLocationRepository, catalog Catalog) *ExpiryReport {
	return &ExpiryReport{
		locations: locations,
		catalog:   catalog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate devuelve los lotes de loc que vencen en los próximos withinDays días (los vencidos
// incluidos), ordenados por urgencia.
func (r *ExpiryReport) Generate(ctx context.Context, sellerID string, loc entity.Location, withinDays int) ([]dto.ExpiringStockDTO, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if withinDays < 0 {
		withinDays = 0
	}
	// 1. Stock con cantidad en la ubicación
	lines, err := r.locations.ListByLocation(ctx, sellerID, loc, true)
	if err != nil {
		return nil, err
	}

	now := r.now()
	limit := now.AddDate(0, 0, withinDays)
	names := map[string]string{}

	// 2. Filtrar por ventana y disponibilidad
	out := make([]dto.ExpiringStockDTO, 0, len(lines))
	for _, l := range lines {
		l := l
		available := l.Available()
		if !available.IsPositive() || l.EffectiveExpiration.After(limit) {
			continue
		}
		name, ok := names[l.ProductID]
		if !ok {
			if p, err := r.catalog.GetProduct(ctx, l.ProductID); err == nil && p != nil {
				name = p.Name
			}
			names[l.ProductID] = name
		}
		days := int(l.EffectiveExpiration.Sub(now).Hours() / 24)
		out = append(out, dto.ExpiringStockDTO{
			BatchLocationID:     l.ID,
			BatchID:             l.BatchID,
			BatchNumber:         l.BatchNumber,
			ProductID:           l.ProductID,
			ProductName:         name,
			Available:           available,
			Freshness:           l.Freshness,
			EffectiveExpiration: l.EffectiveExpiration,
			DaysToExpiry:        days,
			Expired:             !l.EffectiveExpiration.After(now),
		})
	}

	// 3. Ordenar: vencidos primero, luego menos días, menor frescura y mayor cantidad en riesgo.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Expired != b.Expired {
			return a.Expired
		}
		if !a.EffectiveExpiration.Equal(b.EffectiveExpiration) {
			return a.EffectiveExpiration.Before(b.EffectiveExpiration)
		}
		if a.Freshness != b.Freshness {
			return a.Freshness < b.Freshness
		}
		return a.Available.GreaterThan(b.Available)
	})

	// 4. Asignar prioridad (1 = más urgente)
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
