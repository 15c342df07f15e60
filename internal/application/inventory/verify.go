package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// Tipos de inconsistencia que reporta Verify.
const (
	MismatchUnbalanced   = "UNBALANCED"    // after != before + change en un movimiento
	MismatchBrokenChain  = "BROKEN_CHAIN"  // before de un movimiento != after del anterior
	MismatchFinalBalance = "FINAL_BALANCE" // último after != cantidad del BatchLocation
	MismatchBatchTotal   = "BATCH_TOTAL"   // cantidad del lote != Σ de sus BatchLocation
)

// Mismatch una inconsistencia entre el libro mayor y el saldo vivo.
type Mismatch struct {
	Kind            string
	BatchID         string
	BatchLocationID string
	MovementID      string
	Expected        decimal.Decimal
	Actual          decimal.Decimal
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s lote=%s ubicación=%s movimiento=%s esperado=%s real=%s",
		m.Kind, m.BatchID, m.BatchLocationID, m.MovementID, m.Expected, m.Actual)
}

// VerifyReport resultado de la verificación de conservación de un vendedor.
type VerifyReport struct {
	SellerID       string
	BatchLocations int
	Movements      int
	Mismatches     []Mismatch
}

// OK indica que no se encontró ninguna inconsistencia.
func (r *VerifyReport) OK() bool { return len(r.Mismatches) == 0 }

// Verifier recalcula los saldos desde el libro mayor y los compara con los registros vivos.
type Verifier struct {
	batches   repository.BatchRepository
	locations repository.BatchLocationRepository
	movements repository.MovementRepository
	log       zerolog.Logger
}

// NewVerifier construye el verificador de conservación.
func NewVerifier(
	batches repository.BatchRepository,
	locations repository.BatchLocationRepository,
	movements repository.MovementRepository,
	log zerolog.Logger,
) *Verifier {
	return &Verifier{batches: batches, locations: locations, movements: movements, log: log}
}

// Verify recorre todos los BatchLocation del vendedor y valida la cadena de movimientos de cada uno:
// cada entrada cuadrada, cada balanceBefore igual al balanceAfter anterior (la primera parte de cero)
// y el último saldo igual a la cantidad viva. También valida que cada lote sume sus ubicaciones.
func (v *Verifier) Verify(ctx context.Context, sellerID string) (*VerifyReport, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id requerido: %w", domain.ErrInvalidInput)
	}
	bls, err := v.locations.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{SellerID: sellerID, BatchLocations: len(bls)}
	sums := make(map[string]decimal.Decimal)
	var order []string

	for _, bl := range bls {
		if _, seen := sums[bl.BatchID]; !seen {
			order = append(order, bl.BatchID)
		}
		sums[bl.BatchID] = sums[bl.BatchID].Add(bl.Quantity)

		chain, err := v.movements.ListByBatchLocation(ctx, bl.ID)
		if err != nil {
			return nil, err
		}
		report.Movements += len(chain)

		running := decimal.Zero
		for _, m := range chain {
			if !m.Balanced() {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Kind: MismatchUnbalanced, BatchID: bl.BatchID, BatchLocationID: bl.ID, MovementID: m.ID,
					Expected: m.BalanceBefore.Add(m.QuantityChange), Actual: m.BalanceAfter,
				})
			}
			if !m.BalanceBefore.Equal(running) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Kind: MismatchBrokenChain, BatchID: bl.BatchID, BatchLocationID: bl.ID, MovementID: m.ID,
					Expected: running, Actual: m.BalanceBefore,
				})
			}
			running = m.BalanceAfter
		}
		if !running.Equal(bl.Quantity) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: MismatchFinalBalance, BatchID: bl.BatchID, BatchLocationID: bl.ID,
				Expected: running, Actual: bl.Quantity,
			})
		}
	}

	for _, batchID := range order {
		b, err := v.batches.GetByID(ctx, batchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		if !b.CurrentQuantity.Equal(sums[batchID]) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: MismatchBatchTotal, BatchID: batchID,
				Expected: sums[batchID], Actual: b.CurrentQuantity,
			})
		}
	}

	if !report.OK() {
		v.log.Warn().Str("seller_id", sellerID).Int("mismatches", len(report.Mismatches)).Msg("libro mayor inconsistente")
	}
	return report, nil
}
