package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// RequireActor todo comando lleva un actor válido; se copia tal cual en movimientos y sellos.
func RequireActor(actor entity.Actor) error {
	if !actor.Valid() {
		return fmt.Errorf("actor requerido: %w", domain.ErrInvalidInput)
	}
	return nil
}

// RequireSeller el documento debe pertenecer al vendedor del comando; si no, se trata como inexistente.
func RequireSeller(docSellerID, sellerID string) error {
	if sellerID == "" || docSellerID != sellerID {
		return domain.ErrNotFound
	}
	return nil
}

// RequireStatus valida el estado actual contra los permitidos para la transición.
func RequireStatus(current string, allowed ...string) error {
	for _, s := range allowed {
		if current == s {
			return nil
		}
	}
	return fmt.Errorf("estado %s, se esperaba %v: %w", current, allowed, domain.ErrInvalidTransition)
}

// RequirePositive cantidad estrictamente positiva.
func RequirePositive(field string, q decimal.Decimal) error {
	if !q.IsPositive() {
		return fmt.Errorf("%s debe ser mayor que cero (%s): %w", field, q, domain.ErrInvalidInput)
	}
	return nil
}

// RequireNonNegative cantidad mayor o igual a cero.
func RequireNonNegative(field string, q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("%s no puede ser negativa (%s): %w", field, q, domain.ErrInvalidInput)
	}
	return nil
}

// IndexError convierte el error de índice de una entidad en ErrInvalidInput.
func IndexError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
}
