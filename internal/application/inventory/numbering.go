package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// DefaultNumberRetries intentos de Create cuando otro documento toma el mismo consecutivo.
const DefaultNumberRetries = 5

// DailyPrefix parte fija del número de documento para una fecha: RCV-20260301-.
func DailyPrefix(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, day.UTC().Format("20060102"))
}

// FormatDocumentNumber número completo PREFIX-YYYYMMDD-NNNN (al menos 4 dígitos).
func FormatDocumentNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", DailyPrefix(prefix, day), seq)
}

// NextDocumentNumber siguiente consecutivo del día para el vendedor. El primero del día es 0001.
// Dos llamadas concurrentes pueden devolver el mismo número; la unicidad la garantiza Create
// (ver CreateWithNumber).
func NextDocumentNumber(ctx context.Context, src repository.DocumentNumberSource, sellerID, prefix string, now time.Time) (string, error) {
	daily := DailyPrefix(prefix, now)
	last, err := src.MaxDocumentNumber(ctx, sellerID, daily)
	if err != nil {
		return "", err
	}
	seq := 0
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, daily))
		if err != nil {
			return "", fmt.Errorf("consecutivo ilegible %q: %w", last, domain.ErrConflict)
		}
		seq = n
	}
	return FormatDocumentNumber(prefix, now, seq+1), nil
}

// CreateWithNumber reserva un número y ejecuta create; si create devuelve domain.ErrConflict
// (número tomado por otra escritura) vuelve a pedir el siguiente hasta retries intentos.
func CreateWithNumber(
	ctx context.Context,
	src repository.DocumentNumberSource,
	sellerID, prefix string,
	now time.Time,
	retries int,
	create func(number string) error,
) (string, error) {
	if retries <= 0 {
		retries = DefaultNumberRetries
	}
	var lastErr error
	for i := 0; i < retries; i++ {
		number, err := NextDocumentNumber(ctx, src, sellerID, prefix, now)
		if err != nil {
			return "", err
		}
		err = create(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("no se pudo reservar número %s tras %d intentos: %w", prefix, retries, lastErr)
}
