package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Escala y parámetros del cálculo de frescura.
const (
	FreshnessMax = 10.0
	FreshnessMin = 0.0

	// DailyFreshnessLoss puntos de frescura que se pierden por día a coeficiente 1.0.
	DailyFreshnessLoss = 0.1

	// OutOfRangeFactor multiplica el coeficiente por cada eje (temperatura, humedad) fuera de rango.
	OutOfRangeFactor = 1.5
)

// ShelfLife resultado del cálculo: frescura 0–10 y vencimiento efectivo.
type ShelfLife struct {
	Freshness           float64
	EffectiveExpiration time.Time
}

// CalculateInitialFreshness frescura de un lote que llega hoy, sin fecha de producción conocida:
// toda la vida útil restante cuenta como total, solo el coeficiente la reduce.
func CalculateInitialFreshness(conditions entity.StorageConditions, expirationDate, now time.Time) ShelfLife {
	return CalculateInitialFreshnessFrom(conditions, nil, expirationDate, now)
}

// CalculateInitialFreshnessFrom frescura proporcional a la fracción de vida útil restante.
// Con fecha de producción la vida total es producción→vencimiento; el coeficiente acelera el consumo
// de la vida restante. Nunca devuelve un vencimiento efectivo posterior al original.
func CalculateInitialFreshnessFrom(conditions entity.StorageConditions, productionDate *time.Time, expirationDate, now time.Time) ShelfLife {
	remaining := daysBetween(now, expirationDate)
	if remaining <= 0 {
		return ShelfLife{Freshness: FreshnessMin, EffectiveExpiration: expirationDate}
	}
	total := remaining
	if productionDate != nil && productionDate.Before(now) {
		if d := daysBetween(*productionDate, expirationDate); d > total {
			total = d
		}
	}
	coef := normalizeCoefficient(conditions.DegradationCoefficient)
	effRemaining := remaining / coef

	effExp := now.Add(daysToDuration(effRemaining))
	if effExp.After(expirationDate) {
		effExp = expirationDate
	}
	return ShelfLife{
		Freshness:           clampFreshness(FreshnessMax * effRemaining / total),
		EffectiveExpiration: effExp,
	}
}

// RecalculateForNewLocation degrada la frescura por los días pasados en la ubicación anterior y,
// si la nueva ubicación es más severa, escala lo restante. Nunca aumenta la frescura.
func RecalculateForNewLocation(previousFreshness, daysElapsed, oldCoefficient, newCoefficient float64) float64 {
	prev := clampFreshness(previousFreshness)
	if daysElapsed < 0 || math.IsNaN(daysElapsed) {
		daysElapsed = 0
	}
	oldC := normalizeCoefficient(oldCoefficient)
	newC := normalizeCoefficient(newCoefficient)

	f := prev - daysElapsed*DailyFreshnessLoss*oldC
	if newC > oldC {
		f = f * oldC / newC
	}
	f = clampFreshness(f)
	if f > prev {
		return prev
	}
	return f
}

// RecalculateExpiration acorta el vencimiento efectivo si el nuevo coeficiente es más severo. Nunca lo extiende.
func RecalculateExpiration(effectiveExpiration, now time.Time, oldCoefficient, newCoefficient float64) time.Time {
	if !effectiveExpiration.After(now) {
		return effectiveExpiration
	}
	oldC := normalizeCoefficient(oldCoefficient)
	newC := normalizeCoefficient(newCoefficient)
	if newC <= oldC {
		return effectiveExpiration
	}
	remaining := effectiveExpiration.Sub(now)
	return now.Add(time.Duration(float64(remaining) * oldC / newC))
}

// ApplyPenalty resta una penalización fija (manipulación en traslado) y ajusta a la escala.
func ApplyPenalty(freshness, penalty float64) float64 {
	if penalty < 0 {
		penalty = 0
	}
	return clampFreshness(freshness - penalty)
}

// CoefficientAt coeficiente de degradación del producto en una ubicación concreta:
// el preset base, multiplicado por OutOfRangeFactor por cada eje fuera de los límites.
func CoefficientAt(conditions entity.StorageConditions, profile entity.StorageProfile) float64 {
	c := normalizeCoefficient(conditions.DegradationCoefficient)
	if outOfRange(profile.Temperature, conditions.TemperatureMin, conditions.TemperatureMax) {
		c *= OutOfRangeFactor
	}
	if outOfRange(profile.Humidity, conditions.HumidityMin, conditions.HumidityMax) {
		c *= OutOfRangeFactor
	}
	return c
}

// DaysElapsed días (fraccionarios) entre dos instantes; cero si to es anterior a from.
func DaysElapsed(from, to time.Time) float64 {
	d := daysBetween(from, to)
	if d < 0 {
		return 0
	}
	return d
}

func outOfRange(v, lo, hi float64) bool {
	if lo == 0 && hi == 0 {
		return false // preset sin límites
	}
	return v < lo || v > hi
}

func normalizeCoefficient(c float64) float64 {
	if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 1.0
	}
	return c
}

func clampFreshness(f float64) float64 {
	if math.IsNaN(f) {
		return FreshnessMin
	}
	return math.Max(FreshnessMin, math.Min(FreshnessMax, f))
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// daysToDuration satura en los límites de time.Duration (unos 292 años) en lugar de desbordar.
func daysToDuration(days float64) time.Duration {
	ns := days * float64(24*time.Hour)
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}
