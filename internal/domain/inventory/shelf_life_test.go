package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCalculateInitialFreshness_SinProduccionEsMaxima(t *testing.T) {
	cond := entity.DefaultStorageConditions()
	exp := now.AddDate(0, 0, 30)

	got := inventory.CalculateInitialFreshness(cond, exp, now)

	assert.InDelta(t, 10.0, got.Freshness, 1e-9)
	assert.True(t, got.EffectiveExpiration.Equal(exp))
}

func TestCalculateInitialFreshness_ProporcionalAVidaRestante(t *testing.T) {
	cond := entity.DefaultStorageConditions()
	prod := now.AddDate(0, 0, -10)
	exp := now.AddDate(0, 0, 10)

	got := inventory.CalculateInitialFreshnessFrom(cond, &prod, exp, now)

	assert.InDelta(t, 5.0, got.Freshness, 1e-9, "mitad de la vida útil consumida")
}

func TestCalculateInitialFreshness_CoeficienteSeveroAcortaVencimiento(t *testing.T) {
	cond := entity.DefaultStorageConditions()
	cond.DegradationCoefficient = 2
	exp := now.AddDate(0, 0, 20)

	got := inventory.CalculateInitialFreshness(cond, exp, now)

	assert.InDelta(t, 5.0, got.Freshness, 1e-9)
	assert.True(t, got.EffectiveExpiration.Equal(now.AddDate(0, 0, 10)))
}

func TestCalculateInitialFreshness_VencidoEsCero(t *testing.T) {
	got := inventory.CalculateInitialFreshness(entity.DefaultStorageConditions(), now.AddDate(0, 0, -1), now)
	assert.Equal(t, 0.0, got.Freshness)
}

// Caso 1: un vencimiento a siglos no desborda la duración; el vencimiento efectivo queda en el futuro.
func TestCalculateInitialFreshness_VencimientoLejanoNoDesborda(t *testing.T) {
	cond := entity.DefaultStorageConditions()
	exp := now.AddDate(400, 0, 0)

	got := inventory.CalculateInitialFreshness(cond, exp, now)

	assert.InDelta(t, 10.0, got.Freshness, 1e-9)
	assert.True(t, got.EffectiveExpiration.After(now))
	assert.False(t, got.EffectiveExpiration.After(exp))
}

func TestCalculateInitialFreshness_CoeficienteInvalidoSeNormaliza(t *testing.T) {
	cond := entity.DefaultStorageConditions()
	cond.DegradationCoefficient = -3
	got := inventory.CalculateInitialFreshness(cond, now.AddDate(0, 0, 5), now)
	assert.InDelta(t, 10.0, got.Freshness, 1e-9)
}

func TestRecalculateForNewLocation_NuncaAumenta(t *testing.T) {
	cases := []struct {
		name             string
		prev, days, o, n float64
	}{
		{"destino más suave", 8, 0, 2, 0.5},
		{"mismo coeficiente", 8, 3, 1, 1},
		{"destino más severo", 8, 1, 1, 2},
		{"días negativos", 6, -5, 1, 1},
		{"frescura fuera de escala", 14, 0, 1, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.RecalculateForNewLocation(tc.prev, tc.days, tc.o, tc.n)
			assert.LessOrEqual(t, got, 10.0)
			assert.GreaterOrEqual(t, got, 0.0)
			if tc.prev <= 10 {
				assert.LessOrEqual(t, got, tc.prev)
			}
		})
	}
}

func TestRecalculateForNewLocation_DestinoSeveroDegradaMas(t *testing.T) {
	same := inventory.RecalculateForNewLocation(8, 2, 1, 1)
	harsh := inventory.RecalculateForNewLocation(8, 2, 1, 2)

	assert.InDelta(t, 7.8, same, 1e-9)
	assert.InDelta(t, 3.9, harsh, 1e-9)
}

func TestRecalculateExpiration_NuncaExtiende(t *testing.T) {
	exp := now.AddDate(0, 0, 10)

	assert.True(t, inventory.RecalculateExpiration(exp, now, 2, 1).Equal(exp))
	assert.True(t, inventory.RecalculateExpiration(exp, now, 1, 2).Equal(now.AddDate(0, 0, 5)))
}

func TestCoefficientAt_FueraDeRango(t *testing.T) {
	cond := entity.DefaultStorageConditions()

	assert.InDelta(t, 1.0, inventory.CoefficientAt(cond, entity.StorageProfile{Temperature: 20, Humidity: 50}), 1e-9)
	assert.InDelta(t, 1.5, inventory.CoefficientAt(cond, entity.StorageProfile{Temperature: 30, Humidity: 50}), 1e-9)
	assert.InDelta(t, 2.25, inventory.CoefficientAt(cond, entity.StorageProfile{Temperature: 30, Humidity: 90}), 1e-9)
}

func TestApplyPenalty_SeAjustaALaEscala(t *testing.T) {
	assert.InDelta(t, 9.9, inventory.ApplyPenalty(10, 0.1), 1e-9)
	assert.Equal(t, 0.0, inventory.ApplyPenalty(0.05, 0.1))
	assert.Equal(t, 5.0, inventory.ApplyPenalty(5, -1))
}
