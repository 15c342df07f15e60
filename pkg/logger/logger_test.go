package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent_AgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "debug", Service: "inventory-ledger", Out: &buf})

	log := l.Component("receiving")
	log.Info().Str("document_number", "REC-20260101-0001").Msg("recepción confirmada")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "inventory-ledger", line["service"])
	assert.Equal(t, "receiving", line["component"])
	assert.Equal(t, "REC-20260101-0001", line["document_number"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("ruidoso"))
}

// Caso: el nivel configurado filtra eventos de menor severidad.
func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "error", Out: &buf})
	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
	l.Error().Msg("sí sale")
	assert.NotZero(t, buf.Len())
}
