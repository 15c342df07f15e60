package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYParse_IdaYVuelta(t *testing.T) {
	id := Identity{UserID: "u-1", SellerID: "seller-1", ActorType: "EMPLOYEE", Name: "Ana"}
	token, err := Generate("secreto", "inventory-ledger", 5, id)
	require.NoError(t, err)

	got, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_RechazaFirmaDistinta(t *testing.T) {
	token, err := Generate("secreto", "inventory-ledger", 5, Identity{UserID: "u-1", SellerID: "s-1", ActorType: "SELLER"})
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_RechazaTokenExpirado(t *testing.T) {
	token, err := Generate("secreto", "inventory-ledger", -1, Identity{UserID: "u-1", SellerID: "s-1", ActorType: "SELLER"})
	require.NoError(t, err)

	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestParse_SinVendedor(t *testing.T) {
	token, err := Generate("secreto", "inventory-ledger", 5, Identity{UserID: "u-1", ActorType: "SELLER"})
	require.NoError(t, err)

	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "x", 5, Identity{})
	assert.Error(t, err)
}
