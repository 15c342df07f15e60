package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testSellerID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventory-ledger-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con AuthMiddleware, RequireActorType
// y un handler dummy que devuelve 200 si pasa los middlewares.
func buildTestApp(allowed ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireActorType(allowed...),
		func(c *fiber.Ctx) error {
			actor, _ := apphttp.GetActor(c)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":         true,
				"actor_type": actor.Type,
				"actor_id":   actor.ID,
				"seller_id":  apphttp.GetSellerID(c),
			})
		},
	)
	return app
}

// tokenFor genera un JWT para el tipo de actor indicado.
func tokenFor(t *testing.T, actorType string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, pkgjwt.Identity{
		UserID: testUserID, SellerID: testSellerID, ActorType: actorType, Name: "Ana",
	})
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireActorType
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el actor es de un tipo permitido → HTTP 200 y locals cargados.
func TestRequireActorType_EmpleadoAccede(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee)
	resp := doRequest(t, app, tokenFor(t, entity.ActorTypeEmployee))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.ActorTypeEmployee, body["actor_type"])
	assert.Equal(t, testUserID, body["actor_id"])
	assert.Equal(t, testSellerID, body["seller_id"])
}

// Caso 1b: varios tipos permitidos.
func TestRequireActorType_SistemaAccedeRutaVendedorOSistema(t *testing.T) {
	app := buildTestApp(entity.ActorTypeSeller, entity.ActorTypeSystem)
	resp := doRequest(t, app, tokenFor(t, entity.ActorTypeSystem))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: un cliente final no puede operar inventario → HTTP 403.
func TestRequireActorType_ClienteBloqueado(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee, entity.ActorTypeSeller)
	resp := doRequest(t, app, tokenFor(t, entity.ActorTypeCustomer))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Caso 3: tipo de actor desconocido en el token → HTTP 401 INVALID_ACTOR.
func TestAuthMiddleware_TipoDeActorDesconocido(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee)
	resp := doRequest(t, app, tokenFor(t, "ROBOT"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_ACTOR")
}

// Caso 4: sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeader(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 5: token malformado o firmado con otro secreto → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := pkgjwt.Generate("otro-secreto", testIssuer, testExpMin, pkgjwt.Identity{
		UserID: testUserID, SellerID: testSellerID, ActorType: entity.ActorTypeEmployee,
	})
	require.NoError(t, err)
	resp = doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 6: esquema distinto de Bearer.
func TestAuthMiddleware_EsquemaIncorrecto(t *testing.T) {
	app := buildTestApp(entity.ActorTypeEmployee)
	resp := doRequest(t, app, "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
