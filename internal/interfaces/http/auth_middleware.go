package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

// Locals keys para el actor y el vendedor en Fiber.
const (
	LocalActor    = "actor"
	LocalSellerID = "seller_id"
)

// AuthMiddleware valida el Bearer Token JWT y deja en c.Locals el actor y el vendedor.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		actor := entity.Actor{Type: id.ActorType, ID: id.UserID, Name: id.Name}
		if !actor.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_ACTOR", Message: "actor_type desconocido en el token"})
		}
		c.Locals(LocalActor, actor)
		c.Locals(LocalSellerID, id.SellerID)
		return c.Next()
	}
}

// RequireActorType deja pasar solo a los tipos de actor indicados. Usar DESPUÉS de AuthMiddleware.
func RequireActorType(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "actor no encontrado en el token"})
		}
		for _, t := range allowed {
			if actor.Type == t {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "el actor " + actor.Type + " no puede ejecutar esta operación",
		})
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth).
func GetActor(c *fiber.Ctx) (entity.Actor, bool) {
	a, ok := c.Locals(LocalActor).(entity.Actor)
	return a, ok
}

// GetSellerID devuelve el vendedor del contexto (después del middleware de auth).
func GetSellerID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSellerID).(string)
	return s
}
