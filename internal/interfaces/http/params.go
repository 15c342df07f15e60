package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// principal vendedor y actor del token; ok=false si el middleware no los dejó.
func principal(c *fiber.Ctx) (string, entity.Actor, bool) {
	sellerID := GetSellerID(c)
	actor, ok := GetActor(c)
	return sellerID, actor, ok && sellerID != ""
}

func indexParam(c *fiber.Ctx) (int, error) {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, fmt.Errorf("índice %q: %w", c.Params("index"), domain.ErrInvalidInput)
	}
	return i, nil
}

func locationParam(c *fiber.Ctx, kindKey, idKey string) (entity.Location, error) {
	loc, err := entity.ParseLocation(c.Params(kindKey), c.Params(idKey))
	if err != nil {
		return entity.Location{}, invalid(err)
	}
	return loc, nil
}

func pageQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// timeQuery acepta RFC3339 o YYYY-MM-DD; vacío devuelve nil.
func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s %q no es una fecha: %w", key, raw, domain.ErrInvalidInput)
}
