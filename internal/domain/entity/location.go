package entity

import (
	"fmt"
	"strings"
)

// LocationKind tipo de ubicación física donde puede haber stock.
type LocationKind string

const (
	LocationKindShop      LocationKind = "SHOP"      // tienda
	LocationKindWarehouse LocationKind = "WAREHOUSE" // bodega
)

// Location identifica una tienda o una bodega. Solo se construye con ShopLocation o
// WarehouseLocation, de modo que nunca hay dos referencias pobladas a la vez.
type Location struct {
	Kind LocationKind
	ID   string
}

// ShopLocation construye la ubicación de una tienda.
func ShopLocation(id string) Location {
	return Location{Kind: LocationKindShop, ID: id}
}

// WarehouseLocation construye la ubicación de una bodega.
func WarehouseLocation(id string) Location {
	return Location{Kind: LocationKindWarehouse, ID: id}
}

// ParseLocation arma una ubicación desde el par (kind, id) recibido por la API.
func ParseLocation(kind, id string) (Location, error) {
	switch LocationKind(strings.ToUpper(kind)) {
	case LocationKindShop:
		return ShopLocation(id).validated()
	case LocationKindWarehouse:
		return WarehouseLocation(id).validated()
	}
	return Location{}, fmt.Errorf("tipo de ubicación desconocido %q", kind)
}

func (l Location) validated() (Location, error) {
	return l, l.Validate()
}

// Validate verifica que el tipo sea conocido y que el ID no esté vacío.
func (l Location) Validate() error {
	if l.Kind != LocationKindShop && l.Kind != LocationKindWarehouse {
		return fmt.Errorf("tipo de ubicación desconocido %q", l.Kind)
	}
	if l.ID == "" {
		return fmt.Errorf("ubicación %s sin id", l.Kind)
	}
	return nil
}

// IsShop indica si la ubicación es una tienda.
func (l Location) IsShop() bool { return l.Kind == LocationKindShop }

// IsWarehouse indica si la ubicación es una bodega.
func (l Location) IsWarehouse() bool { return l.Kind == LocationKindWarehouse }

// IsZero indica si la ubicación no fue asignada.
func (l Location) IsZero() bool { return l.Kind == "" && l.ID == "" }

func (l Location) String() string {
	return string(l.Kind) + ":" + l.ID
}
