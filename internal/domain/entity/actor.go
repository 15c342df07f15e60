package entity

// Tipos de actor que pueden originar un comando.
const (
	ActorTypeEmployee = "EMPLOYEE"
	ActorTypeSeller   = "SELLER"
	ActorTypeSystem   = "SYSTEM"
	ActorTypeCustomer = "CUSTOMER"
)

// Actor descriptor de quien ejecuta un comando. Se copia tal cual en movimientos y sellos de documentos;
// este núcleo no autentica ni autoriza.
type Actor struct {
	Type string
	ID   string
	Name string
}

// Valid indica si el actor tiene un tipo conocido e ID.
func (a Actor) Valid() bool {
	switch a.Type {
	case ActorTypeEmployee, ActorTypeSeller, ActorTypeSystem, ActorTypeCustomer:
		return a.ID != ""
	}
	return false
}

// SystemActor actor usado por procesos internos (relay, verificación).
func SystemActor(name string) Actor {
	return Actor{Type: ActorTypeSystem, ID: "system", Name: name}
}

// Tipos de documento que pueden originar un movimiento.
const (
	DocumentTypeReceiving = "RECEIVING"
	DocumentTypeTransfer  = "TRANSFER"
	DocumentTypeAudit     = "AUDIT"
	DocumentTypeOrder     = "ORDER"
	DocumentTypeManual    = "MANUAL"
)

// DocumentRef referencia al documento que originó un movimiento.
type DocumentRef struct {
	Type   string
	ID     string
	Number string
}
