package entity

// StorageProfile condiciones reales de una tienda o bodega.
type StorageProfile struct {
	Temperature float64
	Humidity    float64
}

// LocationInfo representa una tienda o bodega del directorio externo (multi-ubicación).
type LocationInfo struct {
	Location Location
	SellerID string
	Name     string
	Profile  StorageProfile
}
