package entity

// StorageConditions preset de almacenamiento de un producto: rangos aceptables de
// temperatura (°C) y humedad (%) y coeficiente base de degradación (1.0 = normal).
type StorageConditions struct {
	Code                   string
	TemperatureMin         float64
	TemperatureMax         float64
	HumidityMin            float64
	HumidityMax            float64
	DegradationCoefficient float64
}

// DefaultStorageConditions preset usado cuando el catálogo no define uno.
func DefaultStorageConditions() StorageConditions {
	return StorageConditions{
		Code:                   "AMBIENT",
		TemperatureMin:         15,
		TemperatureMax:         25,
		HumidityMin:            30,
		HumidityMax:            70,
		DegradationCoefficient: 1.0,
	}
}

// Product vista de solo lectura del catálogo externo: nombre para mostrar,
// categoría (filtros de auditoría) y preset de almacenamiento.
type Product struct {
	ID         string
	SellerID   string
	Name       string
	Category   string
	Conditions StorageConditions
}
