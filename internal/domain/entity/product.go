package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de precio del producto.
const (
	PriceModeManual    = "manual"    // el precio lo fija el usuario
	PriceModeAutomatic = "automatic" // el precio se sugiere desde costo + margen
)

// Product representa un producto del catálogo. StockOnHand y AverageCost son
// agregados mantenidos exclusivamente por el motor de inventario: nunca se
// editan desde el CRUD de catálogo.
//
// Invariante: StockOnHand = suma de RemainingQty de lotes activos + LegacyQty.
// LegacyQty es stock heredado sin lote (anterior a la trazabilidad por lotes);
// se modela como campo explícito para que el fallback del asignador FIFO sea
// un camino de primera clase y no un default implícito.
type Product struct {
	ID               string
	SKU              string // código único
	Name             string
	Description      string
	StockOnHand      int64 // unidades totales (lotes activos + legado)
	LegacyQty        int64 // unidades sin lote asociado
	AverageCost      decimal.Decimal
	LastPurchaseCost decimal.Decimal
	Price            decimal.Decimal // precio de venta vigente
	PriceMode        string          // manual | automatic
	MarginPercent    decimal.Decimal // margen sobre costo para precio sugerido
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
