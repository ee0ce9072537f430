// Package costing implementa el costeo promedio ponderado y el precio sugerido
// como funciones puras (servicio de dominio, sin efectos secundarios).
package costing

import "github.com/shopspring/decimal"

// WeightedAverage calcula el nuevo costo promedio al ingresar stock.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la suma de cantidades es cero, el resultado es el costo de la entrada.
func WeightedAverage(currentQty int64, currentAvgCost decimal.Decimal, incomingQty int64, incomingUnitCost decimal.Decimal) decimal.Decimal {
	cur := decimal.NewFromInt(currentQty)
	inc := decimal.NewFromInt(incomingQty)
	sum := cur.Add(inc)
	if sum.LessThanOrEqual(decimal.Zero) {
		return incomingUnitCost
	}
	num := cur.Mul(currentAvgCost).Add(inc.Mul(incomingUnitCost))
	return num.Div(sum)
}

// SuggestPrice calcula el precio de venta sugerido desde el costo promedio:
// precio = costo * (1 + margen/100), redondeado a 2 decimales.
// Solo aplica cuando el producto está en modo de precio automático y el
// llamador lo solicita; esta función no decide eso.
func SuggestPrice(avgCost, marginPercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(hundred))
	return avgCost.Mul(factor).Round(2)
}
