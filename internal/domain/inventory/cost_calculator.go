package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((OnHand * CostoActual) + (CantEntrada * CostoEntrada)) / (OnHand + CantEntrada)
// Solo las entradas y ajustes positivos recalculan el promedio; salidas y traslados
// no tocan el costo del stock restante en origen.
func WeightedAverageCost(onHand, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := onHand.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := onHand.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum)
}
