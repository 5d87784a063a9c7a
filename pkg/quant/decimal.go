package quant

import "github.com/shopspring/decimal"

// Wire formats (persistence service DTOs) carry prices as decimal strings.
// These bridges are boundary-only; internal logic stays on int64 micros.

var (
	priceScaleDec = decimal.NewFromInt(PriceScale)
	qtyScaleDec   = decimal.NewFromInt(QtyScale)
)

// PriceFromDecimal converts a wire decimal into PriceMicros, rounding to
// the sixth decimal place.
func PriceFromDecimal(d decimal.Decimal) PriceMicros {
	return PriceMicros(d.Mul(priceScaleDec).Round(0).IntPart())
}

// Decimal renders the price as an exact decimal for wire serialization.
func (p PriceMicros) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(priceScaleDec)
}

// QtyFromDecimal converts a wire decimal into QtySats, rounding to the
// eighth decimal place.
func QtyFromDecimal(d decimal.Decimal) QtySats {
	return QtySats(d.Mul(qtyScaleDec).Round(0).IntPart())
}

// Decimal renders the quantity as an exact decimal for wire serialization.
func (q QtySats) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(q)).Div(qtyScaleDec)
}
