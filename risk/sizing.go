package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// SizeInputs parameterize the dynamic position size.
type SizeInputs struct {
	BaseSize        float64
	MinSize         float64
	MaxSize         float64
	Increment       float64 // venue minimum size increment
	VolatilityIndex float64 // [0,100]
}

// PositionSize computes the dynamic size: low volatility approaches
// BaseSize, high volatility shrinks toward MinSize, asymptotically
// bounded. The result is clamped to [MinSize, MaxSize] and rounded
// down to the venue increment.
func PositionSize(in SizeInputs) float64 {
	size := in.BaseSize * (1 - math.Exp(-0.03*(100-in.VolatilityIndex)))
	if size < in.MinSize {
		size = in.MinSize
	}
	if in.MaxSize > 0 && size > in.MaxSize {
		size = in.MaxSize
	}
	return RoundToIncrement(size, in.Increment)
}

// RoundToIncrement floors size to a multiple of the venue increment.
// Decimal arithmetic avoids float artifacts like 0.0070000000000000001
// leaking into order payloads.
func RoundToIncrement(size, increment float64) float64 {
	if increment <= 0 {
		return size
	}
	d := decimal.NewFromFloat(size)
	inc := decimal.NewFromFloat(increment)
	steps := d.Div(inc).Floor()
	out, _ := steps.Mul(inc).Float64()
	return out
}
