package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSizeShrinksWithVolatility(t *testing.T) {
	t.Parallel()

	in := SizeInputs{BaseSize: 0.01, MinSize: 0.001, MaxSize: 0.05, Increment: 0.001}

	var prev float64 = 1
	for _, vol := range []float64{0, 25, 50, 75, 100} {
		in.VolatilityIndex = vol
		size := PositionSize(in)
		assert.LessOrEqual(t, size, prev, "size must not grow with volatility %v", vol)
		assert.GreaterOrEqual(t, size, in.MinSize)
		assert.LessOrEqual(t, size, in.MaxSize)
		prev = size
	}
}

func TestPositionSizeClampedToMin(t *testing.T) {
	t.Parallel()

	// At maximum volatility the exponential term vanishes and the
	// floor takes over.
	size := PositionSize(SizeInputs{
		BaseSize: 0.01, MinSize: 0.002, MaxSize: 0.05,
		Increment: 0.001, VolatilityIndex: 100,
	})
	assert.InDelta(t, 0.002, size, 1e-12)
}

func TestPositionSizeRespectsIncrement(t *testing.T) {
	t.Parallel()

	size := PositionSize(SizeInputs{
		BaseSize: 0.0095, MinSize: 0.001, MaxSize: 0.05,
		Increment: 0.001, VolatilityIndex: 0,
	})
	// Result must be an exact multiple of the increment.
	steps := size / 0.001
	assert.InDelta(t, float64(int(steps+0.5)), steps, 1e-9)
}

func TestRoundToIncrementFloors(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.007, RoundToIncrement(0.0079, 0.001), 1e-12)
	assert.InDelta(t, 0.01, RoundToIncrement(0.01, 0.001), 1e-12)
	// No increment means no rounding.
	assert.InDelta(t, 0.0079, RoundToIncrement(0.0079, 0), 1e-12)
}

func TestVolatilityWindowWarmup(t *testing.T) {
	t.Parallel()

	w := NewVolatilityWindow(20)
	for _, p := range []float64{100, 101, 102, 103} {
		w.Observe(p)
	}
	assert.Zero(t, w.Volatility(), "below minimum samples")

	w.Observe(104)
	assert.Greater(t, w.Volatility(), 0.0)
}

func TestVolatilityWindowEvictsOldest(t *testing.T) {
	t.Parallel()

	w := NewVolatilityWindow(3)
	for i := 0; i < 10; i++ {
		w.Observe(float64(100 + i))
	}
	assert.Equal(t, 3, w.Len())
}

func TestVolatilityIndexClamped(t *testing.T) {
	t.Parallel()

	w := NewVolatilityWindow(20)
	// Wild swings: raw volatility far above 10%.
	for _, p := range []float64{100, 200, 100, 200, 100, 200} {
		w.Observe(p)
	}
	assert.InDelta(t, 100, w.Index(), 1e-9)
}
