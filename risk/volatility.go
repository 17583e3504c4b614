// Package risk evaluates exit conditions for an open position and
// sizes new positions from a rolling volatility estimate.
package risk

// DefaultWindowSize is how many price observations the volatility
// window retains.
const DefaultWindowSize = 20

// minSamples is how many observations are needed before the index is
// meaningful; below it the index reports zero (calm).
const minSamples = 5

// VolatilityWindow is a bounded FIFO of recently observed prices. The
// oldest entry is evicted once capacity is reached. It is owned by the
// decision loop and not safe for concurrent use.
type VolatilityWindow struct {
	prices []float64
	cap    int
}

func NewVolatilityWindow(capacity int) *VolatilityWindow {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &VolatilityWindow{cap: capacity}
}

// Observe appends a price, evicting the oldest past capacity.
func (w *VolatilityWindow) Observe(price float64) {
	w.prices = append(w.prices, price)
	if len(w.prices) > w.cap {
		w.prices = w.prices[1:]
	}
}

// Len returns the number of retained observations.
func (w *VolatilityWindow) Len() int { return len(w.prices) }

// Volatility returns the mean absolute percentage change between
// consecutive samples, or 0 with fewer than minSamples observations.
func (w *VolatilityWindow) Volatility() float64 {
	if len(w.prices) < minSamples {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(w.prices); i++ {
		prev, curr := w.prices[i-1], w.prices[i]
		change := (curr - prev) / prev * 100
		if change < 0 {
			change = -change
		}
		sum += change
	}
	return sum / float64(len(w.prices)-1)
}

// Index scales the raw volatility into [0,100].
func (w *VolatilityWindow) Index() float64 {
	idx := w.Volatility() * 10
	if idx > 100 {
		return 100
	}
	if idx < 0 {
		return 0
	}
	return idx
}
