package indicators

import (
	"math"

	"github.com/rustyeddy/swingbot/market"
)

// ADX returns Wilder's average directional index with its +DI/-DI
// components. Warmup is two phases: period candles seed the smoothed
// TR/+DM/-DM averages, then period DX values seed the ADX itself, so
// the first ADX value appears at index 2*period.
func ADX(candles []market.Candle, period int) (adx, diPlus, diMinus []float64) {
	n := len(candles)
	adx = nans(n)
	diPlus = nans(n)
	diMinus = nans(n)
	if period <= 0 || n < 2*period+1 {
		return adx, diPlus, diMinus
	}

	tr := make([]float64, n)
	pdm := make([]float64, n)
	mdm := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = trueRange(candles[i], candles[i-1])

		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			pdm[i] = up
		}
		if down > up && down > 0 {
			mdm[i] = down
		}
	}

	// Seed the smoothed averages with the first period samples.
	var trS, pdmS, mdmS float64
	for i := 1; i <= period; i++ {
		trS += tr[i]
		pdmS += pdm[i]
		mdmS += mdm[i]
	}

	p := float64(period)
	dx := nans(n)
	for i := period; i < n; i++ {
		if i > period {
			trS = trS - trS/p + tr[i]
			pdmS = pdmS - pdmS/p + pdm[i]
			mdmS = mdmS - mdmS/p + mdm[i]
		}
		if trS == 0 {
			continue
		}
		pdi := 100 * pdmS / trS
		mdi := 100 * mdmS / trS
		diPlus[i] = pdi
		diMinus[i] = mdi
		if pdi+mdi == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(pdi-mdi) / (pdi + mdi)
	}

	// Seed ADX with the average of the first period DX values.
	var dxSum float64
	count := 0
	for i := period; i < n && count < period; i++ {
		if !math.IsNaN(dx[i]) {
			dxSum += dx[i]
			count++
		}
		if count == period {
			adx[i] = dxSum / p
			for j := i + 1; j < n; j++ {
				if math.IsNaN(dx[j]) {
					adx[j] = adx[j-1]
					continue
				}
				adx[j] = (adx[j-1]*(p-1) + dx[j]) / p
			}
		}
	}
	return adx, diPlus, diMinus
}
