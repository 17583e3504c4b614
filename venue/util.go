package venue

import "strconv"

func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
