// market/instruments.go
package market

// InstrumentMeta describes the contract constraints for one perpetual
// swap instrument.
type InstrumentMeta struct {
	Symbol        string
	BaseCurrency  string
	QuoteCurrency string
	SizeIncrement float64
	MinimumSize   float64
	MaxLeverage   int
}

var Instruments = map[string]InstrumentMeta{
	"BTC-USDT-SWAP": {
		Symbol:        "BTC-USDT-SWAP",
		BaseCurrency:  "BTC",
		QuoteCurrency: "USDT",
		SizeIncrement: 0.001,
		MinimumSize:   0.001,
		MaxLeverage:   100,
	},
	"ETH-USDT-SWAP": {
		Symbol:        "ETH-USDT-SWAP",
		BaseCurrency:  "ETH",
		QuoteCurrency: "USDT",
		SizeIncrement: 0.01,
		MinimumSize:   0.01,
		MaxLeverage:   100,
	},
}
