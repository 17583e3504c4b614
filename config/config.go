// Package config holds the runtime trading parameters: what to trade,
// how large, where the stops sit and how often the loop runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/swingbot/market"
)

// Options are the tunable trading parameters. Zero value is not
// usable; start from Default().
type Options struct {
	Symbol         string        `json:"symbol" yaml:"symbol"`
	Leverage       int           `json:"leverage" yaml:"leverage"`
	BaseSize       float64       `json:"base_size" yaml:"base_size"`
	MinSize        float64       `json:"min_size" yaml:"min_size"`
	MaxSize        float64       `json:"max_size" yaml:"max_size"`
	StopLossPct    float64       `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct  float64       `json:"take_profit_pct" yaml:"take_profit_pct"`
	PyramidEnabled bool          `json:"pyramid_enabled" yaml:"pyramid_enabled"`
	MaxPyramids    int           `json:"max_pyramids" yaml:"max_pyramids"`
	CheckInterval  time.Duration `json:"check_interval" yaml:"check_interval"`
	Variant        string        `json:"variant" yaml:"variant"`
	JournalPath    string        `json:"journal_path,omitempty" yaml:"journal_path,omitempty"`

	// Params holds per-variant tuning, keyed by variant name. A
	// variant missing from the table runs on its built-in defaults.
	Params map[string]VariantParams `json:"params,omitempty" yaml:"params,omitempty"`
}

// VariantParams tunes one variant's oscillator thresholds and candle
// lookback.
type VariantParams struct {
	RSIOverbought float64 `json:"rsi_overbought" yaml:"rsi_overbought"`
	RSIOversold   float64 `json:"rsi_oversold" yaml:"rsi_oversold"`
	CandleLimit   int     `json:"candle_limit" yaml:"candle_limit"`
}

// Variants enumerates the selectable strategy variant names. The
// strategy package constructs from this set; validation here rejects a
// bad name at the point the operator sets it, not at the next cycle.
var Variants = []string{"triple_signal", "original", "trend_following", "volatility_breakout", "mean_reversion"}

// NormalizeVariant lowercases a variant name and folds dashes into
// underscores, so "Triple-Signal" selects triple_signal.
func NormalizeVariant(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// KnownVariant reports whether name selects one of Variants.
func KnownVariant(name string) bool {
	n := NormalizeVariant(name)
	for _, v := range Variants {
		if v == n {
			return true
		}
	}
	return false
}

// Default returns the stock parameter set for the flagship contract.
func Default() Options {
	return Options{
		Symbol:         "BTC-USDT-SWAP",
		Leverage:       5,
		BaseSize:       0.01,
		MinSize:        0.001,
		MaxSize:        0.05,
		StopLossPct:    5.0,
		TakeProfitPct:  10.0,
		PyramidEnabled: true,
		MaxPyramids:    3,
		CheckInterval:  15 * time.Minute,
		Variant:        "triple_signal",
		Params: map[string]VariantParams{
			"original": {RSIOverbought: 60, RSIOversold: 40, CandleLimit: 100},
		},
	}
}

// Validate checks internal consistency of the options.
func (o Options) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, ok := market.Instruments[o.Symbol]; !ok {
		return fmt.Errorf("unknown instrument: %s", o.Symbol)
	}
	if o.Leverage < 1 || o.Leverage > market.Instruments[o.Symbol].MaxLeverage {
		return fmt.Errorf("leverage %d out of range for %s", o.Leverage, o.Symbol)
	}
	if o.BaseSize <= 0 {
		return fmt.Errorf("base_size must be positive")
	}
	if o.MinSize <= 0 || o.MinSize > o.BaseSize {
		return fmt.Errorf("min_size must be positive and not above base_size")
	}
	if o.MaxSize > 0 && o.MaxSize < o.BaseSize {
		return fmt.Errorf("max_size must be at least base_size")
	}
	if o.StopLossPct <= 0 {
		return fmt.Errorf("stop_loss_pct must be positive")
	}
	if o.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive")
	}
	if o.MaxPyramids < 0 {
		return fmt.Errorf("max_pyramids must not be negative")
	}
	if o.CheckInterval < time.Second {
		return fmt.Errorf("check_interval must be at least 1s")
	}
	if o.Variant == "" {
		return fmt.Errorf("variant is required")
	}
	if !KnownVariant(o.Variant) {
		return fmt.Errorf("unknown variant %q (supported: %s)", o.Variant, strings.Join(Variants, ", "))
	}
	for name, p := range o.Params {
		if p.RSIOverbought <= p.RSIOversold {
			return fmt.Errorf("params[%s]: rsi_overbought must exceed rsi_oversold", name)
		}
		if p.CandleLimit < 0 {
			return fmt.Errorf("params[%s]: candle_limit must not be negative", name)
		}
	}
	return nil
}

// LoadFromFile loads options from a YAML or JSON file. YAML is tried
// first, then JSON, so either extension works.
func LoadFromFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read config file: %w", err)
	}

	o := Default()
	if err := yaml.Unmarshal(data, &o); err != nil {
		if jerr := json.Unmarshal(data, &o); jerr != nil {
			return Options{}, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	if err := o.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid config: %w", err)
	}
	return o, nil
}

// SaveToFile writes options as YAML or JSON based on the extension.
func (o Options) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(o)
	} else {
		data, err = json.MarshalIndent(o, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
