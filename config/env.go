package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Credentials are the venue API credentials, read from the process
// environment (optionally seeded from a .env file). They are kept out
// of Options so they never end up in a config file or journal row.
type Credentials struct {
	APIKey     string `envconfig:"API_KEY"`
	APISecret  string `envconfig:"API_SECRET"`
	Passphrase string `envconfig:"PASSPHRASE"`
}

// Set reports whether a full credential set is present.
func (c Credentials) Set() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}

// LoadCredentials reads SWINGBOT_* variables from the environment,
// loading .env first if it exists. A missing .env file is not an
// error; missing variables just leave fields empty.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	var c Credentials
	if err := envconfig.Process("SWINGBOT", &c); err != nil {
		return Credentials{}, fmt.Errorf("read credentials from environment: %w", err)
	}
	return c, nil
}

// EnvOverrides holds option fields that may be overridden from the
// environment, useful in containerized deployments where editing the
// config file is awkward.
type EnvOverrides struct {
	Symbol        string  `envconfig:"SYMBOL"`
	BaseSize      float64 `envconfig:"BASE_SIZE"`
	StopLossPct   float64 `envconfig:"STOP_LOSS_PCT"`
	TakeProfitPct float64 `envconfig:"TAKE_PROFIT_PCT"`
	Variant       string  `envconfig:"VARIANT"`
}

// ApplyEnv overlays SWINGBOT_* environment overrides onto opts and
// validates the result.
func ApplyEnv(opts Options) (Options, error) {
	_ = godotenv.Load()

	var ov EnvOverrides
	if err := envconfig.Process("SWINGBOT", &ov); err != nil {
		return Options{}, fmt.Errorf("read overrides from environment: %w", err)
	}
	if ov.Symbol != "" {
		opts.Symbol = ov.Symbol
	}
	if ov.BaseSize > 0 {
		opts.BaseSize = ov.BaseSize
	}
	if ov.StopLossPct > 0 {
		opts.StopLossPct = ov.StopLossPct
	}
	if ov.TakeProfitPct > 0 {
		opts.TakeProfitPct = ov.TakeProfitPct
	}
	if ov.Variant != "" {
		opts.Variant = ov.Variant
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid config after env overrides: %w", err)
	}
	return opts, nil
}
