package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"empty symbol", func(o *Options) { o.Symbol = "" }},
		{"unknown instrument", func(o *Options) { o.Symbol = "DOGE-USDT-SWAP" }},
		{"zero leverage", func(o *Options) { o.Leverage = 0 }},
		{"excess leverage", func(o *Options) { o.Leverage = 10_000 }},
		{"negative base size", func(o *Options) { o.BaseSize = -1 }},
		{"min above base", func(o *Options) { o.MinSize = 1 }},
		{"max below base", func(o *Options) { o.MaxSize = 0.001 }},
		{"zero stop loss", func(o *Options) { o.StopLossPct = 0 }},
		{"zero take profit", func(o *Options) { o.TakeProfitPct = 0 }},
		{"negative pyramids", func(o *Options) { o.MaxPyramids = -1 }},
		{"interval too small", func(o *Options) { o.CheckInterval = time.Millisecond }},
		{"no variant", func(o *Options) { o.Variant = "" }},
		{"unknown variant", func(o *Options) { o.Variant = "no_such_strategy" }},
		{"inverted oscillator bands", func(o *Options) {
			o.Params = map[string]VariantParams{"original": {RSIOverbought: 30, RSIOversold: 40}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Default()
			tc.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"opts.yaml", "opts.json"} {
		path := filepath.Join(dir, name)
		want := Default()
		want.StopLossPct = 7.5

		require.NoError(t, want.SaveToFile(path))
		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, want.Symbol, got.Symbol)
		assert.InDelta(t, 7.5, got.StopLossPct, 1e-9)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: \"\"\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestStoreSettersValidate(t *testing.T) {
	t.Parallel()

	s, err := NewStore(Default())
	require.NoError(t, err)

	require.NoError(t, s.SetStopLossPct(3))
	assert.InDelta(t, 3, s.Snapshot().StopLossPct, 1e-9)

	// A rejected update keeps the previous value.
	assert.Error(t, s.SetStopLossPct(-1))
	assert.InDelta(t, 3, s.Snapshot().StopLossPct, 1e-9)

	assert.Error(t, s.SetBaseSize(0))
	assert.InDelta(t, Default().BaseSize, s.Snapshot().BaseSize, 1e-9)

	require.NoError(t, s.SetPyramiding(false, 2))
	snap := s.Snapshot()
	assert.False(t, snap.PyramidEnabled)
	assert.Equal(t, 2, snap.MaxPyramids)

	require.NoError(t, s.SetVariant("original"))
	assert.Equal(t, "original", s.Snapshot().Variant)

	// A name outside the variant set is rejected when set, not at the
	// next cycle.
	assert.Error(t, s.SetVariant("no_such_strategy"))
	assert.Equal(t, "original", s.Snapshot().Variant)
}

func TestKnownVariant(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownVariant("triple_signal"))
	assert.True(t, KnownVariant("Triple-Signal"))
	assert.True(t, KnownVariant("trend_following"))
	assert.False(t, KnownVariant("martingale"))
	assert.False(t, KnownVariant(""))
}

func TestStoreRejectsInvalidInitial(t *testing.T) {
	t.Parallel()

	o := Default()
	o.BaseSize = -1
	_, err := NewStore(o)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SWINGBOT_STOP_LOSS_PCT", "4.5")
	t.Setenv("SWINGBOT_VARIANT", "original")

	got, err := ApplyEnv(Default())
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.StopLossPct, 1e-9)
	assert.Equal(t, "original", got.Variant)
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("SWINGBOT_API_KEY", "k")
	t.Setenv("SWINGBOT_API_SECRET", "s")
	t.Setenv("SWINGBOT_PASSPHRASE", "p")

	c, err := LoadCredentials()
	require.NoError(t, err)
	assert.True(t, c.Set())
}
