package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/journal"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

func newTestEngine(t *testing.T, p *venue.Paper, opts config.Options) *Engine {
	t.Helper()

	store, err := config.NewStore(opts)
	require.NoError(t, err)

	e, err := NewEngine(p, store, journal.Nop{}, nil, nil)
	require.NoError(t, err)
	return e
}

func TestEngineOpensShortOnCompositeSignal(t *testing.T) {
	t.Parallel()

	p := threeSignalPaper()
	e := newTestEngine(t, p, testOptions())
	ctx := context.Background()

	require.NoError(t, e.RunCycle(ctx))

	ps, err := p.OpenPositions(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1, "exactly one position opened")
	assert.Equal(t, market.Short, ps[0].Side)
	assert.InDelta(t, 0.009, ps[0].Size, 1e-12)

	pos := e.machine.Current()
	assert.Equal(t, market.Short, pos.Side)
	assert.Zero(t, pos.PyramidCount)
}

func TestEngineClosesOnFixedStop(t *testing.T) {
	t.Parallel()

	p := venue.NewPaper(106)
	p.SetCandles(market.M15, flatCandles(60, 100))
	p.SetPosition(venue.OpenPosition{Side: market.Short, Size: 0.01, AvgPrice: 100})

	e := newTestEngine(t, p, testOptions())
	ctx := context.Background()

	require.NoError(t, e.RunCycle(ctx))

	ps, err := p.OpenPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps, "stop must flatten the position")
	assert.False(t, e.machine.Current().Open())
}

func TestEngineAdoptsForeignPosition(t *testing.T) {
	t.Parallel()

	p := venue.NewPaper(100)
	p.SetCandles(market.M15, flatCandles(60, 100))
	// Somebody opened a long outside this process.
	p.SetPosition(venue.OpenPosition{Side: market.Long, Size: 0.02, AvgPrice: 99})

	e := newTestEngine(t, p, testOptions())
	require.NoError(t, e.RunCycle(context.Background()))

	pos := e.machine.Current()
	assert.Equal(t, market.Long, pos.Side)
	assert.Zero(t, pos.PyramidCount)
}

func TestEngineRejectsUnimplementedVariant(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Variant = "mean_reversion"
	store, err := config.NewStore(opts)
	require.NoError(t, err)

	_, err = NewEngine(venue.NewPaper(100), store, journal.Nop{}, nil, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

// rejectOpen bounces every order while serving data normally.
type rejectOpen struct {
	*venue.Paper
}

func (r rejectOpen) OpenPosition(ctx context.Context, side market.Side, size float64) (float64, error) {
	return 0, venue.Errorf(venue.Rejected, "open-position", "insufficient margin")
}

func TestEngineSurvivesRejectedOrder(t *testing.T) {
	t.Parallel()

	x := rejectOpen{Paper: threeSignalPaper()}
	opts := testOptions()
	store, err := config.NewStore(opts)
	require.NoError(t, err)
	e, err := NewEngine(x, store, journal.Nop{}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	// The entry order bounces; the cycle reports no error and the
	// machine rolls back to flat so the next cycle can try again.
	require.NoError(t, e.RunCycle(ctx))
	assert.False(t, e.machine.Current().Open())
	require.NoError(t, e.RunCycle(ctx))
}

func TestEngineFollowsVariantSwitch(t *testing.T) {
	t.Parallel()

	p := threeSignalPaper()
	store, err := config.NewStore(testOptions())
	require.NoError(t, err)
	e, err := NewEngine(p, store, journal.Nop{}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	// The switch lands before the next cycle. The hourly chart is
	// quiet, so the original variant holds where the composite would
	// have opened a short.
	require.NoError(t, store.SetVariant("original"))
	require.NoError(t, e.RunCycle(ctx))

	assert.Equal(t, "original", e.Status().Variant)
	ps, err := p.OpenPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestEngineSwitchToPlaceholderReportsNotImplemented(t *testing.T) {
	t.Parallel()

	p := threeSignalPaper()
	store, err := config.NewStore(testOptions())
	require.NoError(t, err)
	e, err := NewEngine(p, store, journal.Nop{}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetVariant("trend_following"))
	err = e.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, "trend_following", e.Status().Variant)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	t.Parallel()

	p := threeSignalPaper()
	opts := testOptions()
	store, err := config.NewStore(opts)
	require.NoError(t, err)
	e, err := NewEngine(p, store, journal.Nop{}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewRunner(e, store, nil).Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop on cancellation")
	}
}

func TestEngineStatusSnapshot(t *testing.T) {
	t.Parallel()

	p := venue.NewPaper(100)
	p.SetCandles(market.M15, flatCandles(60, 100))
	p.SetPosition(venue.OpenPosition{Side: market.Short, Size: 0.01, AvgPrice: 100})

	e := newTestEngine(t, p, testOptions())
	require.NoError(t, e.RunCycle(context.Background()))

	st := e.Status()
	assert.Equal(t, "triple_signal", st.Variant)
	assert.Equal(t, "open", st.State)
	assert.True(t, st.Position.Open())
	assert.Contains(t, st.String(), "variant: triple_signal")
}

func TestAccountReport(t *testing.T) {
	t.Parallel()

	p := venue.NewPaper(100)
	e := newTestEngine(t, p, testOptions())

	report, err := e.AccountReport(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "USDT")
	assert.Contains(t, report, "position: none")
}
