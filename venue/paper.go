package venue

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/swingbot/id"
	"github.com/rustyeddy/swingbot/market"
)

// Paper is an in-memory Exchange used by tests and the CLI demo loop.
// Orders fill immediately at the current price; positions on the same
// side merge at the size-weighted average, matching how the venue
// reports an averaged position.
type Paper struct {
	mu sync.Mutex

	price    float64
	candles  map[market.Timeframe][]market.Candle
	position OpenPosition
	balance  []Balance
	trades   []Trade

	now func() time.Time
}

func NewPaper(startPrice float64) *Paper {
	return &Paper{
		price:   startPrice,
		candles: make(map[market.Timeframe][]market.Candle),
		balance: []Balance{{Currency: "USDT", Available: 10_000, Total: 10_000}},
		now:     time.Now,
	}
}

// SetPrice moves the market.
func (p *Paper) SetPrice(px float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.price = px
}

// SetCandles installs the candle history served for one timeframe.
func (p *Paper) SetCandles(tf market.Timeframe, cs []market.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candles[tf] = cs
}

// SetPosition overrides the venue-reported position, e.g. to simulate a
// manual intervention the engine must adopt.
func (p *Paper) SetPosition(pos OpenPosition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

func (p *Paper) CurrentPrice(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.price, nil
}

func (p *Paper) Candles(ctx context.Context, tf market.Timeframe, limit int) ([]market.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cs := p.candles[tf]
	if len(cs) == 0 {
		return nil, ErrInsufficientData
	}
	if len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}
	out := make([]market.Candle, len(cs))
	copy(out, cs)
	return out, nil
}

func (p *Paper) OpenPositions(ctx context.Context) ([]OpenPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.position.Size == 0 {
		return nil, nil
	}
	return []OpenPosition{p.position}, nil
}

func (p *Paper) OpenPosition(ctx context.Context, side market.Side, size float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if side == market.Flat || size <= 0 {
		return 0, Errorf(Rejected, "open-position", "invalid order side=%s size=%v", side, size)
	}
	if p.position.Size > 0 && p.position.Side != side {
		return 0, Errorf(Rejected, "open-position", "opposing %s position open", p.position.Side)
	}
	fill := p.price
	total := p.position.Size + size
	p.position = OpenPosition{
		Side:     side,
		Size:     total,
		AvgPrice: (p.position.AvgPrice*p.position.Size + fill*size) / total,
	}
	p.trades = append(p.trades, Trade{
		ID: id.New(), Time: p.now(), Side: side, Price: fill, Size: size, Reason: "open",
	})
	return fill, nil
}

func (p *Paper) ClosePosition(ctx context.Context, side market.Side) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.position.Size == 0 || p.position.Side != side {
		return Errorf(Rejected, "close-position", "no open %s position", side)
	}
	p.trades = append(p.trades, Trade{
		ID: id.New(), Time: p.now(), Side: side.Opposite(), Price: p.price, Size: p.position.Size, Reason: "close",
	})
	p.position = OpenPosition{}
	return nil
}

func (p *Paper) AccountBalance(ctx context.Context) ([]Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Balance, len(p.balance))
	copy(out, p.balance)
	return out, nil
}

func (p *Paper) TradeHistory(ctx context.Context, limit int) ([]Trade, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ts := p.trades
	if len(ts) > limit {
		ts = ts[len(ts)-limit:]
	}
	out := make([]Trade, len(ts))
	copy(out, ts)
	return out, nil
}
