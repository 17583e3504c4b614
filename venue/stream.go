package venue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// PublicWSURL is the venue's public market-data websocket endpoint.
// The tickers channel needs no authentication.
const PublicWSURL = "wss://ws.okx.com:8443/ws/v5/public"

// TickerStream subscribes to last-price ticks over a public websocket
// and republishes them on Prices. It reconnects with backoff until the
// context is cancelled; the decision loop only ever reads the channel,
// so a dead stream degrades to per-cycle REST polling.
type TickerStream struct {
	URL    string
	Symbol string

	log    *slog.Logger
	prices chan float64
}

func NewTickerStream(url, symbol string, log *slog.Logger) *TickerStream {
	if log == nil {
		log = slog.Default()
	}
	return &TickerStream{
		URL:    url,
		Symbol: symbol,
		log:    log.With("component", "ticker-stream"),
		prices: make(chan float64, 64),
	}
}

// Prices is the stream of last traded prices. Slow consumers drop
// ticks rather than block the read pump.
func (s *TickerStream) Prices() <-chan float64 { return s.prices }

// Run blocks until ctx is cancelled, dialing and re-dialing as needed.
func (s *TickerStream) Run(ctx context.Context) {
	wait := time.Second
	for {
		if err := s.serve(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("ticker stream disconnected", "err", err, "reconnect_in", wait)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if wait < 30*time.Second {
			wait *= 2
		}
	}
}

type wsSubscribe struct {
	Op   string `json:"op"`
	Args []struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"args"`
}

type wsTicker struct {
	Data []struct {
		Last string `json:"last"`
	} `json:"data"`
}

func (s *TickerStream) serve(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := wsSubscribe{Op: "subscribe"}
	sub.Args = append(sub.Args, struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	}{Channel: "tickers", InstID: s.Symbol})
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	s.log.Info("subscribed", "symbol", s.Symbol)

	// The venue drops idle connections after 30s of silence. The pinger
	// lives and dies with this connection: done is closed when serve
	// returns, so reconnects never accumulate parked goroutines.
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ping.C:
				_ = conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if string(msg) == "pong" {
			continue
		}
		var tick wsTicker
		if err := json.Unmarshal(msg, &tick); err != nil || len(tick.Data) == 0 {
			continue
		}
		px, err := parsePrice(tick.Data[0].Last)
		if err != nil {
			continue
		}
		select {
		case s.prices <- px:
		default: // drop tick, consumer is behind
		}
	}
}
