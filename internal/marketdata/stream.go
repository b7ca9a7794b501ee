// Package marketdata maintains a live option-quote cache fed by a
// websocket stream. The cache overlays snapshot payloads so decision
// cycles price against the freshest quotes available.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"options-lab/internal/domain"
)

// StreamConfig configures websocket stream behavior.
type StreamConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// quoteMessage is one quote event on the wire.
type quoteMessage struct {
	Type     string   `json:"T"` // "q" for quotes
	Symbol   string   `json:"S"` // OCC contract symbol
	BidPrice *float64 `json:"bp"`
	AskPrice *float64 `json:"ap"`
}

// subscribeRequest asks the feed for quote events on the given symbols.
type subscribeRequest struct {
	Action string   `json:"action"`
	Quotes []string `json:"quotes"`
}

// Stream implements a reconnecting option-quote stream using
// gorilla/websocket. Latest quotes are indexed by underlying ticker and
// option side.
type Stream struct {
	endpoint string
	config   StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// latest maps underlying ticker to the freshest quote per side
	latest   map[string]map[domain.Side]domain.Quote
	latestMu sync.RWMutex

	// activeSymbols stores subscriptions for replay after reconnect
	activeSymbols   []string
	activeSymbolsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewStream creates a new stream and connects to the endpoint.
func NewStream(ctx context.Context, endpoint string, config *StreamConfig) (*Stream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &Stream{
		endpoint: endpoint,
		config:   cfg,
		latest:   make(map[string]map[domain.Side]domain.Quote),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	// Start reader goroutine
	s.wg.Add(1)
	go s.readLoop()

	// Start ping goroutine
	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// connect establishes the websocket connection.
func (s *Stream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Subscribe requests quote events for the given OCC contract symbols.
// Symbols accumulate across calls and are replayed after reconnects.
func (s *Stream) Subscribe(symbols []string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}
	if len(symbols) == 0 {
		return nil
	}

	s.activeSymbolsMu.Lock()
	s.activeSymbols = append(s.activeSymbols, symbols...)
	s.activeSymbolsMu.Unlock()

	return s.writeSubscribe(symbols)
}

func (s *Stream) writeSubscribe(symbols []string) error {
	req := subscribeRequest{Action: "subscribe", Quotes: symbols}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// LatestQuotes returns a copy of the freshest quotes for an underlying.
// The map is empty until the first quote event arrives.
func (s *Stream) LatestQuotes(ticker string) map[domain.Side]domain.Quote {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()

	out := make(map[domain.Side]domain.Quote, 2)
	for side, quote := range s.latest[ticker] {
		out[side] = quote
	}
	return out
}

// Close closes the websocket connection and stops the loops.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads messages and updates the quote cache.
func (s *Stream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			// Increase delay for next reconnect (exponential backoff)
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// handleMessage decodes a quote batch and updates the cache. Unknown
// event types are ignored.
func (s *Stream) handleMessage(message []byte) {
	var events []quoteMessage
	if err := json.Unmarshal(message, &events); err != nil {
		// Some feeds send single objects instead of batches
		var single quoteMessage
		if err := json.Unmarshal(message, &single); err != nil {
			return
		}
		events = []quoteMessage{single}
	}

	for _, event := range events {
		if event.Type != "q" || event.Symbol == "" {
			continue
		}
		ticker, side, ok := parseOCCSymbol(event.Symbol)
		if !ok {
			continue
		}

		s.latestMu.Lock()
		sides := s.latest[ticker]
		if sides == nil {
			sides = make(map[domain.Side]domain.Quote, 2)
			s.latest[ticker] = sides
		}
		sides[side] = domain.Quote{
			Symbol: event.Symbol,
			Bid:    event.BidPrice,
			Ask:    event.AskPrice,
		}
		s.latestMu.Unlock()
	}
}

// reconnect attempts to reconnect and resubscribe.
func (s *Stream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	// Wait before reconnecting
	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	// Close existing connection
	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	// Attempt reconnect
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	// Replay subscriptions on the new connection
	s.activeSymbolsMu.Lock()
	symbols := make([]string, len(s.activeSymbols))
	copy(symbols, s.activeSymbols)
	s.activeSymbolsMu.Unlock()

	if len(symbols) > 0 {
		s.writeSubscribe(symbols)
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (s *Stream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}

// parseOCCSymbol extracts the underlying ticker and option side from an
// OCC symbol. The contract-type character sits 9 positions from the end
// (strike is 8 digits); everything before the 6-digit expiration is the
// root.
func parseOCCSymbol(symbol string) (string, domain.Side, bool) {
	if len(symbol) < 15 {
		return "", "", false
	}
	root := symbol[:len(symbol)-15]
	if root == "" {
		return "", "", false
	}
	switch symbol[len(symbol)-9] {
	case 'C':
		return root, domain.SideCall, true
	case 'P':
		return root, domain.SidePut, true
	}
	return "", "", false
}
