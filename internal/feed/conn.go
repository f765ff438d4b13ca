package feed

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/internal/obs"
	"main/pkg/exception"
)

// Request codes understood by the feed's JSON control channel.
const (
	RequestCodeTicker     = 15
	RequestCodeQuote      = 17
	RequestCodeFull       = 21
	RequestCodeDisconnect = 12
)

// subscribeBatchSize caps instruments per subscribe command.
const subscribeBatchSize = 100

// SubscribeRequest is the JSON control message sent over the open stream.
type SubscribeRequest struct {
	RequestCode     int                   `json:"RequestCode"`
	InstrumentCount int                   `json:"InstrumentCount"`
	InstrumentList  []SubscribeInstrument `json:"InstrumentList"`
}

// SubscribeInstrument is one entry of a subscribe command.
type SubscribeInstrument struct {
	ExchangeSegment string `json:"ExchangeSegment"`
	SecurityId      string `json:"SecurityId"`
}

// Events receives decoded ticks and lifecycle notifications from a
// Connection. All methods are invoked from the connection's goroutines.
type Events interface {
	OnTick(tick model.Tick)
	OnConnect()
	OnDisconnect(reason error, intentional bool)
	OnReconnectAttempt(attempt int)
	OnError(err error)
}

// Config controls the feed connection runtime behavior.
type Config struct {
	URL                  string
	RequestCode          int
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	WriteTimeout         time.Duration
	HeartbeatInterval    time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.RequestCode == 0 {
		cfg.RequestCode = RequestCodeTicker
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = 2 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	return cfg
}

// Connection owns one websocket stream to the tick feed: subscription
// bookkeeping, reconnect with bounded attempts, and frame decoding.
// Malformed frames are dropped here and never reach the consumer.
type Connection struct {
	cfg    Config
	events Events
	subs   *subscriptions

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	intentional atomic.Bool
	started     atomic.Bool
	lastTickAt  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewConnection builds a connection. It does not dial.
func NewConnection(cfg Config, events Events) *Connection {
	return &Connection{
		cfg:    cfg.withDefaults(),
		events: events,
		subs:   newSubscriptions(),
	}
}

// Connect dials the feed and starts the read and heartbeat loops.
// It returns once the handshake completes or fails.
func (c *Connection) Connect(ctx context.Context) error {
	if c.started.Swap(true) {
		return exception.ErrFeedAlreadyStarted
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, c.cfg.URL, nil)
	if err != nil {
		c.started.Store(false)
		return errors.Wrap(err, "dial feed")
	}

	c.setConn(conn)
	c.events.OnConnect()

	go c.readLoop(conn)
	go c.heartbeatLoop()
	return nil
}

// Subscribe remembers the instruments and, when the stream is open,
// sends them in batches. On a closed stream it only records them; the
// reconnect path replays the full set.
func (c *Connection) Subscribe(instruments []model.Instrument) error {
	added := c.subs.Add(instruments)
	if len(added) == 0 {
		return nil
	}

	if !c.isConnected() {
		logs.Warnf("subscribe while disconnected, deferred %d instruments", len(added))
		return nil
	}
	return c.sendBatches(added)
}

// Disconnect closes the stream. An intentional disconnect suppresses
// reconnect and clears remembered subscriptions; an unintentional one
// simulates a transport drop and lets the reconnect policy run.
func (c *Connection) Disconnect(intentional bool) {
	if intentional {
		c.intentional.Store(true)
		_ = c.writeJSON(SubscribeRequest{RequestCode: RequestCodeDisconnect})
		c.subs.Clear()
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.closeConn()
}

func (c *Connection) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
}

func (c *Connection) closeConn() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.connected = false
	c.mu.Unlock()
}

func (c *Connection) isConnected() bool {
	c.mu.Lock()
	ok := c.connected
	c.mu.Unlock()
	return ok
}

func (c *Connection) writeJSON(payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return exception.ErrFeedNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteJSON(payload)
}

func (c *Connection) sendBatches(instruments []model.Instrument) error {
	for start := 0; start < len(instruments); start += subscribeBatchSize {
		end := min(start+subscribeBatchSize, len(instruments))
		chunk := instruments[start:end]

		req := SubscribeRequest{
			RequestCode:     c.cfg.RequestCode,
			InstrumentCount: len(chunk),
			InstrumentList:  make([]SubscribeInstrument, 0, len(chunk)),
		}
		for _, inst := range chunk {
			req.InstrumentList = append(req.InstrumentList, SubscribeInstrument{
				ExchangeSegment: inst.ExchangeSegment.String(),
				SecurityId:      strconv.FormatInt(int64(inst.SecurityID), 10),
			})
		}

		if err := c.writeJSON(req); err != nil {
			return errors.Wrapf(err, "send subscribe batch of %d", len(chunk))
		}
	}
	return nil
}

func (c *Connection) resubscribeAll() error {
	all := c.subs.All()
	if len(all) == 0 {
		return nil
	}
	logs.Infof("resubscribing %d instruments after reconnect", len(all))
	return c.sendBatches(all)
}

func (c *Connection) readLoop(conn *websocket.Conn) {
	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			intentional := c.intentional.Load() || c.ctx.Err() != nil
			c.connectedOff()
			c.events.OnDisconnect(err, intentional)
			if intentional {
				return
			}

			next := c.reconnect()
			if next == nil {
				return
			}
			conn = next
			continue
		}

		if msgType != websocket.BinaryMessage {
			continue
		}

		tick, err := Decode(frame)
		if err != nil {
			obs.FeedDecodeErrors.Inc()
			logs.Warnf("drop frame: %+v", err)
			continue
		}

		obs.FeedTicksDecoded.Inc()
		c.lastTickAt.Store(time.Now().UnixNano())
		c.events.OnTick(tick)
	}
}

// reconnect retries the dial with a delay scaling linearly with the
// attempt number. It returns nil once the attempt budget is spent.
func (c *Connection) reconnect() *websocket.Conn {
	for attempt := 1; attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		c.events.OnReconnectAttempt(attempt)
		obs.FeedReconnectAttempts.Inc()

		if !c.sleep(c.cfg.ReconnectBaseDelay * time.Duration(attempt)) {
			return nil
		}
		if c.intentional.Load() {
			return nil
		}

		conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, c.cfg.URL, nil)
		if err != nil {
			logs.Warnf("reconnect attempt %d/%d failed: %+v", attempt, c.cfg.MaxReconnectAttempts, err)
			c.events.OnError(errors.Wrapf(err, "reconnect attempt %d", attempt))
			continue
		}

		c.setConn(conn)
		c.events.OnConnect()
		if err := c.resubscribeAll(); err != nil {
			logs.Errorf("resubscribe after reconnect: %+v", err)
			c.events.OnError(err)
		}
		return conn
	}

	obs.FeedPermanentDisconnects.Inc()
	c.events.OnError(exception.ErrPermanentDisconnect)
	// The stream is gone for good; stop the heartbeat loop with it.
	c.cancel()
	return nil
}

func (c *Connection) connectedOff() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *Connection) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// heartbeatLoop logs stream liveness for diagnostics. The transport's
// own keep-alive handles actual liveness.
func (c *Connection) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			last := c.lastTickAt.Load()
			if last == 0 {
				continue
			}
			idle := time.Since(time.Unix(0, last))
			if idle > c.cfg.HeartbeatInterval {
				logs.Warnf("no tick for %s", idle.Truncate(time.Second))
			}
		}
	}
}
