package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/app"
	"github.com/displaywall/backend/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the display sync channel: one WS connection per client,
// JSON frames with a "type" envelope.
type Controller struct {
	Registry   *app.Registry
	Catalog    core.CatalogStore
	Events     core.Publisher
	Selector   *app.Selector
	ReadLimit  int64
	PingPeriod time.Duration

	limiter *SelectionRateLimiter
}

func NewController(registry *app.Registry, catalog core.CatalogStore, events core.Publisher, selector *app.Selector, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 30 * time.Second
	}
	return &Controller{
		Registry:   registry,
		Catalog:    catalog,
		Events:     events,
		Selector:   selector,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		limiter:    NewSelectionRateLimiter(5, time.Second),
	}
}

type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleDisplay(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, conn, cancel)

	// A late joiner gets its own view right away: category options first,
	// then a private catalog snapshot.
	ctl.sendOptions(ctx, conn)
	ctl.Events.SnapshotTo(ctx, sid)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
