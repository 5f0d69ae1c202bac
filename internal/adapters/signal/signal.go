package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Sketch/internal/app/orch"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Options are the transport knobs taken from config.
type Options struct {
	ReadLimit       int64
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	SendBuffer      int
	EventsPerSecond float64
	Burst           int
	AllowedOrigins  []string
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.EventsPerSecond <= 0 {
		o.EventsPerSecond = 10
	}
	if o.Burst <= 0 {
		o.Burst = 20
	}
	return o
}

type SignalWSController struct {
	Orch *orch.Orchestrator

	opts     Options
	limiter  *RateLimiter
	validate *validator.Validate
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts = opts.withDefaults()
	ctl := &SignalWSController{
		Orch:     o,
		opts:     opts,
		limiter:  NewRateLimiter(opts.EventsPerSecond, opts.Burst),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin accepts anything when no origins are configured.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(ctl.opts.AllowedOrigins, origin)
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// HandleSignal upgrades the request and serves the connection until either
// side goes away. The player identity is a fresh id per connection.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	client := c.GetString("client_token")
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("client", client).Msg("ws upgrade")
		return
	}

	sid := domain.NewConnID()
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.OnConnect(sid, client, conn, cancel)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", client).Msg("new WS connection")
	ctl.send(conn, domain.Message{Type: domain.EventWelcome, ID: sid})

	go ctl.serve(ctx, cancel, sid, conn)
}

func (ctl *SignalWSController) serve(ctx context.Context, cancel context.CancelFunc, sid domain.ConnID, conn *WsSignalConn) {
	defer func() {
		cancel()
		conn.Close()
		ctl.limiter.Forget(sid)
		ctl.Orch.OnDisconnect(sid)
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("connection closed")
	}()

	var wg conc.WaitGroup
	wg.Go(func() { ctl.writePump(ctx, sid, conn) })
	wg.Go(func() { ctl.readPump(ctx, cancel, sid, conn) })
	if r := wg.WaitAndRecover(); r != nil {
		log.Error().Str("module", "signal").Str("sid", string(sid)).
			Str("panic", r.String()).Msg("connection pump panicked")
	}
}
