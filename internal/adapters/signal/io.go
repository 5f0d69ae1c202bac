package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid domain.ConnID, c *WsSignalConn) {
	ping := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ping.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			if !ctl.limiter.Allow(sid) {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited")
				ctl.send(c, domain.Message{Type: domain.EventError, Reason: "rate_limited"})
				continue
			}
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.badPayload(c)
		return
	}

	switch env.Type {
	case "create-room":
		ctl.handleCreateRoom(sid, c, data)
	case "join-room":
		ctl.handleJoinRoom(sid, c, data)
	case "leave-room":
		ctl.handleLeaveRoom(sid, c)
	case "start-game":
		ctl.handleStartGame(sid, c, data)
	case "select-word":
		ctl.handleSelectWord(sid, c, data)
	case "drawing-data":
		ctl.handleDrawingData(sid, c, data)
	case "submit-guess":
		ctl.handleSubmitGuess(sid, c, data)
	case "continue-next-round":
		ctl.handleContinue(sid, c, data)
	case "cancel-game":
		ctl.handleCancelGame(sid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.send(c, domain.Message{Type: domain.EventError, Reason: "unknown_type"})
	}
}

// trimmer is implemented by payloads whose text fields are validated
// without surrounding whitespace.
type trimmer interface {
	trim()
}

// decode unmarshals and validates an inbound payload.
func (ctl *SignalWSController) decode(c *WsSignalConn, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.badPayload(c)
		return false
	}
	if t, ok := v.(trimmer); ok {
		t.trim()
	}
	if err := ctl.validate.Struct(v); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("invalid payload")
		ctl.badPayload(c)
		return false
	}
	return true
}
