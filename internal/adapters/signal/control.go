package signal

import (
	"errors"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.send(c, domain.Message{Type: domain.EventPong})
}

func (ctl *SignalWSController) badPayload(c *WsSignalConn) {
	ctl.send(c, domain.Message{Type: domain.EventError, Reason: "bad_payload"})
}

func (ctl *SignalWSController) send(c *WsSignalConn, msg domain.Message) {
	f, err := core.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send marshal")
		return
	}
	if err := c.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("type", string(msg.Type)).Msg("direct send failed")
	}
}

// reject tells the sender why its event was refused. Events that lost a
// race with the round (wrong phase, round already won, blank guess) are
// dropped silently.
func (ctl *SignalWSController) reject(sid domain.ConnID, c *WsSignalConn, denial domain.EventType, room string, err error) {
	code := domain.NormalizeRoomCode(room)
	kind := domain.KindOf(err)
	switch {
	case kind == domain.KindPhase, errors.Is(err, domain.ErrEmptyGuess):
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(code)).
			Str("denial", string(denial)).Msg("event ignored")
		return
	case kind == domain.KindNotFound:
		ctl.send(c, domain.Message{Type: domain.EventRoomNotFound, Room: code, Reason: err.Error()})
	case kind == domain.KindCapacity && !errors.Is(err, domain.ErrCodeSpaceExhausted):
		ctl.send(c, domain.Message{Type: domain.EventRoomFull, Room: code, Reason: err.Error()})
	case kind != domain.KindUnknown:
		ctl.send(c, domain.Message{Type: denial, Room: code, Reason: err.Error()})
	default:
		ctl.send(c, domain.Message{Type: domain.EventError, Reason: err.Error()})
	}
	log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(code)).
		Str("denial", string(denial)).Msg("event rejected")
}
