package app

import (
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(event domain.EventType, member core.MemberSession) BackpressureAction
}

// SimplePolicy tolerates missed drawing and timer frames, the next one
// supersedes them. Anything else leaves the member with a stale view.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(event domain.EventType, member core.MemberSession) BackpressureAction {
	switch event {
	case domain.EventDrawingUpdate, domain.EventTimerUpdate:
		return DropFrame
	default:
		return KickMember
	}
}

// DropHandler adapts a Policy to the room callback. Kicking cancels the
// connection's pumps through reg and closes its signal; the read pump then
// reports an ordinary disconnect.
func DropHandler(p Policy, reg *Registry) core.DropHandler {
	return func(event domain.EventType, dropped []core.MemberSession) {
		for _, m := range dropped {
			switch p.OnBackPressure(event, m) {
			case KickMember:
				sid := m.Meta().ID
				log.Warn().Str("module", "app.policy").Str("sid", string(sid)).
					Str("type", string(event)).Msg("kick slow member")
				if reg != nil {
					reg.Cancel(sid)
				}
				m.Signal().Close()
			case DropFrame, NoAction:
			}
		}
	}
}
