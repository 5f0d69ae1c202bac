package signal

import (
	"strings"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

type createRoomPayload struct {
	Name       string `json:"name" validate:"required,max=36"`
	Capability string `json:"capability" validate:"required,oneof=mobile web drawer viewer"`
}

type joinRoomPayload struct {
	Room       string `json:"room" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=36"`
	Capability string `json:"capability" validate:"required,oneof=mobile web drawer viewer"`
}

func (p *createRoomPayload) trim() {
	p.Name = strings.TrimSpace(p.Name)
}

func (p *joinRoomPayload) trim() {
	p.Room = strings.TrimSpace(p.Room)
	p.Name = strings.TrimSpace(p.Name)
}

type roomPayload struct {
	Room string `json:"room" validate:"required,max=64"`
}

func (ctl *SignalWSController) handleCreateRoom(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p createRoomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	capability, _ := domain.ParseCapability(p.Capability)
	code, err := ctl.Orch.CreateRoom(sid, p.Name, capability)
	if err != nil {
		ctl.reject(sid, c, domain.EventRoomCreationDenied, "", err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(code)).Msg("create")
}

func (ctl *SignalWSController) handleJoinRoom(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p joinRoomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	capability, _ := domain.ParseCapability(p.Capability)
	code, err := ctl.Orch.JoinRoom(sid, p.Room, p.Name, capability)
	if err != nil {
		ctl.reject(sid, c, domain.EventRoomJoinDenied, p.Room, err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(code)).Msg("join")
}

// handleLeaveRoom leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeaveRoom(sid domain.ConnID, c *WsSignalConn) {
	code, err := ctl.Orch.LeaveRoom(sid)
	if err != nil {
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("leave without room")
		ctl.send(c, domain.Message{Type: domain.EventError, Reason: "not_in_room"})
		return
	}
	ctl.send(c, domain.Message{Type: domain.EventLeftRoom, Room: code})
}

func (ctl *SignalWSController) handleCancelGame(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p roomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.CancelGame(sid, p.Room); err != nil {
		ctl.reject(sid, c, domain.EventCancelDenied, p.Room, err)
	}
}
