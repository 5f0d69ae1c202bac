package orch

import (
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateRoom opens a new room hosted by sid. Only drawer-capable devices may create.
func (o *Orchestrator) CreateRoom(sid domain.ConnID, name string, capability domain.Capability) (domain.RoomCode, error) {
	name, err := domain.NormalizeUsername(name)
	if err != nil {
		return "", err
	}
	if capability != domain.DrawerCapable {
		return "", domain.ErrCreationDenied
	}
	lobby, ok := o.Registry.Get(sid)
	if !ok {
		return "", domain.ErrNotMember
	}
	if from, ok := o.leave(sid); ok {
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left room to create")
	}

	room, err := o.Rooms.Create(sid)
	if err != nil {
		return "", err
	}
	if err := o.admit(sid, room, name, capability, lobby.Signal(), domain.EventRoomCreated); err != nil {
		o.Rooms.DeleteIfEmpty(room.Code())
		return "", err
	}
	return room.Code(), nil
}

// JoinRoom moves sid into an existing room.
func (o *Orchestrator) JoinRoom(sid domain.ConnID, code, name string, capability domain.Capability) (domain.RoomCode, error) {
	name, err := domain.NormalizeUsername(name)
	if err != nil {
		return "", err
	}
	lobby, ok := o.Registry.Get(sid)
	if !ok {
		return "", domain.ErrNotMember
	}
	room, err := o.lookup(code)
	if err != nil {
		return "", err
	}
	if current, _, ok := o.Registry.RoomOf(sid); ok && current == room.Code() {
		// already here: repeat the acknowledgement instead of leaving first
		if err := room.Acknowledge(sid, domain.EventRoomJoined); err != nil {
			return "", err
		}
		return room.Code(), nil
	}
	if from, ok := o.leave(sid); ok {
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("kicked from room")
	}
	if err := o.admit(sid, room, name, capability, lobby.Signal(), domain.EventRoomJoined); err != nil {
		return "", err
	}
	return room.Code(), nil
}

// LeaveRoom removes sid from its room; the connection stays open.
func (o *Orchestrator) LeaveRoom(sid domain.ConnID) (domain.RoomCode, error) {
	code, ok := o.leave(sid)
	if !ok {
		return "", domain.ErrNotMember
	}
	return code, nil
}

// CancelGame ends the room for everybody. Connections stay open.
func (o *Orchestrator) CancelGame(sid domain.ConnID, code string) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	evicted, err := room.Cancel(sid)
	if err != nil {
		return err
	}
	for _, id := range evicted {
		o.Registry.ClearRoomIf(id, room.Code())
	}
	o.Rooms.Delete(room.Code())
	return nil
}

// admit registers the association first so a disconnect racing the join
// still finds the room to clean up.
func (o *Orchestrator) admit(
	sid domain.ConnID,
	room *core.Room,
	name string,
	capability domain.Capability,
	conn core.SignalConnection,
	ack domain.EventType,
) error {
	member := core.NewMemberSession(domain.NewPlayer(sid, name, capability), conn)
	o.Registry.SetRoom(sid, room.Code(), member)
	if err := room.AddPlayer(member, ack); err != nil {
		o.Registry.ClearRoomIf(sid, room.Code())
		return err
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(room.Code())).Msg("added to room")
	return nil
}

func (o *Orchestrator) leave(sid domain.ConnID) (domain.RoomCode, bool) {
	code, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return "", false
	}
	if !o.Registry.ClearRoomIf(sid, code) {
		return "", false
	}
	room, found := o.Rooms.Lookup(string(code))
	if !found {
		return code, true
	}
	if remaining, removed := room.RemovePlayer(sid); removed && remaining == 0 {
		o.Rooms.DeleteIfEmpty(code)
	}
	return code, true
}
