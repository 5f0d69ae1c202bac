package orch

import (
	"context"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator routes validated client events to rooms and keeps the
// registry in sync with room membership.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Directory
	Policy   app.Policy
}

// New wires a directory whose rooms report slow members to policy.
func New(ctx context.Context, cfg core.Config, policy app.Policy) *Orchestrator {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	o := &Orchestrator{
		Registry: app.NewRegistry(),
		Policy:   policy,
	}
	cfg.OnDropped = app.DropHandler(o.Policy, o.Registry)
	o.Rooms = app.NewDirectory(ctx, cfg)
	return o
}

// OnConnect registers a connection that is not in any room yet.
func (o *Orchestrator) OnConnect(sid domain.ConnID, client string, conn core.SignalConnection, cancel context.CancelFunc) {
	lobby := core.NewMemberSession(domain.NewPlayer(sid, "", domain.CapabilityUnknown), conn)
	o.Registry.Bind(sid, client, lobby, cancel)
}

// OnDisconnect is a regular leave followed by forgetting the connection.
func (o *Orchestrator) OnDisconnect(sid domain.ConnID) {
	if code, ok := o.leave(sid); ok {
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(code)).Msg("disconnected from room")
	}
	o.Registry.Unbind(sid)
}

// Snapshot is the viewer projection of a room, for read-only callers.
func (o *Orchestrator) Snapshot(code string) (domain.Snapshot, bool) {
	room, ok := o.Rooms.Lookup(code)
	if !ok {
		return domain.Snapshot{}, false
	}
	return room.Snapshot(), true
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}

func (o *Orchestrator) lookup(code string) (*core.Room, error) {
	room, ok := o.Rooms.Lookup(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}
