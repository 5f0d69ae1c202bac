package app

import (
	"context"
	"sync"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Room    domain.RoomCode
	Client  string
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry maps live connections to their session and current room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnID]*sessionEntry)}
}

// Bind registers a freshly accepted connection that is not in a room yet.
func (r *Registry) Bind(sid domain.ConnID, client string, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Client: client, Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("client", client).Msg("bound signal")
}

func (r *Registry) Unbind(sid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Get(sid domain.ConnID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(sid domain.ConnID) (domain.RoomCode, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Room == "" {
		return "", nil, false
	}
	return entry.Room, entry.Session, true
}

// SetRoom swaps the session's player meta and room in one step.
// The meta is replaced because every room join starts with a fresh score.
func (r *Registry) SetRoom(sid domain.ConnID, code domain.RoomCode, sess core.MemberSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Room = code
	if sess != nil {
		entry.Session = sess
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("updated room")
	return true
}

// ClearRoomIf drops the room association only while it still points at code,
// so a late cleanup for one room never erases a newer join elsewhere.
func (r *Registry) ClearRoomIf(sid domain.ConnID, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Room != code {
		return false
	}
	entry.Room = ""
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("removed room association")
	return true
}

// Cancel stops the connection's pumps. It takes only the read lock, so rooms
// may call it while holding their own.
func (r *Registry) Cancel(sid domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
