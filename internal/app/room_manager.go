package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const codeAttempts = 8

// Directory owns every live room, keyed by its lowercase code.
type Directory struct {
	ctx     context.Context
	cfg     core.Config
	newCode func() string

	mu    sync.RWMutex
	rooms map[domain.RoomCode]*core.Room
}

func NewDirectory(ctx context.Context, cfg core.Config) *Directory {
	return &Directory{
		ctx:     ctx,
		cfg:     cfg,
		newCode: func() string { return uuid.NewString()[:8] },
		rooms:   make(map[domain.RoomCode]*core.Room),
	}
}

// Create registers an empty room hosted by host under a fresh code.
func (d *Directory) Create(host domain.ConnID) (*core.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < codeAttempts; i++ {
		code := domain.NormalizeRoomCode(d.newCode())
		if _, taken := d.rooms[code]; taken {
			continue
		}
		room := core.NewRoom(d.ctx, code, host, d.cfg)
		d.rooms[code] = room
		log.Info().Str("module", "app.directory").Str("room", string(code)).Str("sid", string(host)).Msg("room created")
		return room, nil
	}
	return nil, fmt.Errorf("create room after %d attempts: %w", codeAttempts, domain.ErrCodeSpaceExhausted)
}

func (d *Directory) Lookup(code string) (*core.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[domain.NormalizeRoomCode(code)]
	return room, ok
}

// DeleteIfEmpty drops the room when nobody is left. The room is closed
// under the directory lock so a concurrent join sees ErrRoomNotFound.
func (d *Directory) DeleteIfEmpty(code domain.RoomCode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[code]
	if !ok || !room.CloseIfEmpty() {
		return false
	}
	delete(d.rooms, code)
	log.Info().Str("module", "app.directory").Str("room", string(code)).Msg("room deleted")
	return true
}

func (d *Directory) Delete(code domain.RoomCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok := d.rooms[code]; ok {
		room.Close()
		delete(d.rooms, code)
		log.Info().Str("module", "app.directory").Str("room", string(code)).Msg("room stopped")
	}
}

func (d *Directory) List() []core.RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
