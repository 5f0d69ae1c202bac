package core

import (
	"time"

	"github.com/dkeye/Sketch/internal/domain"
)

// PublishResult reports delivery stats/backpressure of one fan-out.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

type RoomInfo struct {
	Code        domain.RoomCode `json:"code"`
	MemberCount int             `json:"client_count"`
	Phase       domain.Phase    `json:"phase"`
}

// DropHandler is told which members could not take a frame of the given event.
// It runs under the room lock and must not call back into the room.
type DropHandler func(event domain.EventType, dropped []MemberSession)

// Config holds the per-room game parameters.
type Config struct {
	MaxPlayers   int
	MaxRounds    int
	RoundSeconds int
	TickInterval time.Duration
	Ticker       TickerFunc
	OnDropped    DropHandler
	Now          func() time.Time
}

func DefaultConfig() Config {
	return Config{
		MaxPlayers:   4,
		MaxRounds:    3,
		RoundSeconds: 60,
		TickInterval: time.Second,
		Ticker:       NewTicker,
		Now:          time.Now,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = d.MaxPlayers
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = d.MaxRounds
	}
	if c.RoundSeconds <= 0 {
		c.RoundSeconds = d.RoundSeconds
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.Ticker == nil {
		c.Ticker = d.Ticker
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	return c
}
