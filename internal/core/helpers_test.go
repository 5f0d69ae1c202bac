package core

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/stretchr/testify/require"
)

// recordingConn keeps every frame it was asked to send.
type recordingConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
	closed bool
}

func (c *recordingConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	if c.full {
		return ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConn) setFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

func (c *recordingConn) messages(t *testing.T) []domain.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, 0, len(c.frames))
	for _, f := range c.frames {
		var m domain.Message
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *recordingConn) types(t *testing.T) []domain.EventType {
	t.Helper()
	var out []domain.EventType
	for _, m := range c.messages(t) {
		out = append(out, m.Type)
	}
	return out
}

func (c *recordingConn) last(t *testing.T) domain.Message {
	t.Helper()
	msgs := c.messages(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// manualTicker hands out one channel per Start so a stopped countdown
// can never swallow a tick meant for the next one.
type manualTicker struct {
	mu      sync.Mutex
	current chan time.Time
	starts  int
}

func (m *manualTicker) ticker(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = make(chan time.Time)
	m.starts++
	return m.current, func() {}
}

func (m *manualTicker) fire(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	c := m.current
	m.mu.Unlock()
	require.NotNil(t, c, "timer never started")
	select {
	case c <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("tick not consumed")
	}
}

type player struct {
	id   domain.ConnID
	conn *recordingConn
	ms   MemberSession
}

func newPlayer(id, name string, capability domain.Capability) player {
	conn := &recordingConn{}
	meta := domain.NewPlayer(domain.ConnID(id), name, capability)
	return player{id: meta.ID, conn: conn, ms: NewMemberSession(meta, conn)}
}

func testConfig(tk *manualTicker) Config {
	cfg := DefaultConfig()
	cfg.Ticker = tk.ticker
	cfg.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return cfg
}

// newGame builds a room hosted by Ava (mobile) with Bea (web) joined.
func newGame(t *testing.T) (*Room, *manualTicker, player, player) {
	t.Helper()
	tk := &manualTicker{}
	ava := newPlayer("ava", "Ava", domain.DrawerCapable)
	bea := newPlayer("bea", "Bea", domain.ViewerOnly)
	r := NewRoom(context.Background(), "abcd1234", ava.id, testConfig(tk))
	t.Cleanup(r.Close)
	require.NoError(t, r.AddPlayer(ava.ms, domain.EventRoomCreated))
	require.NoError(t, r.AddPlayer(bea.ms, domain.EventRoomJoined))
	return r, tk, ava, bea
}

// drawing advances a fresh game into the drawing phase with the given word.
func drawing(t *testing.T, word string) (*Room, *manualTicker, player, player) {
	t.Helper()
	r, tk, ava, bea := newGame(t)
	require.NoError(t, r.StartRound(ava.id))
	require.NoError(t, r.SelectWord(ava.id, word))
	ava.conn.reset()
	bea.conn.reset()
	return r, tk, ava, bea
}

func (r *Room) currentGen() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.gen
}

func (r *Room) phaseNow() domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}
