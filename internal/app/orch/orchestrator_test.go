package orch

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/core/mocks"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// inbox collects what a mocked connection was sent.
type inbox struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (b *inbox) types(t *testing.T) []domain.EventType {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.EventType, 0, len(b.frames))
	for _, f := range b.frames {
		var m domain.Message
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m.Type)
	}
	return out
}

func (b *inbox) last(t *testing.T) domain.Message {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.frames)
	var m domain.Message
	require.NoError(t, json.Unmarshal(b.frames[len(b.frames)-1], &m))
	return m
}

func (b *inbox) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = nil
}

func connect(t *testing.T, ctrl *gomock.Controller, o *Orchestrator, sid domain.ConnID) *inbox {
	t.Helper()
	box := &inbox{}
	conn := mocks.NewMockSignalConnection(ctrl)
	conn.EXPECT().TrySend(gomock.Any()).DoAndReturn(func(f core.Frame) error {
		box.mu.Lock()
		defer box.mu.Unlock()
		box.frames = append(box.frames, f)
		return nil
	}).AnyTimes()
	o.OnConnect(sid, "client-"+string(sid), conn, func() {})
	return box
}

func newOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, core.DefaultConfig(), app.SimplePolicy{})
}

func TestOrchestrator_CreateAndJoin(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	ava := connect(t, ctrl, o, "ava")
	bea := connect(t, ctrl, o, "bea")

	_, err := o.CreateRoom("bea", "Bea", domain.ViewerOnly)
	assert.ErrorIs(t, err, domain.ErrCreationDenied)

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	assert.Equal(t, domain.EventRoomCreated, ava.last(t).Type)

	_, err = o.JoinRoom("bea", "missing", "Bea", domain.ViewerOnly)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	joined, err := o.JoinRoom("bea", " "+string(code)+" ", "Bea", domain.ViewerOnly)
	require.NoError(t, err)
	assert.Equal(t, code, joined)
	assert.Equal(t, domain.EventRoomJoined, bea.last(t).Type)
	assert.Equal(t, domain.EventPlayerJoined, ava.last(t).Type)

	got, _, ok := o.Registry.RoomOf("bea")
	require.True(t, ok)
	assert.Equal(t, code, got)

	snap, ok := o.Snapshot(string(code))
	require.True(t, ok)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, domain.ConnID("ava"), snap.HostID)
	require.Len(t, o.ListRooms(), 1)
	assert.Equal(t, 2, o.ListRooms()[0].MemberCount)
}

func TestOrchestrator_JoinSecondDrawingDevice(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	connect(t, ctrl, o, "ava")
	dan := connect(t, ctrl, o, "dan")

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	joined, err := o.JoinRoom("dan", string(code), "Dan", domain.DrawerCapable)
	require.NoError(t, err)
	assert.Equal(t, code, joined)

	msg := dan.last(t)
	assert.Equal(t, domain.EventRoomJoined, msg.Type)
	assert.Equal(t, domain.ConnID("ava"), msg.State.CurrentDrawer)
	got, _, ok := o.Registry.RoomOf("dan")
	require.True(t, ok)
	assert.Equal(t, code, got)

	require.NoError(t, o.StartGame("dan", string(code)))
	assert.ErrorIs(t, o.SelectWord("dan", string(code), "cat"), domain.ErrNotDrawer)
	require.NoError(t, o.SelectWord("ava", string(code), "cat"))
}

func TestOrchestrator_RejoinSameRoom(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	ava := connect(t, ctrl, o, "ava")

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	ava.reset()

	joined, err := o.JoinRoom("ava", strings.ToUpper(string(code)), "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	assert.Equal(t, code, joined)
	assert.Equal(t, []domain.EventType{domain.EventRoomJoined}, ava.types(t))

	snap, ok := o.Snapshot(string(code))
	require.True(t, ok, "sole member rejoining keeps the room")
	assert.Len(t, snap.Players, 1)
	assert.Equal(t, domain.ConnID("ava"), snap.HostID)
}

func TestOrchestrator_CreateLeavesPreviousRoom(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	connect(t, ctrl, o, "ava")

	first, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	second, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, ok := o.Snapshot(string(first))
	assert.False(t, ok, "empty room is deleted")
	assert.Len(t, o.ListRooms(), 1)
}

func TestOrchestrator_FullGame(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	ava := connect(t, ctrl, o, "ava")
	bea := connect(t, ctrl, o, "bea")

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	require.NoError(t, err)
	c := string(code)

	assert.ErrorIs(t, o.StartGame("bea", c), domain.ErrNotDrawerCapable)
	require.NoError(t, o.StartGame("ava", c))
	require.NoError(t, o.SelectWord("ava", c, "Cat"))
	require.NoError(t, o.DrawingData("ava", c, json.RawMessage(`[{"x":1}]`)))
	assert.Equal(t, domain.EventDrawingUpdate, bea.last(t).Type)

	ava.reset()
	require.NoError(t, o.SubmitGuess("bea", c, "CAT"))
	assert.Equal(t, []domain.EventType{domain.EventCorrectGuess, domain.EventRoundFinished}, ava.types(t))

	require.NoError(t, o.ContinueNextRound("ava", c))
	assert.Equal(t, domain.EventContinueToWordSelection, bea.last(t).Type)

	assert.ErrorIs(t, o.SubmitGuess("bea", "nope", "cat"), domain.ErrRoomNotFound)
}

func TestOrchestrator_Cancel(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	ava := connect(t, ctrl, o, "ava")
	bea := connect(t, ctrl, o, "bea")

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	require.NoError(t, err)
	require.NoError(t, o.StartGame("ava", string(code)))
	require.NoError(t, o.SelectWord("ava", string(code), "Cat"))

	assert.ErrorIs(t, o.CancelGame("bea", string(code)), domain.ErrNotHost)
	require.NoError(t, o.CancelGame("ava", string(code)))

	assert.Equal(t, domain.EventGameCancelled, ava.last(t).Type)
	assert.Equal(t, domain.EventGameCancelled, bea.last(t).Type)
	_, ok := o.Snapshot(string(code))
	assert.False(t, ok)
	_, _, ok = o.Registry.RoomOf("bea")
	assert.False(t, ok)
	_, ok = o.Registry.Get("bea")
	assert.True(t, ok, "connections survive a cancel")

	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestOrchestrator_CancelKeepsNewerRoom(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	connect(t, ctrl, o, "ava")
	connect(t, ctrl, o, "cid")

	other, err := o.CreateRoom("cid", "Cid", domain.DrawerCapable)
	require.NoError(t, err)
	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)

	// bea's read pump rejoins elsewhere while the cancel notice is
	// still being delivered
	bea := mocks.NewMockSignalConnection(ctrl)
	bea.EXPECT().TrySend(gomock.Any()).DoAndReturn(func(f core.Frame) error {
		var m domain.Message
		require.NoError(t, json.Unmarshal(f, &m))
		if m.Type == domain.EventGameCancelled {
			o.Registry.SetRoom("bea", other, nil)
		}
		return nil
	}).AnyTimes()
	o.OnConnect("bea", "client-bea", bea, func() {})
	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	require.NoError(t, err)

	require.NoError(t, o.CancelGame("ava", string(code)))

	got, _, ok := o.Registry.RoomOf("bea")
	require.True(t, ok)
	assert.Equal(t, other, got)
	_, _, ok = o.Registry.RoomOf("ava")
	assert.False(t, ok)
}

func TestOrchestrator_LeaveAndDisconnect(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	connect(t, ctrl, o, "ava")
	bea := connect(t, ctrl, o, "bea")

	_, err := o.LeaveRoom("ava")
	assert.ErrorIs(t, err, domain.ErrNotMember)

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	require.NoError(t, err)
	require.NoError(t, o.StartGame("ava", string(code)))

	o.OnDisconnect("ava")
	msg := bea.last(t)
	assert.Equal(t, domain.EventPlayerLeft, msg.Type)
	assert.Equal(t, domain.PhaseWaiting, msg.State.Phase)
	_, ok := o.Registry.Get("ava")
	assert.False(t, ok)

	left, err := o.LeaveRoom("bea")
	require.NoError(t, err)
	assert.Equal(t, code, left)
	_, ok = o.Snapshot(string(code))
	assert.False(t, ok)
	assert.Empty(t, o.ListRooms())
}

func TestOrchestrator_SlowMemberKicked(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := newOrchestrator(t)
	connect(t, ctrl, o, "ava")

	slow := mocks.NewMockSignalConnection(ctrl)
	var cancelled atomic.Bool
	o.OnConnect("bea", "client-bea", slow, func() { cancelled.Store(true) })
	slow.EXPECT().TrySend(gomock.Any()).Return(nil).Times(1)

	code, err := o.CreateRoom("ava", "Ava", domain.DrawerCapable)
	require.NoError(t, err)
	_, err = o.JoinRoom("bea", string(code), "Bea", domain.ViewerOnly)
	require.NoError(t, err)

	gomock.InOrder(
		slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure),
		slow.EXPECT().Close(),
	)
	require.NoError(t, o.StartGame("ava", string(code)))
	assert.True(t, cancelled.Load(), "pumps are stopped through the registry")
}
