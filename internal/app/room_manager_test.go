package app

import (
	"context"
	"testing"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/core/mocks"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func silentMember(ctrl *gomock.Controller, id string, capability domain.Capability) core.MemberSession {
	conn := mocks.NewMockSignalConnection(ctrl)
	conn.EXPECT().TrySend(gomock.Any()).Return(nil).AnyTimes()
	return core.NewMemberSession(domain.NewPlayer(domain.ConnID(id), id, capability), conn)
}

func TestDirectory_CreateAndLookup(t *testing.T) {
	t.Parallel()
	d := NewDirectory(context.Background(), core.DefaultConfig())

	room, err := d.Create("host")
	require.NoError(t, err)
	assert.Len(t, string(room.Code()), 8)

	got, ok := d.Lookup(" " + string(room.Code()) + " ")
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = d.Lookup("nope")
	assert.False(t, ok)
}

func TestDirectory_LookupIgnoresCase(t *testing.T) {
	t.Parallel()
	d := NewDirectory(context.Background(), core.DefaultConfig())
	d.newCode = func() string { return "AbCd1234" }

	room, err := d.Create("host")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("abcd1234"), room.Code())

	_, ok := d.Lookup("ABCD1234")
	assert.True(t, ok)
}

func TestDirectory_CodeCollision(t *testing.T) {
	t.Parallel()
	d := NewDirectory(context.Background(), core.DefaultConfig())
	codes := []string{"aaaa", "aaaa", "bbbb"}
	d.newCode = func() string {
		c := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return c
	}

	first, err := d.Create("a")
	require.NoError(t, err)
	second, err := d.Create("b")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("aaaa"), first.Code())
	assert.Equal(t, domain.RoomCode("bbbb"), second.Code())

	_, err = d.Create("c")
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Len(t, d.List(), 2)
}

func TestDirectory_DeleteIfEmpty(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	d := NewDirectory(context.Background(), core.DefaultConfig())

	room, err := d.Create("host")
	require.NoError(t, err)
	host := silentMember(ctrl, "host", domain.DrawerCapable)
	require.NoError(t, room.AddPlayer(host, domain.EventRoomCreated))

	assert.False(t, d.DeleteIfEmpty(room.Code()))
	_, ok := d.Lookup(string(room.Code()))
	assert.True(t, ok)

	room.RemovePlayer("host")
	assert.True(t, d.DeleteIfEmpty(room.Code()))
	_, ok = d.Lookup(string(room.Code()))
	assert.False(t, ok)
	assert.False(t, d.DeleteIfEmpty(room.Code()))

	late := silentMember(ctrl, "late", domain.ViewerOnly)
	assert.ErrorIs(t, room.AddPlayer(late, domain.EventRoomJoined), domain.ErrRoomNotFound)
}

func TestDirectory_DeleteAndList(t *testing.T) {
	t.Parallel()
	d := NewDirectory(context.Background(), core.DefaultConfig())
	codes := []string{"zzzz", "mmmm"}
	d.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}
	_, err := d.Create("a")
	require.NoError(t, err)
	_, err = d.Create("b")
	require.NoError(t, err)

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoomCode("mmmm"), list[0].Code)
	assert.Equal(t, domain.PhaseWaiting, list[0].Phase)
	assert.Zero(t, list[0].MemberCount)

	d.Delete("zzzz")
	d.Delete("zzzz")
	assert.Len(t, d.List(), 1)
}
