package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

// closeGuessDistance is the largest edit distance that still earns a hint.
const closeGuessDistance = 2

// Room is one game session. Every mutation and every fan-out happens under
// mu, so members observe events in the order the state changed.
// It never closes adapter-owned resources.
type Room struct {
	code   domain.RoomCode
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	hostID   domain.ConnID
	drawerID domain.ConnID
	members  []MemberSession
	phase    domain.Phase
	word     string
	strokes  json.RawMessage
	guesses  []domain.Guess
	timeLeft int
	round    int
	locked   bool
	timer    *RoundTimer
}

func NewRoom(parent context.Context, code domain.RoomCode, host domain.ConnID, cfg Config) *Room {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:     code,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		hostID:   host,
		phase:    domain.PhaseWaiting,
		timeLeft: cfg.RoundSeconds,
	}
	r.timer = NewRoundTimer(cfg.TickInterval, cfg.Ticker, r.tick)
	return r
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{Code: r.code, MemberCount: len(r.members), Phase: r.phase}
}

// Snapshot is the viewer projection, safe for any audience.
func (r *Room) Snapshot() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.project("")
}

// SnapshotFor is the projection a given member receives.
func (r *Room) SnapshotFor(id domain.ConnID) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.project(id)
}

// AddPlayer admits a member and acknowledges it with ack
// (room-created or room-joined). Existing members get player-joined.
func (r *Room) AddPlayer(ms MemberSession, ack domain.EventType) error {
	p := ms.Meta()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrRoomNotFound
	}
	if len(r.members) >= r.cfg.MaxPlayers {
		return domain.ErrRoomFull
	}

	// A second drawing device joins as a guesser; the first keeps the pen.
	p.IsDrawing = false
	r.members = append(r.members, ms)
	if p.Capability == domain.DrawerCapable && r.drawerID == "" {
		r.drawerID = p.ID
		if r.hostID == "" {
			r.hostID = p.ID
		}
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(p.ID)).
		Str("capability", p.Capability.String()).Int("members", len(r.members)).Msg("player added")

	r.sendTo(ms, domain.Message{Type: ack, Room: r.code}, true)
	r.fanout(p.ID, domain.Message{Type: domain.EventPlayerJoined}, true)
	return nil
}

// Acknowledge repeats ack with fresh state to a member that is already in
// the room.
func (r *Room) Acknowledge(id domain.ConnID, ack domain.EventType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.member(id)
	if m == nil {
		return domain.ErrNotMember
	}
	r.sendTo(m, domain.Message{Type: ack, Room: r.code}, true)
	return nil
}

// RemovePlayer drops a member on leave or disconnect and reports how many remain.
// Losing the drawer resets the room to waiting and hands the pen to the next
// drawing device, if any.
func (r *Room) RemovePlayer(id domain.ConnID) (remaining int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return len(r.members), false
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	if id == r.drawerID {
		r.timer.Stop()
		r.drawerID = ""
		r.phase = domain.PhaseWaiting
		r.word = ""
		r.strokes = nil
		r.guesses = nil
		r.locked = false
		r.round = 0
		r.timeLeft = r.cfg.RoundSeconds
	}
	if id == r.hostID {
		r.hostID = ""
	}
	if r.drawerID == "" {
		r.promoteDrawer()
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(id)).
		Str("phase", string(r.phase)).Int("members", len(r.members)).Msg("player removed")

	if len(r.members) > 0 {
		r.fanout("", domain.Message{Type: domain.EventPlayerLeft}, true)
	}
	return len(r.members), true
}

// StartRound moves a waiting room into word selection.
func (r *Room) StartRound(caller domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.member(caller)
	if m == nil {
		return domain.ErrNotMember
	}
	if m.Meta().Capability != domain.DrawerCapable {
		return domain.ErrNotDrawerCapable
	}
	if r.phase != domain.PhaseWaiting {
		return domain.ErrPhaseMismatch
	}
	if len(r.members) < 2 {
		return domain.ErrTooFewPlayers
	}
	if r.drawerID == "" {
		return domain.ErrNoDrawer
	}

	r.round++
	r.resetRound()
	r.phase = domain.PhaseWordSelection
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("round", r.round).Msg("round started")
	r.fanout("", domain.Message{Type: domain.EventGameStarted}, true)
	return nil
}

// SelectWord sets the secret word and starts the countdown.
func (r *Room) SelectWord(caller domain.ConnID, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.member(caller) == nil {
		return domain.ErrNotMember
	}
	if caller != r.drawerID {
		return domain.ErrNotDrawer
	}
	if r.phase != domain.PhaseWordSelection {
		return domain.ErrPhaseMismatch
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return domain.ErrEmptyWord
	}

	r.word = word
	r.strokes = nil
	r.locked = false
	r.timeLeft = r.cfg.RoundSeconds
	r.phase = domain.PhaseDrawing
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("round", r.round).Msg("word selected")
	r.fanout("", domain.Message{Type: domain.EventWordSelected}, true)
	r.timer.Start(r.ctx)
	return nil
}

// UpdateDrawing replaces the stroke buffer and relays it to everyone but the drawer.
// Delivery is best effort; a member with a full buffer misses this frame.
func (r *Room) UpdateDrawing(caller domain.ConnID, strokes json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.member(caller) == nil {
		return domain.ErrNotMember
	}
	if caller != r.drawerID {
		return domain.ErrNotDrawer
	}
	if r.phase != domain.PhaseDrawing {
		return domain.ErrPhaseMismatch
	}

	r.strokes = append(json.RawMessage(nil), strokes...)
	r.fanout(caller, domain.Message{Type: domain.EventDrawingUpdate, Drawing: r.strokes}, false)
	return nil
}

// SubmitGuess records a guess. A correct one scores, locks the round and
// emits correct-guess (still drawing) followed by round-finished.
func (r *Room) SubmitGuess(caller domain.ConnID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.member(caller)
	if m == nil {
		return domain.ErrNotMember
	}
	if caller == r.drawerID {
		return domain.ErrDrawerCannotGuess
	}
	if r.phase != domain.PhaseDrawing {
		return domain.ErrPhaseMismatch
	}
	if r.locked {
		return domain.ErrRoundLocked
	}
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return domain.ErrEmptyGuess
	}

	guesser := m.Meta()
	g := domain.Guess{
		PlayerID:   guesser.ID,
		PlayerName: guesser.Name,
		Text:       text,
		Timestamp:  r.cfg.Now().UnixMilli(),
	}
	r.guesses = append(r.guesses, g)

	if !strings.EqualFold(normalized, r.word) {
		r.fanout("", domain.Message{Type: domain.EventGuessSubmitted, Guess: &g}, false)
		dist := levenshtein.ComputeDistance(strings.ToLower(normalized), strings.ToLower(r.word))
		if dist <= closeGuessDistance && len(r.word) > closeGuessDistance {
			r.sendTo(m, domain.Message{Type: domain.EventGuessClose, Guess: &g, Distance: dist}, false)
		}
		return nil
	}

	if d := r.member(r.drawerID); d != nil {
		d.Meta().Score += domain.DrawerPoints
	}
	guesser.Score += domain.GuesserPoints
	r.locked = true
	r.timer.Stop()
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(caller)).
		Int("round", r.round).Msg("correct guess")

	r.fanout("", domain.Message{Type: domain.EventCorrectGuess, Guess: &g}, true)
	r.phase = domain.PhaseFinished
	r.fanout("", domain.Message{Type: domain.EventRoundFinished, Answer: r.word}, true)
	return nil
}

// tick is the Round Timer callback. Ticks from a stopped timer are ignored.
func (r *Room) tick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.timer.Active(gen) || r.phase != domain.PhaseDrawing {
		return
	}
	r.timeLeft--
	left := r.timeLeft
	r.fanout("", domain.Message{Type: domain.EventTimerUpdate, TimeLeft: &left}, false)
	if r.timeLeft > 0 {
		return
	}

	r.timer.Stop()
	r.phase = domain.PhaseFinished
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("round", r.round).Msg("round timed out")
	r.fanout("", domain.Message{Type: domain.EventRoundEnded, Answer: r.word}, true)
}

// ContinueToNextRound is the host's move out of a finished round.
func (r *Room) ContinueToNextRound(caller domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.member(caller) == nil {
		return domain.ErrNotMember
	}
	if caller != r.hostID {
		return domain.ErrNotHost
	}
	if r.phase != domain.PhaseFinished {
		return domain.ErrPhaseMismatch
	}
	r.timer.Stop()

	if r.round >= r.cfg.MaxRounds {
		r.phase = domain.PhaseGameOver
		log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("round", r.round).Msg("game over")
		r.fanout("", domain.Message{Type: domain.EventGameOver}, true)
		return nil
	}

	r.round++
	r.resetRound()
	r.phase = domain.PhaseWordSelection
	r.fanout("", domain.Message{Type: domain.EventContinueToWordSelection}, true)
	return nil
}

// Cancel ends the game from any phase. Every member is notified and evicted,
// the room is closed, and the evicted ids are returned.
func (r *Room) Cancel(caller domain.ConnID) ([]domain.ConnID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.member(caller) == nil {
		return nil, domain.ErrNotMember
	}
	if caller != r.hostID {
		return nil, domain.ErrNotHost
	}
	r.timer.Stop()
	r.fanout("", domain.Message{Type: domain.EventGameCancelled, Room: r.code}, false)

	evicted := make([]domain.ConnID, 0, len(r.members))
	for _, m := range r.members {
		evicted = append(evicted, m.Meta().ID)
	}
	r.members = nil
	r.drawerID = ""
	r.closeLocked()
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("evicted", len(evicted)).Msg("game cancelled")
	return evicted, nil
}

// Close stops the timer and refuses further joins.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// CloseIfEmpty closes the room only when nobody is left in it.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closeLocked()
	return true
}

func (r *Room) closeLocked() {
	r.closed = true
	r.timer.Stop()
	r.cancel()
}

func (r *Room) resetRound() {
	r.word = ""
	r.strokes = nil
	r.guesses = nil
	r.locked = false
	r.timeLeft = r.cfg.RoundSeconds
}

func (r *Room) indexOf(id domain.ConnID) int {
	for i, m := range r.members {
		if m.Meta().ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) member(id domain.ConnID) MemberSession {
	if i := r.indexOf(id); i >= 0 {
		return r.members[i]
	}
	return nil
}

func (r *Room) promoteDrawer() {
	for _, m := range r.members {
		if p := m.Meta(); p.Capability == domain.DrawerCapable {
			r.drawerID = p.ID
			if r.hostID == "" {
				r.hostID = p.ID
			}
			return
		}
	}
}

// fanout sends msg to every member except `except`. With withState each
// recipient gets its own projection; drawer and viewer frames are encoded once.
func (r *Room) fanout(except domain.ConnID, msg domain.Message, withState bool) PublishResult {
	var drawerFrame, viewerFrame Frame
	res := PublishResult{}
	for _, m := range r.members {
		id := m.Meta().ID
		if id == except {
			continue
		}
		var frame *Frame
		if withState && id == r.drawerID {
			frame = &drawerFrame
		} else {
			frame = &viewerFrame
		}
		if *frame == nil {
			out := msg
			if withState {
				out.State = r.project(id)
			}
			f, err := Encode(out)
			if err != nil {
				log.Error().Err(err).Str("module", "core.room").Str("type", string(msg.Type)).Msg("encode")
				return res
			}
			*frame = f
		}
		if err := m.Signal().TrySend(*frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("type", string(msg.Type)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	r.reportDropped(msg.Type, res)
	return res
}

func (r *Room) sendTo(m MemberSession, msg domain.Message, withState bool) {
	if withState {
		msg.State = r.project(m.Meta().ID)
	}
	f, err := Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("type", string(msg.Type)).Msg("encode")
		return
	}
	if err := m.Signal().TrySend(f); err != nil {
		r.reportDropped(msg.Type, PublishResult{Dropped: []MemberSession{m}})
	}
}

func (r *Room) reportDropped(event domain.EventType, res PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	log.Warn().Str("module", "core.room").Str("room", string(r.code)).Str("type", string(event)).
		Int("dropped", len(res.Dropped)).Msg("backpressure")
	if r.cfg.OnDropped != nil {
		r.cfg.OnDropped(event, res.Dropped)
	}
}
