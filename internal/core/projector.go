package core

import (
	"strings"
	"unicode"

	"github.com/dkeye/Sketch/internal/domain"
)

// MaskWord keeps the shape of the word and hides its letters.
func MaskWord(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return r
		}
		return '_'
	}, word)
}

// project derives the snapshot a given member is allowed to see.
// The word is only ever present while drawing, and only the drawer sees it
// in clear; everyone else gets the mask. Must be called with r.mu held.
func (r *Room) project(viewer domain.ConnID) *domain.Snapshot {
	s := &domain.Snapshot{
		ID:            r.code,
		Players:       make([]domain.Player, 0, len(r.members)),
		HostID:        r.hostID,
		CurrentDrawer: r.drawerID,
		Phase:         r.phase,
		DrawingData:   r.strokes,
		Guesses:       append([]domain.Guess(nil), r.guesses...),
		TimeLeft:      r.timeLeft,
		Round:         r.round,
		MaxRounds:     r.cfg.MaxRounds,
		Scores:        make(map[domain.ConnID]int, len(r.members)),
	}
	if s.Guesses == nil {
		s.Guesses = []domain.Guess{}
	}
	for _, m := range r.members {
		p := *m.Meta()
		p.IsDrawing = p.ID == r.drawerID && r.phase != domain.PhaseWaiting
		s.Players = append(s.Players, p)
		s.Scores[p.ID] = p.Score
	}
	if r.phase == domain.PhaseDrawing {
		if viewer != "" && viewer == r.drawerID {
			s.CurrentWord = r.word
		} else {
			s.CurrentWord = MaskWord(r.word)
		}
	}
	return s
}
