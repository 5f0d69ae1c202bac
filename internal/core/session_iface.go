package core

import "github.com/dkeye/Sketch/internal/domain"

// MemberSession binds domain.Player and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Player
	Signal() SignalConnection
}
