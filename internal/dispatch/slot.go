package dispatch

import (
	"errors"

	"github.com/noah-isme/regdesk-api/internal/desk"
)

// ErrSlotOccupied is returned when parking a session into a full slot.
var ErrSlotOccupied = errors.New("slot already holds a session")

// Slot holds the desk session while no operation is running. It is owned by the
// controller goroutine and must only be touched through a Loop.
type Slot struct {
	session desk.Session
}

// Park stores the session. A slot holds at most one session.
func (s *Slot) Park(session desk.Session) error {
	if session == nil {
		return errors.New("park nil session")
	}
	if s.session != nil {
		return ErrSlotOccupied
	}
	s.session = session
	return nil
}

// Take moves the session out of the slot, leaving it empty.
func (s *Slot) Take() (desk.Session, bool) {
	session := s.session
	s.session = nil
	return session, session != nil
}

// Occupied reports whether a session is parked.
func (s *Slot) Occupied() bool {
	return s.session != nil
}
