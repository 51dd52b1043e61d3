package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Session is one user's pass through the wizard.
type Session struct {
	ID        string    `json:"id"`
	Locale    Locale    `json:"locale"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session at the first wizard step.
func NewSession(locale Locale) *Session {
	if locale == "" {
		locale = DefaultLocale
	}
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Locale:    locale,
		Snapshot:  NewSnapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State returns the current wizard state.
func (s *Session) State() State {
	return s.Snapshot.State
}

// Stage returns the current wizard step (1-3).
func (s *Session) Stage() int {
	return s.Snapshot.State.Stage()
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	out := *s
	out.Snapshot = s.Snapshot.Clone()
	return &out
}

// apply runs ev through Transition and stores the result.
func (s *Session) apply(ev Event) error {
	next, err := Transition(s.Snapshot, ev)
	if err != nil {
		return err
	}
	s.Snapshot = next
	s.UpdatedAt = time.Now().UTC()
	return nil
}
