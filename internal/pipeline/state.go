// Package pipeline sequences the cover letter wizard: fetch and analyze a job posting, attach a
// résumé, then compose a cover letter. Session state advances only through Transition.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// State is a wizard state.
type State string

// Wizard states.
const (
	StateAwaitingJobURL State = "awaiting_job_url"
	StateAnalyzed       State = "analyzed"
	StateResumeAttached State = "resume_attached"
	StateGenerated      State = "generated"
)

// Stage returns the wizard step (1-3) shown for the state.
func (s State) Stage() int {
	switch s {
	case StateAnalyzed, StateResumeAttached:
		return 2
	case StateGenerated:
		return 3
	default:
		return 1
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateAwaitingJobURL, StateAnalyzed, StateResumeAttached, StateGenerated:
		return true
	}
	return false
}

// Snapshot is the complete state of one wizard session.
type Snapshot struct {
	State      State                   `json:"state"`
	JobURL     string                  `json:"job_url,omitempty"`
	CompanyURL string                  `json:"company_url,omitempty"`
	Analysis   *types.JobAnalysis      `json:"analysis,omitempty"`
	Resume     *types.Resume           `json:"resume,omitempty"`
	Content    *types.GeneratedContent `json:"content,omitempty"`
}

// NewSnapshot returns the initial snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{State: StateAwaitingJobURL}
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Analysis = s.Analysis.Clone()
	if s.Resume != nil {
		r := *s.Resume
		out.Resume = &r
	}
	if s.Content != nil {
		c := *s.Content
		out.Content = &c
	}
	return out
}

// EventKind identifies a transition trigger.
type EventKind string

// Events.
const (
	EventAnalysisCompleted EventKind = "analysis_completed"
	EventResumeAttached    EventKind = "resume_attached"
	EventContentGenerated  EventKind = "content_generated"
	EventGoBack            EventKind = "go_back"
	EventReset             EventKind = "reset"
)

// Event is a transition trigger with its payload.
type Event struct {
	Kind       EventKind
	JobURL     string
	CompanyURL string
	Analysis   *types.JobAnalysis
	Resume     *types.Resume
	Content    *types.GeneratedContent
}

// AnalysisCompleted records a finished job analysis.
func AnalysisCompleted(jobURL, companyURL string, analysis *types.JobAnalysis) Event {
	return Event{Kind: EventAnalysisCompleted, JobURL: jobURL, CompanyURL: companyURL, Analysis: analysis}
}

// ResumeAttached records an ingested résumé.
func ResumeAttached(resume *types.Resume) Event {
	return Event{Kind: EventResumeAttached, Resume: resume}
}

// ContentGenerated records a composed cover letter.
func ContentGenerated(content *types.GeneratedContent) Event {
	return Event{Kind: EventContentGenerated, Content: content}
}

// GoBack returns to the previous wizard step.
func GoBack() Event { return Event{Kind: EventGoBack} }

// Reset discards the whole session.
func Reset() Event { return Event{Kind: EventReset} }

// ErrInvalidTransition classifies every rejected transition.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError describes a rejected transition.
type TransitionError struct {
	From   State
	Event  EventKind
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot apply %s in state %s: %s", e.Event, e.From, e.Reason)
}

// Is reports whether target is ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// allowed lists the states each event may be applied in.
var allowed = map[EventKind][]State{
	EventAnalysisCompleted: {StateAwaitingJobURL},
	EventResumeAttached:    {StateAnalyzed, StateResumeAttached},
	EventContentGenerated:  {StateAnalyzed, StateResumeAttached, StateGenerated},
	EventGoBack:            {StateAnalyzed, StateResumeAttached, StateGenerated},
	EventReset:             {StateAwaitingJobURL, StateAnalyzed, StateResumeAttached, StateGenerated},
}

// CanApply reports whether an event of kind may be applied in state, without checking its payload.
func CanApply(state State, kind EventKind) error {
	for _, s := range allowed[kind] {
		if s == state {
			return nil
		}
	}
	return &TransitionError{From: state, Event: kind, Reason: "not allowed in this state"}
}

// Transition applies ev to s and returns the next snapshot. s is never modified; on error the
// returned snapshot equals s.
//
// Going back keeps everything already captured except generated content; Reset discards all of it.
// A fresh analysis supersedes any earlier content but keeps an attached résumé.
func Transition(s Snapshot, ev Event) (Snapshot, error) {
	if err := CanApply(s.State, ev.Kind); err != nil {
		return s, err
	}

	next := s.Clone()
	switch ev.Kind {
	case EventAnalysisCompleted:
		if ev.Analysis == nil {
			return s, &TransitionError{From: s.State, Event: ev.Kind, Reason: "analysis is missing"}
		}
		next.State = StateAnalyzed
		next.JobURL = ev.JobURL
		next.CompanyURL = ev.CompanyURL
		next.Analysis = ev.Analysis.Clone()
		next.Content = nil

	case EventResumeAttached:
		if ev.Resume.IsEmpty() {
			return s, &TransitionError{From: s.State, Event: ev.Kind, Reason: "resume is empty"}
		}
		r := *ev.Resume
		next.State = StateResumeAttached
		next.Resume = &r

	case EventContentGenerated:
		if s.Analysis == nil {
			return s, &TransitionError{From: s.State, Event: ev.Kind, Reason: "analysis is missing"}
		}
		if s.Resume.IsEmpty() {
			return s, &TransitionError{From: s.State, Event: ev.Kind, Reason: "resume is missing"}
		}
		if ev.Content == nil {
			return s, &TransitionError{From: s.State, Event: ev.Kind, Reason: "content is missing"}
		}
		c := *ev.Content
		next.State = StateGenerated
		next.Content = &c

	case EventGoBack:
		if s.State == StateGenerated {
			next.State = StateAnalyzed
			next.Content = nil
		} else {
			next.State = StateAwaitingJobURL
		}

	case EventReset:
		next = NewSnapshot()
	}

	return next, nil
}
