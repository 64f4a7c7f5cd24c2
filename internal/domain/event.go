package domain

import "time"

type EventStatus string

const (
	EventActive       EventStatus = "ACTIVE"
	EventResolvedDoom EventStatus = "RESOLVED_DOOM"
	EventResolvedLife EventStatus = "RESOLVED_LIFE"
	EventCancelled    EventStatus = "CANCELLED"
)

type Outcome string

const (
	OutcomeDoom Outcome = "DOOM"
	OutcomeLife Outcome = "LIFE"
)

// WindowState is the derived lifecycle state of the dispute window. The
// persisted event status stays four-valued; PROPOSED/DISPUTED/ESCALATED are
// computed from the proposal fields and the event's dispute records.
type WindowState string

const (
	WindowActive    WindowState = "ACTIVE"
	WindowProposed  WindowState = "PROPOSED"
	WindowDisputed  WindowState = "DISPUTED"
	WindowEscalated WindowState = "ESCALATED"
	WindowResolved  WindowState = "RESOLVED"
	WindowCancelled WindowState = "CANCELLED"
)

type Event struct {
	ID                 string
	CreatorID          string
	Title              string
	Description        string
	Status             EventStatus
	TotalDoomStake     int64
	TotalLifeStake     int64
	ProposedOutcome    *Outcome
	ProposedAt         *time.Time
	ResolvedAt         *time.Time
	BettingDeadline    time.Time
	EventDeadline      time.Time
	ResolutionDeadline time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EventDeadlines is the derived timing record for one event.
// DisputeWindowEnd is recomputed each time an outcome is proposed.
type EventDeadlines struct {
	BettingDeadline    time.Time
	EventDeadline      time.Time
	ResolutionDeadline time.Time
	DisputeWindowEnd   *time.Time
}

func (e *Event) TotalPool() int64 {
	return e.TotalDoomStake + e.TotalLifeStake
}

func (e *Event) WinningPool(outcome Outcome) int64 {
	if outcome == OutcomeDoom {
		return e.TotalDoomStake
	}
	return e.TotalLifeStake
}

func (e *Event) IsBettingOpen(now time.Time) bool {
	return e.Status == EventActive && now.Before(e.BettingDeadline)
}

func (e *Event) CanResolve(now time.Time) bool {
	return e.Status == EventActive && !now.Before(e.EventDeadline)
}

func (e *Event) IsTerminal() bool {
	return e.Status != EventActive
}

// ResolvedStatus maps an outcome to the terminal status settlement writes.
func ResolvedStatus(outcome Outcome) EventStatus {
	if outcome == OutcomeDoom {
		return EventResolvedDoom
	}
	return EventResolvedLife
}

// DisputeWindowEnd returns proposedAt + window, or nil while no outcome is
// proposed.
func (e *Event) DisputeWindowEnd(window time.Duration) *time.Time {
	if e.ProposedAt == nil {
		return nil
	}
	end := e.ProposedAt.Add(window)
	return &end
}

func (e *Event) Deadlines(window time.Duration) EventDeadlines {
	return EventDeadlines{
		BettingDeadline:    e.BettingDeadline,
		EventDeadline:      e.EventDeadline,
		ResolutionDeadline: e.ResolutionDeadline,
		DisputeWindowEnd:   e.DisputeWindowEnd(window),
	}
}

// DoomOdds returns the implied probability of DOOM as percentage * 100.
// An empty pool reads as even odds.
func (e *Event) DoomOdds() int64 {
	total := e.TotalPool()
	if total == 0 {
		return 5000
	}
	return e.TotalDoomStake * 10000 / total
}

func (e *Event) LifeOdds() int64 {
	total := e.TotalPool()
	if total == 0 {
		return 5000
	}
	return e.TotalLifeStake * 10000 / total
}

// Opposite returns the other outcome token.
func Opposite(outcome Outcome) Outcome {
	if outcome == OutcomeDoom {
		return OutcomeLife
	}
	return OutcomeDoom
}

type EventRepository interface {
	CreateEvent(event *Event) error
	GetEventByID(eventID string) (*Event, error)
	AddStake(eventID string, outcome Outcome, amount int64) error

	// SetProposedOutcome writes the proposal only while the event is active
	// and carries no live proposal. Returns false when the guard fails.
	SetProposedOutcome(eventID string, outcome Outcome, proposedAt time.Time) (bool, error)
	// ClearProposedOutcome voids a live proposal (upheld dispute path).
	ClearProposedOutcome(eventID string) (bool, error)

	// MarkResolved is the race-free resolution guard: a single conditional
	// update from ACTIVE to the terminal status. Returns false when the event
	// was no longer active.
	MarkResolved(eventID string, status EventStatus, resolvedAt time.Time) (bool, error)
	MarkCancelled(eventID string) (bool, error)

	// FindFinalizable returns active events whose dispute window closed before
	// the cutoff with no open disputes left.
	FindFinalizable(windowCutoff time.Time) ([]*Event, error)
}
