package decision

import (
	"time"

	"github.com/google/uuid"

	"github.com/stevenvo780/duetsim/internal/entity"
)

// Session is the live record of one activity run. Exactly one session
// is open per entity; it folds into habit bias when superseded.
type Session struct {
	ID              uuid.UUID       `json:"id"`
	Activity        entity.Activity `json:"activity"`
	StartedAt       time.Time       `json:"started_at"`
	PlannedDuration time.Duration   `json:"planned_duration"`
	Effectiveness   float64         `json:"effectiveness"`
	Satisfaction    float64         `json:"satisfaction"`
	Interruptions   int             `json:"interruptions"`
}

func newSession(act entity.Activity, now time.Time, planned time.Duration) *Session {
	return &Session{
		ID:              uuid.New(),
		Activity:        act,
		StartedAt:       now,
		PlannedDuration: planned,
		Effectiveness:   0.5,
	}
}

// habit bias bounds and learning steps.
const (
	habitMax      = 5.0
	habitMin      = -5.0
	habitStepUp   = 0.5
	habitStepDown = 0.2
	satisfiedBar  = 0.7
)

// State is the per-entity decision state: the open session and the
// learned habit bias. Owned by the caller and passed by handle so no
// process-wide maps accumulate.
type State struct {
	Session *Session
	habits  map[entity.Activity]float64
}

// NewState returns empty decision state.
func NewState() *State {
	return &State{habits: make(map[entity.Activity]float64)}
}

// HabitBias returns the learned bias for an activity, zero if unseen.
func (st *State) HabitBias(act entity.Activity) float64 {
	return st.habits[act]
}

// RecordInterruption marks the open session as interrupted by an
// external event.
func (st *State) RecordInterruption() {
	if st.Session != nil {
		st.Session.Interruptions++
	}
}

// ClearHabits resets all learned bias.
func (st *State) ClearHabits() {
	st.habits = make(map[entity.Activity]float64)
}

func (st *State) adjustHabit(act entity.Activity, satisfaction float64) {
	delta := -habitStepDown
	if satisfaction > satisfiedBar {
		delta = habitStepUp
	}
	v := st.habits[act] + delta
	if v > habitMax {
		v = habitMax
	}
	if v < habitMin {
		v = habitMin
	}
	st.habits[act] = v
}
