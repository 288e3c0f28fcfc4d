package dialog

import (
	"time"

	"task_reminder_bot/internal/domain/task"
)

// Browse holds what a student has picked so far in the task flow.
type Browse struct {
	ClassID   int64       `json:"class_id,omitempty"`
	ClassName string      `json:"class_name,omitempty"`
	DayID     int64       `json:"day_id,omitempty"`
	DayName   string      `json:"day_name,omitempty"`
	Tasks     []task.Task `json:"tasks,omitempty"`
	Selected  *task.Task  `json:"selected,omitempty"`
}

// Draft is an admin task under construction.
type Draft struct {
	ClassID     int64     `json:"class_id,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	DayID       int64     `json:"day_id,omitempty"`
	DayName     string    `json:"day_name,omitempty"`
	Name        string    `json:"name,omitempty"`
	Kind        task.Kind `json:"kind,omitempty"`
	Description string    `json:"description,omitempty"`
	// RedoDay is set when the admin asked to change the day from the deadline step.
	RedoDay bool `json:"redo_day,omitempty"`
}

// Session is the persisted conversation of one sender.
type Session struct {
	SenderID  string    `json:"sender_id"`
	State     State     `json:"state"`
	History   []State   `json:"history"`
	Browse    Browse    `json:"browse"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a conversation at INITIAL.
func NewSession(senderID string) *Session {
	return &Session{
		SenderID: senderID,
		State:    StateInitial,
		History:  []State{},
	}
}

// Push records the current state and moves to next.
func (s *Session) Push(next State) {
	s.History = append(s.History, s.State)
	s.State = next
}

// Pop moves back to the most recent state. It returns false when history is empty.
func (s *Session) Pop() (State, bool) {
	if len(s.History) == 0 {
		return StateInitial, false
	}
	prev := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	s.State = prev
	s.Browse.trimTo(prev)
	return prev, true
}

// Reset returns to INITIAL with an empty history and no collected data.
func (s *Session) Reset() {
	s.State = StateInitial
	s.History = []State{}
	s.Browse = Browse{}
	s.Draft = Draft{}
}

// ResetTo moves to target and rebuilds history as the forward path to it.
// Browse data deeper than target is dropped; the draft is kept.
func (s *Session) ResetTo(target State) {
	s.State = target
	s.History = Path(target)
	s.Browse.trimTo(target)
}

// Repair walks the session upstream until the current state has the data it
// needs. It returns true if the state changed.
func (s *Session) Repair() bool {
	changed := false
	if !s.State.Valid() {
		s.Reset()
		return true
	}
	for {
		target := s.missingStep()
		if target == "" {
			return changed
		}
		s.ResetTo(target)
		changed = true
	}
}

// requirement is data that must be present once a step has been passed.
type requirement struct {
	from     State
	fallback State
	ok       func(s *Session) bool
}

// requirements are ordered from the shallowest step to the deepest.
var requirements = []requirement{
	{StateDaySelection, StateClassSelection, func(s *Session) bool { return s.Browse.ClassID != 0 }},
	{StateTaskList, StateDaySelection, func(s *Session) bool { return s.Browse.DayID != 0 && len(s.Browse.Tasks) > 0 }},
	{StateNotificationSetup, StateTaskList, func(s *Session) bool { return s.Browse.Selected != nil }},

	{StateAdminDaySelection, StateAdminClassSelection, func(s *Session) bool { return s.Draft.ClassID != 0 }},
	{StateAdminTaskName, StateAdminDaySelection, func(s *Session) bool { return s.Draft.DayID != 0 }},
	{StateAdminTaskType, StateAdminTaskName, func(s *Session) bool { return s.Draft.Name != "" }},
	{StateAdminTaskDescription, StateAdminTaskType, func(s *Session) bool { return s.Draft.Kind != "" }},
}

// missingStep returns the shallowest step whose data is absent for the
// current state, or "" when everything is in place.
func (s *Session) missingStep() State {
	reached := map[State]bool{s.State: true}
	for _, st := range Path(s.State) {
		reached[st] = true
	}
	for _, r := range requirements {
		if reached[r.from] && !r.ok(s) {
			return r.fallback
		}
	}
	return ""
}

// trimTo drops selections made in steps deeper than st.
func (b *Browse) trimTo(st State) {
	switch st {
	case StateInitial, StateClassSelection:
		*b = Browse{}
	case StateDaySelection:
		b.DayID, b.DayName, b.Tasks, b.Selected = 0, "", nil, nil
	case StateTaskList:
		b.Selected = nil
	}
}
