package reminder

import "time"

// Trigger is a computed firing instant.
type Trigger struct {
	At   time.Time
	Kind Kind
}

var offsets = []struct {
	before time.Duration
	kind   Kind
}{
	{72 * time.Hour, KindFar},
	{24 * time.Hour, KindMid},
	{time.Hour, KindNear},
}

// Schedule returns the reminder triggers for a deadline, earliest first.
func Schedule(due time.Time) []Trigger {
	triggers := make([]Trigger, 0, len(offsets))
	for _, o := range offsets {
		triggers = append(triggers, Trigger{At: due.Add(-o.before), Kind: o.kind})
	}
	return triggers
}

// Upcoming keeps only the triggers strictly after now.
func Upcoming(triggers []Trigger, now time.Time) []Trigger {
	out := make([]Trigger, 0, len(triggers))
	for _, t := range triggers {
		if t.At.After(now) {
			out = append(out, t)
		}
	}
	return out
}

// Build turns triggers into reminder rows for a recipient.
func Build(phone string, taskID int64, triggers []Trigger) []*Reminder {
	rs := make([]*Reminder, 0, len(triggers))
	for _, t := range triggers {
		rs = append(rs, &Reminder{
			Phone:     phone,
			TaskID:    taskID,
			TriggerAt: t.At,
			Kind:      t.Kind,
		})
	}
	return rs
}
