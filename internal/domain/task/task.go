package task

import (
	"time"
)

// Kind is the category of a task.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindGroup      Kind = "group"
	KindExam       Kind = "exam"
	KindQuiz       Kind = "quiz"
	KindProject    Kind = "project"
)

// Kinds lists task kinds in menu order; choice "1" is Kinds[0].
var Kinds = []Kind{KindIndividual, KindGroup, KindExam, KindQuiz, KindProject}

// KindFromChoice maps a 1-based menu choice to a Kind.
func KindFromChoice(choice string) (Kind, bool) {
	for i, k := range Kinds {
		if choice == string(rune('1'+i)) {
			return k, true
		}
	}
	return "", false
}

// Label returns the human readable name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindIndividual:
		return "Individual"
	case KindGroup:
		return "Group"
	case KindExam:
		return "Exam"
	case KindQuiz:
		return "Quiz"
	case KindProject:
		return "Project"
	default:
		return string(k)
	}
}

// Task is an assignment for a class on a given day of the week.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	ClassID     int64     `db:"class_id" json:"class_id"`
	DayID       int64     `db:"day_id" json:"day_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Kind        Kind      `db:"kind" json:"kind"`
	DueAt       time.Time `db:"due_at" json:"due_at"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassRef is a class reference row.
type ClassRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// DayRef is a weekday reference row. IDs follow ISO numbering, 1 = Monday.
type DayRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
