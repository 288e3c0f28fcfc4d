package app

import (
	"fmt"
	"time"

	"task_reminder_bot/internal/domain/reminder"
	"task_reminder_bot/internal/domain/task"
)

var reminderHeadlines = map[reminder.Kind]string{
	reminder.KindFar:  "Reminder: \"%s\" is due in 3 days.",
	reminder.KindMid:  "Heads up: \"%s\" is due tomorrow.",
	reminder.KindNear: "Last call: \"%s\" is due in 1 hour!",
}

const genericReminderHeadline = "Reminder for \"%s\"."

// renderReminder builds the outgoing text. p must be Complete.
func renderReminder(p reminder.Pending, loc *time.Location) string {
	headline, ok := reminderHeadlines[p.Kind]
	if !ok {
		headline = genericReminderHeadline
	}

	desc := p.TaskDescription.String
	if desc == "" {
		desc = "-"
	}
	kind := task.Kind(p.TaskKind.String)

	return fmt.Sprintf(headline+"\n\nDescription: %s\nDeadline: %s\nType: %s",
		p.TaskName.String, desc, task.FormatDeadline(p.DueAt.Time, loc), kind.Label())
}
