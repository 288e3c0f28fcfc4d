package app

import (
	"fmt"
	"strings"
	"time"

	"task_reminder_bot/internal/domain/dialog"
	"task_reminder_bot/internal/domain/reminder"
	"task_reminder_bot/internal/domain/task"
)

const (
	keywordMenu    = "menu"
	keywordRedoDay = "redo day"
	tokenBack      = "0"
)

const (
	msgInvalidChoice      = "Invalid choice, please try again."
	msgGenericError       = "Sorry, something went wrong. Please try again in a moment."
	msgAccessDenied       = "Access denied: the admin menu is only available to class representatives."
	msgAlreadyAtMenu      = "You are already at the main menu."
	msgSessionRepaired    = "Some of your earlier choices were lost, please pick again."
	msgNoTasks            = "There are no tasks for %s on %s."
	msgRemindersDeclined  = "Okay, no reminders will be sent for \"%s\"."
	msgRemindersTooLate   = "The deadline for \"%s\" is too close, there is no reminder left to schedule."
	msgDeadlineFormat     = "Invalid deadline. Use the format DD-MM-YYYY HH:MM, for example 24-03-2025 23:59."
	msgDeadlinePast       = "The deadline must be in the future."
	msgDeadlineWeekday    = "%s falls on a %s, but this task is for %s. Enter another date or type 'redo day' to pick a different day."
	msgAdminNotRegistered = "Your number is not registered as a user, so the task was not saved. Ask the administrator to register you."
)

func renderInitial() string {
	return strings.Join([]string{
		"Welcome to the class task assistant.",
		"1. View tasks",
		"2. Admin menu",
		"",
		"Type 'menu' at any time to come back here.",
	}, "\n")
}

func renderClassList(header string, classes []task.ClassRef) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, c := range classes {
		fmt.Fprintf(&b, "%d. %s\n", c.ID, c.Name)
	}
	b.WriteString("0. Back")
	return b.String()
}

func renderDayList(header string, days []task.DayRef) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, d := range days {
		fmt.Fprintf(&b, "%d. %s\n", d.ID, d.Name)
	}
	b.WriteString("0. Back")
	return b.String()
}

func renderTaskList(br dialog.Browse, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks for %s on %s:\n", br.ClassName, br.DayName)
	for i, t := range br.Tasks {
		fmt.Fprintf(&b, "%d. %s (%s), due %s\n", i+1, t.Name, t.Kind.Label(), task.FormatDeadline(t.DueAt, loc))
		if t.Description != "" {
			fmt.Fprintf(&b, "   %s\n", t.Description)
		}
	}
	b.WriteString("\nReply with a task number to see details.\n0. Back")
	return b.String()
}

func renderTaskDetail(t task.Task, loc *time.Location) string {
	desc := t.Description
	if desc == "" {
		desc = "-"
	}
	return fmt.Sprintf("%s\nKind: %s\nDeadline: %s\nDescription: %s\n\nDo you want reminders for this task?\n1. Yes\n2. No\n0. Back",
		t.Name, t.Kind.Label(), task.FormatDeadline(t.DueAt, loc), desc)
}

func renderAdminMenu() string {
	return "Admin menu\n1. Add task\n2. Back to main menu"
}

func renderAdminTaskName(d dialog.Draft) string {
	return fmt.Sprintf("New task for %s on %s.\nEnter the task name:\n0. Back", d.ClassName, d.DayName)
}

func renderAdminTaskType() string {
	var b strings.Builder
	b.WriteString("Choose the task type:\n")
	for i, k := range task.Kinds {
		fmt.Fprintf(&b, "%d. %s\n", i+1, k.Label())
	}
	b.WriteString("0. Back")
	return b.String()
}

func renderAdminTaskDescription() string {
	return "Enter a short description of the task:\n0. Back"
}

func renderAdminTaskDeadline(d dialog.Draft) string {
	return fmt.Sprintf("Enter the deadline as DD-MM-YYYY HH:MM. It must fall on a %s.\nType 'redo day' to pick a different day.\n0. Back", d.DayName)
}

func renderTaskCreated(d dialog.Draft, due time.Time, loc *time.Location) string {
	return fmt.Sprintf("Task saved.\nClass: %s\nDay: %s\nName: %s\nType: %s\nDeadline: %s",
		d.ClassName, d.DayName, d.Name, d.Kind.Label(), task.FormatDeadline(due, loc))
}

func renderRemindersSet(t task.Task, triggers []reminder.Trigger, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminders set for \"%s\":", t.Name)
	for _, tr := range triggers {
		fmt.Fprintf(&b, "\n- %s (%s)", reminderLeadLabel(tr.Kind), task.FormatDeadline(tr.At, loc))
	}
	return b.String()
}

func reminderLeadLabel(k reminder.Kind) string {
	switch k {
	case reminder.KindFar:
		return "3 days before"
	case reminder.KindMid:
		return "1 day before"
	case reminder.KindNear:
		return "1 hour before"
	default:
		return string(k)
	}
}
