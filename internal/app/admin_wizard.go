package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/dialog"
	"task_reminder_bot/internal/domain/task"
	"task_reminder_bot/internal/domain/user"
)

var ErrAdminNotAuthorized = fmt.Errorf("sender is not on the admin allow-list")

// AdminAllowList is the static set of senders allowed into the admin menu.
type AdminAllowList map[string]struct{}

func NewAdminAllowList(ids []string) AdminAllowList {
	list := make(AdminAllowList, len(ids))
	for _, id := range ids {
		if id = normalizeSender(id); id != "" {
			list[id] = struct{}{}
		}
	}
	return list
}

func (l AdminAllowList) IsAdmin(senderID string) bool {
	_, ok := l[normalizeSender(senderID)]
	return ok
}

// Authorize returns ErrAdminNotAuthorized for senders outside the list.
func (l AdminAllowList) Authorize(senderID string) error {
	if !l.IsAdmin(senderID) {
		return ErrAdminNotAuthorized
	}
	return nil
}

func normalizeSender(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "+")
}

func (s *DialogService) handleAdminMenu(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	switch text {
	case "1":
		sess.Draft = dialog.Draft{}
		sess.Push(dialog.StateAdminClassSelection)
		return s.render(ctx, sess)
	case "2":
		sess.Reset()
		return s.render(ctx, sess)
	}
	return s.invalid(ctx, sess)
}

func (s *DialogService) handleAdminClassSelection(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	class, ok, err := s.findClass(ctx, text)
	if err != nil || !ok {
		return s.invalidOr(ctx, sess, err)
	}
	sess.Draft.ClassID, sess.Draft.ClassName = class.ID, class.Name
	sess.Push(dialog.StateAdminDaySelection)
	return s.render(ctx, sess)
}

func (s *DialogService) handleAdminDaySelection(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	day, ok, err := s.findDay(ctx, text)
	if err != nil || !ok {
		return s.invalidOr(ctx, sess, err)
	}
	sess.Draft.DayID, sess.Draft.DayName = day.ID, day.Name

	if sess.Draft.RedoDay && sess.Draft.Kind != "" {
		sess.Draft.RedoDay = false
		sess.ResetTo(dialog.StateAdminTaskDeadline)
		return s.render(ctx, sess)
	}
	sess.Draft.RedoDay = false
	sess.Push(dialog.StateAdminTaskName)
	return s.render(ctx, sess)
}

func (s *DialogService) handleAdminTaskName(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	if text == "" {
		return s.invalid(ctx, sess)
	}
	sess.Draft.Name = text
	sess.Push(dialog.StateAdminTaskType)
	return s.render(ctx, sess)
}

func (s *DialogService) handleAdminTaskType(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	kind, ok := task.KindFromChoice(text)
	if !ok {
		return s.invalid(ctx, sess)
	}
	sess.Draft.Kind = kind
	sess.Push(dialog.StateAdminTaskDescription)
	return s.render(ctx, sess)
}

func (s *DialogService) handleAdminTaskDescription(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	sess.Draft.Description = text
	sess.Push(dialog.StateAdminTaskDeadline)
	return s.render(ctx, sess)
}

func (s *DialogService) handleAdminTaskDeadline(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	if strings.EqualFold(text, keywordRedoDay) {
		sess.Draft.RedoDay = true
		sess.ResetTo(dialog.StateAdminDaySelection)
		return s.render(ctx, sess)
	}

	due, err := task.ParseDeadline(text, s.loc)
	if err != nil {
		return s.withNotice(ctx, sess, msgDeadlineFormat)
	}
	if !due.After(s.now()) {
		return s.withNotice(ctx, sess, msgDeadlinePast)
	}
	if task.ISOWeekday(due) != sess.Draft.DayID {
		notice := fmt.Sprintf(msgDeadlineWeekday,
			task.FormatDeadline(due, s.loc), due.In(s.loc).Weekday(), sess.Draft.DayName)
		return s.withNotice(ctx, sess, notice)
	}

	creatorID, err := s.users.FindIDByPhone(ctx, sess.SenderID)
	if errors.Is(err, user.ErrUserNotFound) {
		sess.Draft = dialog.Draft{}
		sess.ResetTo(dialog.StateAdminMenu)
		return s.withNotice(ctx, sess, msgAdminNotRegistered)
	}
	if err != nil {
		return "", fmt.Errorf("look up admin user: %w", err)
	}

	t := &task.Task{
		ClassID:     sess.Draft.ClassID,
		DayID:       sess.Draft.DayID,
		Name:        sess.Draft.Name,
		Description: sess.Draft.Description,
		Kind:        sess.Draft.Kind,
		DueAt:       due,
		CreatedBy:   creatorID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"sender_id": sess.SenderID, "task_id": t.ID}).Info("Task created")

	summary := renderTaskCreated(sess.Draft, due, s.loc)
	sess.Draft = dialog.Draft{}
	sess.ResetTo(dialog.StateAdminMenu)
	return s.withNotice(ctx, sess, summary)
}
