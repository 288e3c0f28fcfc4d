package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/dialog"
	"task_reminder_bot/internal/domain/reminder"
	"task_reminder_bot/internal/domain/task"
	"task_reminder_bot/internal/domain/user"
)

// DialogService drives the per-sender conversation: task browsing, reminder
// opt-in and the admin task wizard.
type DialogService struct {
	sessions  dialog.Store
	refs      task.ReferenceRepository
	tasks     task.Repository
	reminders reminder.Repository
	users     user.Repository
	admins    AdminAllowList
	loc       *time.Location
	logger    *logrus.Entry
	now       func() time.Time
}

func NewDialogService(
	sessions dialog.Store,
	refs task.ReferenceRepository,
	tasks task.Repository,
	reminders reminder.Repository,
	users user.Repository,
	admins AdminAllowList,
	loc *time.Location,
	logger *logrus.Entry,
) *DialogService {
	return &DialogService{
		sessions:  sessions,
		refs:      refs,
		tasks:     tasks,
		reminders: reminders,
		users:     users,
		admins:    admins,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleMessage processes one inbound text and returns the reply. Backend
// failures produce a generic apology and leave the stored session untouched.
func (s *DialogService) HandleMessage(ctx context.Context, senderID, text string) string {
	text = strings.TrimSpace(text)
	logCtx := s.logger.WithField("sender_id", senderID)

	sess, err := s.sessions.Load(ctx, senderID)
	switch {
	case errors.Is(err, dialog.ErrSessionNotFound):
		logCtx.Info("First contact, starting session")
		return s.finish(ctx, logCtx, dialog.NewSession(senderID), renderInitial(), nil)
	case errors.Is(err, dialog.ErrSessionCorrupt):
		logCtx.WithError(err).Warn("Stored session unreadable, starting over")
		return s.finish(ctx, logCtx, dialog.NewSession(senderID), renderInitial(), nil)
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to load session")
		return msgGenericError
	}

	logCtx = logCtx.WithField("state", sess.State)
	if sess.Repair() {
		logCtx.WithField("repaired_to", sess.State).Warn("Session was missing data for its state")
		reply, err := s.withNotice(ctx, sess, msgSessionRepaired)
		return s.finish(ctx, logCtx, sess, reply, err)
	}

	reply, err := s.dispatch(ctx, sess, text)
	return s.finish(ctx, logCtx, sess, reply, err)
}

func (s *DialogService) finish(ctx context.Context, logCtx *logrus.Entry, sess *dialog.Session, reply string, err error) string {
	if err != nil {
		logCtx.WithError(err).Error("Failed to handle message")
		return msgGenericError
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		logCtx.WithError(err).Error("Failed to save session")
		return msgGenericError
	}
	logCtx.WithField("next_state", sess.State).Debug("Message handled")
	return reply
}

func (s *DialogService) dispatch(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	if strings.EqualFold(text, keywordMenu) {
		sess.Reset()
		return s.render(ctx, sess)
	}

	if sess.State.IsAdmin() {
		if err := s.admins.Authorize(sess.SenderID); err != nil {
			sess.Reset()
			return s.withNotice(ctx, sess, msgAccessDenied)
		}
	}

	if text == tokenBack {
		return s.back(ctx, sess)
	}

	switch sess.State {
	case dialog.StateInitial:
		return s.handleInitial(ctx, sess, text)
	case dialog.StateClassSelection:
		return s.handleClassSelection(ctx, sess, text)
	case dialog.StateDaySelection:
		return s.handleDaySelection(ctx, sess, text)
	case dialog.StateTaskList:
		return s.handleTaskList(ctx, sess, text)
	case dialog.StateNotificationSetup:
		return s.handleNotificationSetup(ctx, sess, text)
	case dialog.StateAdminMenu:
		return s.handleAdminMenu(ctx, sess, text)
	case dialog.StateAdminClassSelection:
		return s.handleAdminClassSelection(ctx, sess, text)
	case dialog.StateAdminDaySelection:
		return s.handleAdminDaySelection(ctx, sess, text)
	case dialog.StateAdminTaskName:
		return s.handleAdminTaskName(ctx, sess, text)
	case dialog.StateAdminTaskType:
		return s.handleAdminTaskType(ctx, sess, text)
	case dialog.StateAdminTaskDescription:
		return s.handleAdminTaskDescription(ctx, sess, text)
	case dialog.StateAdminTaskDeadline:
		return s.handleAdminTaskDeadline(ctx, sess, text)
	}
	return "", fmt.Errorf("unhandled state %q", sess.State)
}

func (s *DialogService) back(ctx context.Context, sess *dialog.Session) (string, error) {
	if sess.State == dialog.StateInitial {
		sess.Reset()
		return s.withNotice(ctx, sess, msgAlreadyAtMenu)
	}
	prev, ok := sess.Pop()
	if !ok || prev == dialog.StateInitial {
		sess.Reset()
	}
	sess.Repair()
	return s.render(ctx, sess)
}

func (s *DialogService) handleInitial(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	switch text {
	case "1":
		sess.Push(dialog.StateClassSelection)
		return s.render(ctx, sess)
	case "2":
		if err := s.admins.Authorize(sess.SenderID); err != nil {
			s.logger.WithField("sender_id", sess.SenderID).Info("Admin menu refused")
			return s.withNotice(ctx, sess, msgAccessDenied)
		}
		sess.Draft = dialog.Draft{}
		sess.Push(dialog.StateAdminMenu)
		return s.render(ctx, sess)
	}
	return s.invalid(ctx, sess)
}

func (s *DialogService) handleClassSelection(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	class, ok, err := s.findClass(ctx, text)
	if err != nil || !ok {
		return s.invalidOr(ctx, sess, err)
	}
	sess.Browse = dialog.Browse{ClassID: class.ID, ClassName: class.Name}
	sess.Push(dialog.StateDaySelection)
	return s.render(ctx, sess)
}

func (s *DialogService) handleDaySelection(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	day, ok, err := s.findDay(ctx, text)
	if err != nil || !ok {
		return s.invalidOr(ctx, sess, err)
	}

	tasks, err := s.tasks.ListByClassAndDay(ctx, sess.Browse.ClassID, day.ID)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return s.withNotice(ctx, sess, fmt.Sprintf(msgNoTasks, sess.Browse.ClassName, day.Name))
	}

	sess.Browse.DayID, sess.Browse.DayName = day.ID, day.Name
	sess.Browse.Tasks = tasks
	sess.Push(dialog.StateTaskList)
	return s.render(ctx, sess)
}

func (s *DialogService) handleTaskList(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	idx, err := strconv.Atoi(text)
	if err != nil || idx < 1 || idx > len(sess.Browse.Tasks) {
		return s.invalid(ctx, sess)
	}
	selected := sess.Browse.Tasks[idx-1]
	sess.Browse.Selected = &selected
	sess.Push(dialog.StateNotificationSetup)
	return s.render(ctx, sess)
}

func (s *DialogService) handleNotificationSetup(ctx context.Context, sess *dialog.Session, text string) (string, error) {
	selected := *sess.Browse.Selected

	switch text {
	case "1":
		triggers := reminder.Upcoming(reminder.Schedule(selected.DueAt), s.now())
		if len(triggers) == 0 {
			sess.Reset()
			return s.withNotice(ctx, sess, fmt.Sprintf(msgRemindersTooLate, selected.Name))
		}
		created, err := s.reminders.CreateBatch(ctx, reminder.Build(sess.SenderID, selected.ID, triggers))
		if err != nil {
			return "", fmt.Errorf("create reminders: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"sender_id": sess.SenderID,
			"task_id":   selected.ID,
			"created":   created,
		}).Info("Reminders scheduled")
		sess.Reset()
		return s.withNotice(ctx, sess, renderRemindersSet(selected, triggers, s.loc))
	case "2":
		sess.Reset()
		return s.withNotice(ctx, sess, fmt.Sprintf(msgRemindersDeclined, selected.Name))
	}
	return s.invalid(ctx, sess)
}

// render produces the screen for the current state from stored data only.
func (s *DialogService) render(ctx context.Context, sess *dialog.Session) (string, error) {
	switch sess.State {
	case dialog.StateInitial:
		return renderInitial(), nil
	case dialog.StateClassSelection, dialog.StateAdminClassSelection:
		classes, err := s.refs.ListClasses(ctx)
		if err != nil {
			return "", fmt.Errorf("list classes: %w", err)
		}
		header := "Choose a class:"
		if sess.State == dialog.StateAdminClassSelection {
			header = "Add task: choose the class:"
		}
		return renderClassList(header, classes), nil
	case dialog.StateDaySelection, dialog.StateAdminDaySelection:
		days, err := s.refs.ListDays(ctx)
		if err != nil {
			return "", fmt.Errorf("list days: %w", err)
		}
		header := fmt.Sprintf("Class %s. Choose a day:", sess.Browse.ClassName)
		if sess.State == dialog.StateAdminDaySelection {
			header = fmt.Sprintf("Add task for %s: choose the day:", sess.Draft.ClassName)
		}
		return renderDayList(header, days), nil
	case dialog.StateTaskList:
		return renderTaskList(sess.Browse, s.loc), nil
	case dialog.StateNotificationSetup:
		return renderTaskDetail(*sess.Browse.Selected, s.loc), nil
	case dialog.StateAdminMenu:
		return renderAdminMenu(), nil
	case dialog.StateAdminTaskName:
		return renderAdminTaskName(sess.Draft), nil
	case dialog.StateAdminTaskType:
		return renderAdminTaskType(), nil
	case dialog.StateAdminTaskDescription:
		return renderAdminTaskDescription(), nil
	case dialog.StateAdminTaskDeadline:
		return renderAdminTaskDeadline(sess.Draft), nil
	}
	return "", fmt.Errorf("no screen for state %q", sess.State)
}

func (s *DialogService) withNotice(ctx context.Context, sess *dialog.Session, notice string) (string, error) {
	screen, err := s.render(ctx, sess)
	if err != nil {
		return "", err
	}
	return notice + "\n\n" + screen, nil
}

func (s *DialogService) invalid(ctx context.Context, sess *dialog.Session) (string, error) {
	return s.withNotice(ctx, sess, msgInvalidChoice)
}

func (s *DialogService) invalidOr(ctx context.Context, sess *dialog.Session, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return s.invalid(ctx, sess)
}

func (s *DialogService) findClass(ctx context.Context, text string) (task.ClassRef, bool, error) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return task.ClassRef{}, false, nil
	}
	classes, err := s.refs.ListClasses(ctx)
	if err != nil {
		return task.ClassRef{}, false, fmt.Errorf("list classes: %w", err)
	}
	for _, c := range classes {
		if c.ID == id {
			return c, true, nil
		}
	}
	return task.ClassRef{}, false, nil
}

func (s *DialogService) findDay(ctx context.Context, text string) (task.DayRef, bool, error) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return task.DayRef{}, false, nil
	}
	days, err := s.refs.ListDays(ctx)
	if err != nil {
		return task.DayRef{}, false, fmt.Errorf("list days: %w", err)
	}
	for _, d := range days {
		if d.ID == id {
			return d, true, nil
		}
	}
	return task.DayRef{}, false, nil
}
