package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"task_reminder_bot/internal/domain/dialog"
	"task_reminder_bot/internal/domain/reminder"
	"task_reminder_bot/internal/domain/task"
	"task_reminder_bot/internal/domain/user"
)

var errBackend = errors.New("backend unavailable")

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// memStore round-trips sessions through JSON like the Redis store does.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, senderID string) (*dialog.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.data[senderID]
	if !ok {
		return nil, dialog.ErrSessionNotFound
	}
	var s dialog.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStore) Save(_ context.Context, s *dialog.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.data[s.SenderID] = raw
	return nil
}

func (m *memStore) get(senderID string) *dialog.Session {
	s, err := m.Load(context.Background(), senderID)
	if err != nil {
		return nil
	}
	return s
}

type fakeRefs struct {
	classes []task.ClassRef
	days    []task.DayRef
	err     error
	calls   int
}

func defaultRefs() *fakeRefs {
	return &fakeRefs{
		classes: []task.ClassRef{{ID: 1, Name: "X-A"}, {ID: 2, Name: "X-B"}, {ID: 3, Name: "XI-A"}},
		days: []task.DayRef{
			{ID: 1, Name: "Monday"}, {ID: 2, Name: "Tuesday"}, {ID: 3, Name: "Wednesday"},
			{ID: 4, Name: "Thursday"}, {ID: 5, Name: "Friday"}, {ID: 6, Name: "Saturday"}, {ID: 7, Name: "Sunday"},
		},
	}
}

func (f *fakeRefs) ListClasses(context.Context) ([]task.ClassRef, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.classes, nil
}

func (f *fakeRefs) ListDays(context.Context) ([]task.DayRef, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.days, nil
}

type fakeTasks struct {
	tasks     []task.Task
	created   []task.Task
	listErr   error
	createErr error
}

func (f *fakeTasks) Create(_ context.Context, t *task.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	t.ID = int64(100 + len(f.created))
	f.created = append(f.created, *t)
	return nil
}

func (f *fakeTasks) ListByClassAndDay(_ context.Context, classID, dayID int64) ([]task.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []task.Task
	for _, t := range f.tasks {
		if t.ClassID == classID && t.DayID == dayID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

type fakeUsers struct {
	ids map[string]int64
	err error
}

func (f *fakeUsers) FindIDByPhone(_ context.Context, phone string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.ids[phone]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	return id, nil
}

// fakeReminders is an in-memory reminder table joined against a task map.
type fakeReminders struct {
	mu        sync.Mutex
	rows      []*reminder.Reminder
	tasks     map[int64]task.Task
	createErr error
	listErr   error
	markErr   error
	markCalls int
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{tasks: map[int64]task.Task{}}
}

func (f *fakeReminders) CreateBatch(_ context.Context, rs []*reminder.Reminder) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	created := 0
	for _, r := range rs {
		dup := false
		for _, existing := range f.rows {
			if existing.Phone == r.Phone && existing.TaskID == r.TaskID && existing.Kind == r.Kind {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		r.ID = int64(len(f.rows) + 1)
		copied := *r
		f.rows = append(f.rows, &copied)
		created++
	}
	return created, nil
}

func (f *fakeReminders) ListPending(context.Context) ([]reminder.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []reminder.Pending
	for _, r := range f.rows {
		if r.IsSent {
			continue
		}
		p := reminder.Pending{ID: r.ID, Phone: r.Phone, TriggerAt: r.TriggerAt, Kind: r.Kind}
		if t, ok := f.tasks[r.TaskID]; ok {
			p.TaskID = sql.NullInt64{Int64: t.ID, Valid: true}
			p.TaskName = sql.NullString{String: t.Name, Valid: true}
			p.TaskDescription = sql.NullString{String: t.Description, Valid: true}
			p.TaskKind = sql.NullString{String: string(t.Kind), Valid: true}
			p.DueAt = sql.NullTime{Time: t.DueAt, Valid: true}
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggerAt.Before(out[j].TriggerAt) })
	return out, nil
}

func (f *fakeReminders) MarkSent(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	for _, r := range f.rows {
		if r.ID == id && !r.IsSent {
			r.IsSent = true
			r.SentAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}
	return reminder.ErrReminderNotFound
}

func (f *fakeReminders) byID(id int64) reminder.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return *r
		}
	}
	return reminder.Reminder{}
}

type sentMessage struct {
	Recipient string
	Text      string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	err     error
	onSend  func()
	failFor map[string]bool
}

func (f *fakeSender) Send(_ context.Context, recipient, text string) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil || f.failFor[recipient] {
		return errBackend
	}
	f.sent = append(f.sent, sentMessage{Recipient: recipient, Text: text})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeLedger struct {
	mu        sync.Mutex
	delivered map[int64]bool
	err       error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{delivered: map[int64]bool{}}
}

func (f *fakeLedger) WasDelivered(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.delivered[id], nil
}

func (f *fakeLedger) RecordDelivered(_ context.Context, id int64, _ string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.delivered[id] = true
	return nil
}
