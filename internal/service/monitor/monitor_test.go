package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// errTestWrite is the scripted persistence failure.
var errTestWrite = errors.New("test write error")

// memoryRepository is a minimal in-memory settings.Repository for tests.
type memoryRepository struct {
	mu sync.Mutex
	// values is the stored settings table.
	values map[string]int64
	// setErr is returned from Set when non-nil.
	setErr error
	// sets counts Set calls.
	sets int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{values: make(map[string]int64)}
}

// LoadAll returns a copy of the stored table.
func (m *memoryRepository) LoadAll(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}

	return out, nil
}

// Get returns the stored value or settings.ErrNotFound.
func (m *memoryRepository) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return 0, settings.ErrNotFound
	}

	return v, nil
}

// Set stores the value unless a failure is scripted.
func (m *memoryRepository) Set(_ context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets++

	if m.setErr != nil {
		return m.setErr
	}

	m.values[key] = value

	return nil
}

func (m *memoryRepository) get(key string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]

	return v, ok
}

// fakeOutput records relay writes.
type fakeOutput struct {
	mu sync.Mutex
	// on is the current relay state.
	on bool
	// writes counts SetAlarm calls.
	writes int
	// err is returned from SetAlarm when non-nil.
	err error
}

// SetAlarm records the write.
func (f *fakeOutput) SetAlarm(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.on = on
	f.writes++

	return nil
}

func (f *fakeOutput) state() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.on
}

// fakeSensors serves a settable snapshot.
type fakeSensors struct {
	mu   sync.Mutex
	snap watchdog.Snapshot
	err  error
}

// Poll returns the scripted snapshot or error.
func (f *fakeSensors) Poll() (watchdog.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snap, f.err
}

func (f *fakeSensors) set(snap watchdog.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snap = snap
}

// fakeNotifier collects chat notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

// Notify records the message.
func (f *fakeNotifier) Notify(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.messages...)
}

// fakeDialogue collects announcements and status publishes.
type fakeDialogue struct {
	mu       sync.Mutex
	said     []string
	statuses []watchdog.StatusPayload
}

// Say records the announcement.
func (f *fakeDialogue) Say(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.said = append(f.said, text)
}

// PublishStatus records the payload.
func (f *fakeDialogue) PublishStatus(_ context.Context, status watchdog.StatusPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statuses = append(f.statuses, status)
}

func (f *fakeDialogue) spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.said...)
}

func (f *fakeDialogue) published() []watchdog.StatusPayload {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]watchdog.StatusPayload(nil), f.statuses...)
}
