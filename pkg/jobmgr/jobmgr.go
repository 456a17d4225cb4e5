// Package jobmgr tracks named background jobs with cancellation. A job is a
// function running in its own goroutine under a cancellable context; starting
// a second job under the same name fails, and Stop cancels a running job by
// name. Jobs remove themselves on completion.
package jobmgr

import (
	"context"
	"fmt"
	"sync"
)

// Reporter receives the terminal outcome of a job. err is nil on success and
// on cancellation via Stop.
type Reporter func(name string, err error)

// Manager tracks running jobs by name. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]context.CancelFunc
	reporter Reporter
}

// NewManager creates a Manager. The reporter may be nil.
func NewManager(reporter Reporter) *Manager {
	return &Manager{
		jobs:     make(map[string]context.CancelFunc),
		reporter: reporter,
	}
}

// StartAsync launches runner under a fresh cancellable context. It returns an
// error if a job with the same name is already running.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job %q is already running", name)
	}
	m.jobs[name] = cancel
	m.mu.Unlock()

	go func() {
		err := runner(ctx)

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
		cancel()

		if m.reporter != nil {
			if err == context.Canceled {
				err = nil
			}
			m.reporter(name, err)
		}
	}()

	return nil
}

// Stop cancels the named job if it is running and reports whether it was.
func (m *Manager) Stop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.jobs[name]
	if !ok {
		return false
	}
	cancel()
	delete(m.jobs, name)
	return true
}

// Running reports whether the named job is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}
