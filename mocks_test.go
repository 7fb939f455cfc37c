package session_test

import (
	"sync"

	session "github.com/brochaworks/go-session"
)

// mockNavigator records every navigation and lets tests set the route the
// fake front end is currently on.
type mockNavigator struct {
	mu      sync.Mutex
	current string
	visited []string
}

func (m *mockNavigator) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockNavigator) Navigate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = path
	m.visited = append(m.visited, path)
}

func (m *mockNavigator) setCurrent(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = path
}

func (m *mockNavigator) navigations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.visited))
	copy(out, m.visited)
	return out
}

// mockNotifier records every emitted notification.
type mockNotifier struct {
	mu    sync.Mutex
	notes []session.Notification
}

func (m *mockNotifier) Notify(n session.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, n)
}

func (m *mockNotifier) notifications() []session.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.Notification, len(m.notes))
	copy(out, m.notes)
	return out
}

// mockEnder counts forced terminations triggered by the transport.
type mockEnder struct {
	mu     sync.Mutex
	silent []bool
}

func (m *mockEnder) Logout(silent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = append(m.silent, silent)
}

func (m *mockEnder) calls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.silent))
	copy(out, m.silent)
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(format string, args ...any) {}
func (nopLogger) Info(format string, args ...any)  {}
func (nopLogger) Warn(format string, args ...any)  {}
func (nopLogger) Error(format string, args ...any) {}
