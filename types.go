package session

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds session options
type Config interface {
	GetBaseURL() string
	GetAuthEndpoint() string
	GetVerifyEndpoint() string
	GetTokenHeader() string
	GetAuthScheme() string
	GetTokenKey() string
	GetProfileKey() string
	GetLoginRoute() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// Navigator is the front-end navigation surface. Navigate must take effect
// immediately; the expiry path depends on it running before any further
// rendering against a dead session.
type Navigator interface {
	Current() string
	Navigate(path string)
}

// NotificationLevel classifies user-facing notifications.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a dismissible, time-limited user-facing message.
type Notification struct {
	Level   NotificationLevel
	Message string
	TTL     time.Duration
}

// Notifier presents notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	if f != nil {
		f(n)
	}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type defNavigator struct {
	logger Logger
}

func (n defNavigator) Current() string { return "/" }

func (n defNavigator) Navigate(path string) {
	n.logger.Info("navigate: %s", path)
}

type defNotifier struct {
	logger Logger
}

func (n defNotifier) Notify(note Notification) {
	n.logger.Info("notify [%s]: %s", note.Level, note.Message)
}

func normalizeNavigator(nav Navigator, logger Logger) Navigator {
	if nav == nil {
		return defNavigator{logger: logger}
	}
	return nav
}

func normalizeNotifier(n Notifier, logger Logger) Notifier {
	if n == nil {
		return defNotifier{logger: logger}
	}
	return n
}
