// Package store provides the key/value backends the session package persists
// credentials on: an in-memory map (the transient-storage analog and test
// double), a JSON file (the durable analog for CLI and desktop clients), and
// a Bun-backed SQLite table for clients that already carry a database.
package store

import "errors"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal synchronous key/value surface. Values are opaque
// strings; callers own serialization.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
