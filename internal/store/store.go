// Package store is the process-wide key-value store that outlives a single command.
package store

import "github.com/rs/zerolog"

// Store persists small string values under fixed keys.
type Store interface {
	// Get reports whether key is present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes every key in one step; absent keys are ignored.
	Delete(keys ...string) error
}

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}
