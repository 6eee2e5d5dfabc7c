package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when nothing has been stored under a key yet.
	ErrNotFound = errors.New("no value stored for key")
)

// KV is a wholesale key-value backend. Put replaces the previous value
// entirely; readers observe either the old or the new value, never a mix.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// sanitizeKey lowercases the key and replaces characters that are awkward in
// file names and object keys.
func sanitizeKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	return strings.ToLower(s)
}
