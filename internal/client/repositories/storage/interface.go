// Package storage is the client's durable key/value store: a single SQLite
// table that survives restarts, standing in for browser local storage.
package storage

import "context"

// Repository reads and writes string values by key.
//
// Get returns ("", false, nil) when the key is absent. Delete of a missing
// key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
