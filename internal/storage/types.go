package storage

import (
	"context"
	"time"
)

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default (1s)
}

// Store is the persistence API used by the reconciliation engine.
//
// Get reports absence via found=false; it never maps "no row" to an error.
// Any returned error means the store itself failed and the caller must NOT
// treat the peer as having empty history.
type Store interface {
	Get(ctx context.Context, peerID int64) (blob string, found bool, err error)
	Upsert(ctx context.Context, peerID int64, blob string) error
	Delete(ctx context.Context, peerID int64) error
	Clear(ctx context.Context) error

	// Stats reports the number of tracked peers and tracked messages.
	// Blobs that fail to decode count zero messages; Stats reports how
	// many such rows it saw.
	Stats(ctx context.Context) (Snapshot, error)

	// Maintain runs periodic housekeeping (WAL checkpoint, optimize).
	Maintain(ctx context.Context) error

	Close() error
}

// Snapshot is a point-in-time summary of the store contents.
type Snapshot struct {
	Peers     int
	Messages  int
	Malformed int
}
