// Package storage persists one message-history blob per monitored peer.
//
// Backing store is a single SQLite file (modernc.org/sqlite, cgo-free).
// The schema is one row per peer: (peer_id INTEGER PRIMARY KEY,
// messages TEXT). The blob format itself belongs to internal/history;
// this package only moves opaque text in and out durably.
package storage
