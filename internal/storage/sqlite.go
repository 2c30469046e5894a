package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"peekbot/internal/history"
	logx "peekbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (creating if needed) the SQLite store at cfg.Path and applies
// the embedded migration. Safe to call on every process start.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	// A single connection also makes the per-key upsert atomic with respect
	// to interleaved reads of the same key.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Get(ctx context.Context, peerID int64) (string, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT messages FROM peer_history WHERE peer_id = ?`, peerID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return blob, true, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, peerID int64, blob string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO peer_history(peer_id, messages) VALUES(?,?)
		 ON CONFLICT(peer_id) DO UPDATE SET messages=excluded.messages`,
		peerID, blob,
	)
	return err
}

func (s *sqliteStore) Delete(ctx context.Context, peerID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM peer_history WHERE peer_id = ?`, peerID)
	return err
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM peer_history`)
	return err
}

func (s *sqliteStore) Stats(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT peer_id, messages FROM peer_history`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var peerID int64
		var blob string
		if err := rows.Scan(&peerID, &blob); err != nil {
			return Snapshot{}, err
		}
		snap.Peers++
		m, err := history.Decode(blob)
		if err != nil {
			snap.Malformed++
			s.log.Warn("undecodable history blob", logx.Int64("peer_id", peerID), logx.Err(err))
			continue
		}
		snap.Messages += len(m)
	}
	return snap, rows.Err()
}

func (s *sqliteStore) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `PRAGMA optimize`)
	return err
}
