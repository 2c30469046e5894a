// Package tracker is the reconciliation engine: for every inbound
// business-chat event it loads the peer's stored history, decides what
// changed, persists the updated mapping, and asks the notifier to alert
// the owner when a tracked message was edited or deleted.
package tracker

import (
	"context"
	"errors"
	"sync"

	"peekbot/internal/history"
	"peekbot/internal/storage"
	"peekbot/internal/transport"
	logx "peekbot/pkg/logx"
)

// Notifier is the alert surface the engine drives. Failures are the
// notifier's own problem: the engine never retries and never lets a
// delivery error touch the committed history.
type Notifier interface {
	MessageEdited(ctx context.Context, peer transport.Peer, oldText, newText string) error
	MessageDeleted(ctx context.Context, peer transport.Peer, oldText string) error
}

type Tracker struct {
	store storage.Store
	notif Notifier
	log   logx.Logger

	// Per-peer locks serialize the load-modify-store sequence. Without
	// them two concurrent events for one peer could both read the same
	// stale mapping and the second write would drop the first update.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(store storage.Store, notif Notifier, log logx.Logger) *Tracker {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Tracker{
		store: store,
		notif: notif,
		log:   log,
		locks: map[int64]*sync.Mutex{},
	}
}

var _ transport.Handler = (*Tracker)(nil)

// HandleNewMessage records a freshly sent message. Only self-sent messages
// (owner writing in their own chat with themselves) are tracked; anything
// else is ignored without touching the store. Never notifies.
func (t *Tracker) HandleNewMessage(ctx context.Context, msg transport.Message) error {
	if !selfSent(msg) || msg.Text == "" {
		return nil
	}
	unlock := t.lockPeer(msg.Peer.ID)
	defer unlock()

	messages, err := t.loadBaseline(ctx, msg.Peer.ID)
	if err != nil {
		return err
	}
	messages[msg.MessageID] = msg.Text
	return t.persist(ctx, msg.Peer.ID, messages)
}

// HandleEdited reconciles an edit against stored history.
//
// No stored record, or a record that fails to decode, means there is no
// baseline to diff: the edit is recorded as if it were a new message and
// no alert goes out. An untracked message id leaves the store untouched.
// A tracked id produces exactly one alert carrying the pre-update text,
// then the new text is persisted.
func (t *Tracker) HandleEdited(ctx context.Context, msg transport.Message) error {
	if !selfSent(msg) || msg.Text == "" {
		return nil
	}
	unlock := t.lockPeer(msg.Peer.ID)
	defer unlock()

	blob, found, err := t.store.Get(ctx, msg.Peer.ID)
	if err != nil {
		return err
	}
	if !found {
		return t.persist(ctx, msg.Peer.ID, map[int64]string{msg.MessageID: msg.Text})
	}

	messages, err := history.Decode(blob)
	if err != nil {
		if !errors.Is(err, history.ErrMalformed) {
			return err
		}
		t.log.Warn("stored history unreadable, starting over",
			logx.Int64("peer_id", msg.Peer.ID), logx.Err(err))
		return t.persist(ctx, msg.Peer.ID, map[int64]string{msg.MessageID: msg.Text})
	}

	oldText, tracked := messages[msg.MessageID]
	if !tracked {
		// Nothing to compare against; leave history as it was.
		return nil
	}

	// Alert carries the pre-update text; delivery failure must not block
	// or unwind the history write.
	_ = t.notif.MessageEdited(ctx, msg.Peer, oldText, msg.Text)

	messages[msg.MessageID] = msg.Text
	return t.persist(ctx, msg.Peer.ID, messages)
}

// HandleDeleted reconciles a bulk deletion. Deletions carry no sender, so
// there is no self-sent filter. Tracked ids each produce one alert with the
// stored text and are removed; untracked ids are skipped silently. The
// mutated mapping is written back once after the whole batch.
func (t *Tracker) HandleDeleted(ctx context.Context, del transport.Deleted) error {
	unlock := t.lockPeer(del.Peer.ID)
	defer unlock()

	blob, found, err := t.store.Get(ctx, del.Peer.ID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	messages, err := history.Decode(blob)
	if err != nil {
		if !errors.Is(err, history.ErrMalformed) {
			return err
		}
		// No usable baseline, so nothing to report or remove. The blob is
		// left alone; the next recorded message replaces it.
		t.log.Warn("stored history unreadable, deletions unreported",
			logx.Int64("peer_id", del.Peer.ID), logx.Err(err))
		return nil
	}

	mutated := false
	for _, id := range del.MessageIDs {
		oldText, tracked := messages[id]
		if !tracked {
			continue
		}
		_ = t.notif.MessageDeleted(ctx, del.Peer, oldText)
		delete(messages, id)
		mutated = true
	}
	if !mutated {
		return nil
	}
	return t.persist(ctx, del.Peer.ID, messages)
}

// loadBaseline returns the decoded mapping for a peer, treating both an
// absent record and a malformed blob as the empty mapping. Store failures
// propagate untouched; they are never downgraded to "no history".
func (t *Tracker) loadBaseline(ctx context.Context, peerID int64) (map[int64]string, error) {
	blob, found, err := t.store.Get(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[int64]string{}, nil
	}
	messages, err := history.Decode(blob)
	if err != nil {
		if !errors.Is(err, history.ErrMalformed) {
			return nil, err
		}
		t.log.Warn("stored history unreadable, starting over",
			logx.Int64("peer_id", peerID), logx.Err(err))
		return map[int64]string{}, nil
	}
	return messages, nil
}

func (t *Tracker) persist(ctx context.Context, peerID int64, messages map[int64]string) error {
	blob, err := history.Encode(messages)
	if err != nil {
		return err
	}
	return t.store.Upsert(ctx, peerID, blob)
}

func (t *Tracker) lockPeer(peerID int64) func() {
	t.mu.Lock()
	l, ok := t.locks[peerID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[peerID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func selfSent(msg transport.Message) bool {
	return msg.SenderID != 0 && msg.SenderID == msg.Peer.ID
}
