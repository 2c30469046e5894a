package notifier

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"peekbot/internal/transport"
	logx "peekbot/pkg/logx"
)

type Config struct {
	// OwnerChatID is the fixed destination for every alert.
	OwnerChatID int64

	// RatePerSec caps outbound alerts (token bucket). <=0 means 3/s,
	// comfortably under Telegram's per-chat limits.
	RatePerSec int
}

type Service struct {
	cfg     Config
	sender  transport.Sender
	log     logx.Logger
	limiter *rate.Limiter

	sent   atomic.Uint64
	failed atomic.Uint64
}

func New(cfg Config, sender transport.Sender, log logx.Logger) *Service {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:    cfg,
		sender: sender,
		log:    log,
		// burst = rate per sec, so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// MessageEdited alerts the owner that a tracked message changed text.
func (n *Service) MessageEdited(ctx context.Context, peer transport.Peer, oldText, newText string) error {
	return n.dispatch(ctx, peer, formatEdited(peer, oldText, newText))
}

// MessageDeleted alerts the owner that a tracked message was deleted.
func (n *Service) MessageDeleted(ctx context.Context, peer transport.Peer, oldText string) error {
	return n.dispatch(ctx, peer, formatDeleted(peer, oldText))
}

func (n *Service) dispatch(ctx context.Context, peer transport.Peer, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		n.failed.Add(1)
		n.log.Warn("alert dropped before send", logx.Int64("peer_id", peer.ID), logx.Err(err))
		return err
	}
	err := n.sender.SendText(ctx, n.cfg.OwnerChatID, text, &transport.SendOptions{
		HTML:           true,
		DisablePreview: true,
	})
	if err != nil {
		n.failed.Add(1)
		n.log.Warn("alert send failed", logx.Int64("peer_id", peer.ID), logx.Err(err))
		return err
	}
	n.sent.Add(1)
	n.log.Debug("alert sent", logx.Int64("peer_id", peer.ID))
	return nil
}

// Counters reports lifetime sent/failed alert counts.
func (n *Service) Counters() (sent, failed uint64) {
	return n.sent.Load(), n.failed.Load()
}
