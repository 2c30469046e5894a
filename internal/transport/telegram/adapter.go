// Package telegram adapts telebot.v4 business-connection updates to the
// transport types the tracker consumes, and implements the outbound send,
// fetch and push surfaces on top of the same bot instance.
package telegram

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"peekbot/internal/media"
	"peekbot/internal/transport"
	logx "peekbot/pkg/logx"
)

type Config struct {
	Token string

	// OwnerChatID is the monitored account. It gates the media-forward
	// path; the self-sent filter for text tracking lives in the tracker.
	OwnerChatID int64

	PollTimeout time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot

	handler transport.Handler
	relay   *media.Relay

	runMu   sync.Mutex
	running bool
	runWG   sync.WaitGroup
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	a := &Adapter{cfg: cfg, log: log, bot: b}
	a.registerHandlers()
	return a, nil
}

// SetHandler installs the inbound event consumer. Must be called before Start.
func (a *Adapter) SetHandler(h transport.Handler) { a.handler = h }

// SetRelay installs the media forwarder. Optional; without it the
// reply-triggered backup path is simply off.
func (a *Adapter) SetRelay(r *media.Relay) { a.relay = r }

func (a *Adapter) registerHandlers() {
	a.bot.Handle(tele.OnBusinessMessage, func(c tele.Context) error {
		m := c.Update().BusinessMessage
		if m == nil || m.Chat == nil || m.Sender == nil {
			return nil
		}
		ctx := context.Background()

		if m.Text != "" && a.handler != nil {
			if err := a.handler.HandleNewMessage(ctx, a.toMessage(m)); err != nil {
				a.log.Error("new message event failed",
					logx.Int64("peer_id", m.Chat.ID), logx.Err(err))
			}
		}
		a.maybeForwardMedia(ctx, m)
		return nil
	})

	a.bot.Handle(tele.OnEditedBusinessMessage, func(c tele.Context) error {
		m := c.Update().EditedBusinessMessage
		if m == nil || m.Chat == nil || m.Sender == nil || m.Text == "" || a.handler == nil {
			return nil
		}
		if err := a.handler.HandleEdited(context.Background(), a.toMessage(m)); err != nil {
			a.log.Error("edit event failed",
				logx.Int64("peer_id", m.Chat.ID), logx.Err(err))
		}
		return nil
	})

	a.bot.Handle(tele.OnDeletedBusinessMessages, func(c tele.Context) error {
		d := c.Update().DeletedBusinessMessages
		if d == nil || d.Chat == nil || a.handler == nil {
			return nil
		}
		ids := make([]int64, 0, len(d.MessageIDs))
		for _, id := range d.MessageIDs {
			ids = append(ids, int64(id))
		}
		del := transport.Deleted{
			Peer:       transport.Peer{ID: d.Chat.ID, DisplayName: chatName(d.Chat)},
			MessageIDs: ids,
		}
		if err := a.handler.HandleDeleted(context.Background(), del); err != nil {
			a.log.Error("deletion event failed",
				logx.Int64("peer_id", d.Chat.ID), logx.Err(err))
		}
		return nil
	})
}

// maybeForwardMedia runs the reply-triggered backup: the owner replying to
// a photo/video/video-note in a business chat gets a copy pushed to their
// own chat with the bot.
func (a *Adapter) maybeForwardMedia(ctx context.Context, m *tele.Message) {
	if a.relay == nil || m.ReplyTo == nil || m.Sender.ID != a.cfg.OwnerChatID {
		return
	}
	item, ok := mediaItem(m.ReplyTo)
	if !ok {
		return
	}
	item.From = m.Sender.FirstName
	if err := a.relay.Forward(ctx, a.cfg.OwnerChatID, item); err != nil {
		a.log.Warn("media forward failed",
			logx.Int64("peer_id", m.Chat.ID), logx.Err(err))
	}
}

func mediaItem(m *tele.Message) (media.Item, bool) {
	switch {
	case m.Photo != nil:
		return media.Item{Kind: media.KindPhoto, FileID: m.Photo.FileID, Caption: m.Caption}, true
	case m.Video != nil:
		return media.Item{Kind: media.KindVideo, FileID: m.Video.FileID, FileName: m.Video.FileName, Caption: m.Caption}, true
	case m.VideoNote != nil:
		return media.Item{Kind: media.KindVideoNote, FileID: m.VideoNote.FileID}, true
	default:
		return media.Item{}, false
	}
}

func (a *Adapter) toMessage(m *tele.Message) transport.Message {
	return transport.Message{
		Peer:      transport.Peer{ID: m.Chat.ID, DisplayName: senderName(m.Sender)},
		SenderID:  m.Sender.ID,
		MessageID: int64(m.ID),
		Text:      m.Text,
	}
}

// Start begins long polling. It returns once polling has been launched;
// polling stops when ctx is cancelled.
func (a *Adapter) Start(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.running {
		return nil
	}
	if a.handler == nil {
		return errors.New("telegram adapter started without a handler")
	}
	a.running = true

	// Stale webhooks block long polling; drop pending updates the same
	// way the previous deployment did on restart.
	_ = a.bot.RemoveWebhook(true)

	a.runWG.Add(2)
	go func() {
		defer a.runWG.Done()
		<-ctx.Done()
		a.bot.Stop()
	}()
	go func() {
		defer a.runWG.Done()
		a.log.Info("polling started")
		a.bot.Start()
		a.log.Info("polling stopped")
	}()
	return nil
}

// Stop waits for the poll loop to wind down after ctx cancellation.
func (a *Adapter) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if !a.running {
		return
	}
	a.runWG.Wait()
	a.running = false
}

// SendText implements transport.Sender.
func (a *Adapter) SendText(_ context.Context, chatID int64, text string, opt *transport.SendOptions) error {
	opts := &tele.SendOptions{}
	if opt != nil {
		if opt.HTML {
			opts.ParseMode = tele.ModeHTML
		}
		opts.DisableWebPagePreview = opt.DisablePreview
	}
	_, err := a.bot.Send(tele.ChatID(chatID), text, opts)
	return err
}

// Fetch implements media.Fetcher.
func (a *Adapter) Fetch(_ context.Context, fileID string) (io.ReadCloser, error) {
	return a.bot.File(&tele.File{FileID: fileID})
}

// Push implements media.Pusher. Video notes cannot carry captions, so the
// caption goes out as a follow-up text message.
func (a *Adapter) Push(ctx context.Context, chatID int64, up media.Upload) error {
	to := tele.ChatID(chatID)
	switch up.Kind {
	case media.KindPhoto:
		_, err := a.bot.Send(to, &tele.Photo{File: tele.FromReader(up.Data), Caption: up.Caption})
		return err
	case media.KindVideoNote:
		if _, err := a.bot.Send(to, &tele.VideoNote{File: tele.FromReader(up.Data)}); err != nil {
			return err
		}
		if up.Caption == "" {
			return nil
		}
		return a.SendText(ctx, chatID, up.Caption, nil)
	default:
		_, err := a.bot.Send(to, &tele.Video{
			File:     tele.FromReader(up.Data),
			Caption:  up.Caption,
			FileName: up.FileName,
		})
		return err
	}
}

func senderName(u *tele.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Username
}

func chatName(c *tele.Chat) string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	if c.Username != "" {
		return c.Username
	}
	return c.Title
}
