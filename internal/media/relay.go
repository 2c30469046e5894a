// Package media re-uploads referenced media to the owner chat.
//
// The tracker proper never touches this path; it exists for the
// reply-triggered backup flow: the monitored owner replies to a media
// message, and the bot fetches the referenced bytes and pushes a copy to
// the owner chat with a descriptive caption.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	logx "peekbot/pkg/logx"
)

type Kind string

const (
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindVideoNote Kind = "video_note"
)

// Item references a platform media object to forward.
type Item struct {
	Kind     Kind
	FileID   string
	FileName string // platform-provided name, may be empty
	Caption  string // original caption, may be empty
	From     string // first name of whoever sent the media
}

// Upload is what gets pushed to the destination chat.
type Upload struct {
	Kind     Kind
	Data     io.Reader
	FileName string
	Caption  string
}

// Fetcher pulls raw bytes for a platform file reference.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Pusher delivers an upload to a chat.
type Pusher interface {
	Push(ctx context.Context, chatID int64, up Upload) error
}

type Relay struct {
	fetch Fetcher
	push  Pusher
	log   logx.Logger
}

func NewRelay(fetch Fetcher, push Pusher, log logx.Logger) *Relay {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Relay{fetch: fetch, push: push, log: log}
}

// Forward fetches the referenced media and pushes it to chatID.
// Errors are logged and returned; there is no retry here.
func (r *Relay) Forward(ctx context.Context, chatID int64, item Item) error {
	rc, err := r.fetch.Fetch(ctx, item.FileID)
	if err != nil {
		r.log.Warn("media fetch failed", logx.String("file_id", item.FileID), logx.Err(err))
		return fmt.Errorf("fetch %s: %w", item.Kind, err)
	}
	defer rc.Close()

	up := Upload{
		Kind:     item.Kind,
		Data:     rc,
		FileName: fileName(item),
		Caption:  caption(item),
	}
	if err := r.push.Push(ctx, chatID, up); err != nil {
		r.log.Warn("media push failed",
			logx.String("file_id", item.FileID), logx.Int64("chat_id", chatID), logx.Err(err))
		return fmt.Errorf("push %s: %w", item.Kind, err)
	}
	r.log.Info("media forwarded",
		logx.String("kind", string(item.Kind)), logx.Int64("chat_id", chatID))
	return nil
}

func fileName(item Item) string {
	if item.FileName != "" {
		return item.FileName
	}
	switch item.Kind {
	case KindPhoto:
		return "photo_" + item.FileID + ".jpg"
	case KindVideoNote:
		return "video_note_" + item.FileID + ".mp4"
	default:
		return "video_" + item.FileID + ".mp4"
	}
}

func caption(item Item) string {
	var b strings.Builder
	switch item.Kind {
	case KindPhoto:
		b.WriteString("📸 Photo")
	case KindVideoNote:
		b.WriteString("⭕ Video note")
	default:
		b.WriteString("🎥 Video")
	}
	if item.From != "" {
		b.WriteString(" from ")
		b.WriteString(item.From)
	}
	if item.Caption != "" {
		b.WriteString("\n\n📝 Caption: ")
		b.WriteString(item.Caption)
	}
	return b.String()
}
