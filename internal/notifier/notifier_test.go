package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"peekbot/internal/transport"
	logx "peekbot/pkg/logx"
	"peekbot/pkg/tgui"
)

type fakeSender struct {
	sent []sentText
	err  error
}

type sentText struct {
	chatID int64
	text   string
	opt    transport.SendOptions
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, opt *transport.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	o := transport.SendOptions{}
	if opt != nil {
		o = *opt
	}
	f.sent = append(f.sent, sentText{chatID: chatID, text: text, opt: o})
	return nil
}

func TestEditedAlertShape(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	n := New(Config{OwnerChatID: 555}, fs, logx.Nop())

	peer := transport.Peer{ID: 42, DisplayName: "Alice"}
	if err := n.MessageEdited(context.Background(), peer, "hi", "bye"); err != nil {
		t.Fatalf("MessageEdited: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("sent %d alerts, want 1", len(fs.sent))
	}
	got := fs.sent[0]
	if got.chatID != 555 {
		t.Fatalf("chatID = %d, want 555", got.chatID)
	}
	if !got.opt.HTML {
		t.Fatal("alert not sent as HTML")
	}
	for _, want := range []string{"Alice", "(42)", "Message edited", "<code>hi</code>", "<code>bye</code>"} {
		if !strings.Contains(got.text, want) {
			t.Fatalf("alert %q missing %q", got.text, want)
		}
	}
}

func TestDeletedAlertShape(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	n := New(Config{OwnerChatID: 555}, fs, logx.Nop())

	peer := transport.Peer{ID: 42, DisplayName: "Alice"}
	if err := n.MessageDeleted(context.Background(), peer, "gone"); err != nil {
		t.Fatalf("MessageDeleted: %v", err)
	}
	got := fs.sent[0].text
	if !strings.Contains(got, "Message deleted") || !strings.Contains(got, "<code>gone</code>") {
		t.Fatalf("unexpected alert: %q", got)
	}
	if strings.Contains(got, "New text") {
		t.Fatalf("deletion alert must not carry a new text section: %q", got)
	}
}

func TestUserTextIsEscaped(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	n := New(Config{OwnerChatID: 1}, fs, logx.Nop())

	peer := transport.Peer{ID: 9, DisplayName: "<script>"}
	if err := n.MessageEdited(context.Background(), peer, "<b>old</b>", "a & b"); err != nil {
		t.Fatalf("MessageEdited: %v", err)
	}
	got := fs.sent[0].text
	for _, raw := range []string{"<script>", "<b>old</b>"} {
		if strings.Contains(got, raw) {
			t.Fatalf("alert leaked raw HTML %q: %q", raw, got)
		}
	}
	if !strings.Contains(got, "&lt;b&gt;old&lt;/b&gt;") || !strings.Contains(got, "a &amp; b") {
		t.Fatalf("alert not escaped as expected: %q", got)
	}
}

func TestSendFailureIsReportedNotSwallowed(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("boom")
	n := New(Config{OwnerChatID: 1}, &fakeSender{err: wantErr}, logx.Nop())

	err := n.MessageDeleted(context.Background(), transport.Peer{ID: 9}, "x")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	sent, failed := n.Counters()
	if sent != 0 || failed != 1 {
		t.Fatalf("counters = (%d,%d), want (0,1)", sent, failed)
	}
}

func TestUnknownPeerName(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	n := New(Config{OwnerChatID: 1}, fs, logx.Nop())
	if err := n.MessageDeleted(context.Background(), transport.Peer{ID: 3}, "x"); err != nil {
		t.Fatalf("MessageDeleted: %v", err)
	}
	if !strings.Contains(fs.sent[0].text, "unknown (3)") {
		t.Fatalf("alert = %q, want fallback display name", fs.sent[0].text)
	}
}

func TestLongTextsClamped(t *testing.T) {
	t.Parallel()
	fs := &fakeSender{}
	n := New(Config{OwnerChatID: 1}, fs, logx.Nop())

	long := strings.Repeat("x", 2*tgui.MaxMessageLen)
	if err := n.MessageEdited(context.Background(), transport.Peer{ID: 2, DisplayName: "Bob"}, long, long); err != nil {
		t.Fatalf("MessageEdited: %v", err)
	}
	got := fs.sent[0].text
	if runes := utf8.RuneCountInString(got); runes > tgui.MaxMessageLen {
		t.Fatalf("alert is %d runes, limit is %d", runes, tgui.MaxMessageLen)
	}
	if !strings.Contains(got, "…") {
		t.Fatal("expected truncation marker in clamped alert")
	}
}
