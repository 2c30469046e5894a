package notifier

import (
	"fmt"

	"peekbot/internal/transport"
	"peekbot/pkg/tgui"
)

// Alert layout mirrors what the owner expects to skim on a phone:
// one header line identifying the peer, one action line, then the texts
// in <code> blocks so copy/paste keeps whitespace intact.

// Each text is clamped so an alert with two blocks plus the header and
// markup still fits tgui.MaxMessageLen.
const (
	alertOverhead = 496
	maxTextRunes  = (tgui.MaxMessageLen - alertOverhead) / 2
)

func formatEdited(peer transport.Peer, oldText, newText string) string {
	return tgui.Lines(
		header(peer),
		tgui.Raw("✏️ ")+tgui.B("Message edited"),
		tgui.Raw("Old text:"),
		tgui.Code(tgui.TruncRunes(oldText, maxTextRunes)),
		tgui.Raw("New text:"),
		tgui.Code(tgui.TruncRunes(newText, maxTextRunes)),
	).String()
}

func formatDeleted(peer transport.Peer, oldText string) string {
	return tgui.Lines(
		header(peer),
		tgui.Raw("🗑 ")+tgui.B("Message deleted"),
		tgui.Raw("Text:"),
		tgui.Code(tgui.TruncRunes(oldText, maxTextRunes)),
	).String()
}

func header(peer transport.Peer) tgui.H {
	return tgui.Raw("👤 ") + tgui.B(fmt.Sprintf("%s (%d)", displayName(peer), peer.ID))
}

func displayName(peer transport.Peer) string {
	if peer.DisplayName != "" {
		return peer.DisplayName
	}
	return "unknown"
}
