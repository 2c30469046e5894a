// Package notifier delivers edit/delete alerts to the owner chat.
//
// Alerts are small HTML messages: who the peer is, what happened, the
// previously stored text, and (for edits) the replacement text. Delivery is
// fire-and-forget from the tracker's point of view: a failed send is logged
// and counted here, never retried, and never unwinds the history write that
// triggered it.
//
// # Transport
//
// The service delegates delivery to a transport.Sender implementation
// (the Telegram adapter). Formatting and rate limiting live here so the
// tracker stays free of presentation concerns.
package notifier
