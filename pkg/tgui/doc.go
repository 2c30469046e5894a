// Package tgui provides small helpers for composing Telegram messages
// with ParseMode="HTML": escaping, basic tag wrappers, and rune-aware
// truncation that respects Telegram's message length limit.
package tgui
