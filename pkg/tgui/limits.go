package tgui

// MaxMessageLen is Telegram's message text size limit.
// NOTE: Telegram counts UTF-16 code units, but for alert text the rune
// count is a safe lower bound.
const MaxMessageLen = 4096
