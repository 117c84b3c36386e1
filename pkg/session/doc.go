// Package session tracks per-conversation state: message history, recently
// used tools, and caller-supplied project context, keyed by session id. The
// table is purely in-memory; nothing in this package touches disk or blocks
// beyond map access.
package session
