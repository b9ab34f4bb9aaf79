// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions are typed, keyed by Telegram user ID and accessed one update at a
// time per user, so per-user handlers never race each other.
package state
