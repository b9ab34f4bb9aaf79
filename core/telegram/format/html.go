package format

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// FullName joins first and last name the way Telegram clients display them.
func FullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" && u.Username != "" {
		return u.Username
	}
	return name
}

// MentionHTML renders an inline mention of the user for HTML parse mode.
func MentionHTML(u *tele.User) string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, EscapeHTML(FullName(u)))
}
