package middleware

import (
	"strings"

	coreconfig "github.com/gamersarena/arenabot/core/config"

	tele "gopkg.in/telebot.v4"
)

// Kind buckets an update by what it carries. The values match the
// rate_limit.exclude_updates config names.
func Kind(c tele.Context) string {
	upd := c.Update()
	msg := upd.Message
	switch {
	case upd.PreCheckoutQuery != nil, msg != nil && msg.Payment != nil:
		return coreconfig.UpdateCheckout
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.ChatMember != nil, msg != nil && (msg.UserJoined != nil || len(msg.UsersJoined) > 0):
		return coreconfig.UpdateMember
	case msg != nil && strings.HasPrefix(msg.Text, "/"):
		return coreconfig.UpdateCommand
	case msg != nil:
		return coreconfig.UpdateMessage
	}
	return "other"
}
