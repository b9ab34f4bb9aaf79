package bot

import (
	"github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// StartHint answers stray private messages.
const StartHint = "Send /start to register for a tournament."

type defaultFallbacks struct{}

// UnknownText hints at /start in private chats and stays quiet in groups.
func (defaultFallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if chat := c.Chat(); chat == nil || chat.Type != tele.ChatPrivate {
			return nil
		}
		return helpers.SendText(c, StartHint)
	}
}

// UnknownCallback drops taps on stale keyboards.
func (defaultFallbacks) UnknownCallback() tele.HandlerFunc {
	return nil
}
