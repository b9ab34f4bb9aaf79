package bot

import (
	"github.com/gamersarena/arenabot/core/telegram/format"
	"github.com/gamersarena/arenabot/core/telegram/helpers"
	"github.com/gamersarena/arenabot/core/telegram/keyboard"
	"github.com/gamersarena/arenabot/internal/flow"
	"github.com/gamersarena/arenabot/internal/payment"

	tele "gopkg.in/telebot.v4"
)

// teleReplier answers within the chat of the update being handled.
type teleReplier struct {
	c     tele.Context
	token string
}

func (r teleReplier) Send(p flow.Prompt) error {
	markup := promptMarkup(p)
	if p.HTML {
		return helpers.SendHTML(r.c, p.Text, markup...)
	}
	return helpers.SendText(r.c, p.Text, markup...)
}

func (r teleReplier) Edit(p flow.Prompt) error {
	return helpers.EditText(r.c, p.Text, promptMarkup(p)...)
}

func (r teleReplier) SendInvoice(inv payment.Invoice) error {
	return helpers.SendInvoice(r.c, inv.ToTelebot(r.token))
}

func promptMarkup(p flow.Prompt) []*tele.ReplyMarkup {
	if len(p.Options) == 0 && !p.Cancel {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(p.Options)+1)
	for _, o := range p.Options {
		rows = append(rows, []keyboard.InlineBtn{{Text: o.Label, Unique: string(p.Set), Data: o.Value}})
	}
	if p.Cancel {
		rows = append(rows, []keyboard.InlineBtn{keyboard.CancelButton(CallbackCancel)})
	}
	return []*tele.ReplyMarkup{keyboard.InlineButtonsRows(rows...)}
}

func userOf(c tele.Context) flow.User {
	u := c.Sender()
	if u == nil {
		return flow.User{}
	}
	return flow.User{
		ID:       u.ID,
		FullName: format.FullName(u),
		Mention:  format.MentionHTML(u),
	}
}
