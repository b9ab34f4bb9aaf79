// Package helpers wraps common Telegram sends and the per-update log context.
// Sends are synchronous and never retried; a failure is the caller's error.
package helpers

import (
	"errors"

	tele "gopkg.in/telebot.v4"
)

func markupOf(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends raw text (no parse mode).
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if rm := markupOf(markup); rm != nil {
		return c.Send(text, &tele.SendOptions{ReplyMarkup: rm})
	}
	return c.Send(text)
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markupOf(markup)})
}

// EditText edits the message the current callback belongs to.
func EditText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if rm := markupOf(markup); rm != nil {
		return c.Edit(text, &tele.SendOptions{ReplyMarkup: rm})
	}
	return c.Edit(text)
}

// SendInvoice sends a payment invoice to the current chat.
func SendInvoice(c tele.Context, inv *tele.Invoice) error {
	if inv == nil {
		return errors.New("helpers: nil invoice")
	}
	return c.Send(inv)
}
