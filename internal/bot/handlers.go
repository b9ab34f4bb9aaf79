package bot

import (
	"fmt"
	"log/slog"

	"github.com/gamersarena/arenabot/core/logger"
	"github.com/gamersarena/arenabot/core/telegram/callbacks"
	"github.com/gamersarena/arenabot/core/telegram/format"
	"github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (d *Dispatcher) replier(c tele.Context) teleReplier {
	return teleReplier{c: c, token: d.token}
}

func (d *Dispatcher) onStart(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	_, err := d.machine.Start(helpers.BuildContext(c), userOf(c), d.replier(c))
	return err
}

func (d *Dispatcher) onCancel(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	_, err := d.machine.Cancel(helpers.BuildContext(c), userOf(c), d.replier(c))
	return err
}

func (d *Dispatcher) onGameID(c tele.Context) error {
	_, err := d.machine.ReceiveGameID(helpers.BuildContext(c), userOf(c), c.Text(), d.replier(c))
	return err
}

func (d *Dispatcher) onGameSelected(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	_, err := d.machine.SelectGame(helpers.BuildContext(c), userOf(c), callbacks.CallbackPayload(c), d.replier(c))
	return err
}

func (d *Dispatcher) onTournamentSelected(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	_, err := d.machine.SelectTournament(helpers.BuildContext(c), userOf(c), callbacks.CallbackPayload(c), d.replier(c))
	return err
}

func (d *Dispatcher) onStats(c tele.Context) error {
	s := d.machine.Stats()
	text := fmt.Sprintf(
		"Active sessions: %d\nStarted: %d\nCancelled: %d\nRegistrations: %d ok, %d failed\nInvoices issued: %d\nPayments completed: %d\nWelcomes sent: %d",
		s.ActiveSessions, s.Started, s.Cancelled,
		s.RegistrationsOK, s.RegistrationsFailed,
		s.InvoicesIssued, d.payments.Load(), d.welcomes.Load(),
	)
	return helpers.SendText(c, text)
}

func (d *Dispatcher) onPreCheckout(c tele.Context) error {
	q := c.PreCheckoutQuery()
	if q == nil {
		return nil
	}
	dec := d.checkout.PreCheckout(helpers.BuildContext(c), q.Payload, q.Total, q.Currency)
	if dec.Approved {
		return c.Accept()
	}
	return c.Accept(dec.Reason)
}

func (d *Dispatcher) onPayment(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Payment == nil {
		return nil
	}
	p := msg.Payment
	ack := d.checkout.Completed(helpers.BuildContext(c), p.Payload, p.Total, p.Currency)
	if err := helpers.SendText(c, ack); err != nil {
		return fmt.Errorf("send payment ack: %w", err)
	}
	d.payments.Add(1)
	return nil
}

func (d *Dispatcher) onUserJoined(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	joined := msg.UsersJoined
	if msg.UserJoined != nil {
		joined = []tele.User{*msg.UserJoined}
	}
	for i := range joined {
		if err := d.welcome(c, &joined[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) onChatMember(c tele.Context) error {
	upd := c.ChatMember()
	if upd == nil || !joinedChat(upd) {
		return nil
	}
	return d.welcome(c, upd.NewChatMember.User)
}

// joinedChat reports a transition from outside the chat to a member role.
func joinedChat(upd *tele.ChatMemberUpdate) bool {
	if upd.NewChatMember == nil || upd.NewChatMember.User == nil {
		return false
	}
	switch upd.NewChatMember.Role {
	case tele.Member, tele.Administrator, tele.Creator:
	default:
		return false
	}
	if upd.OldChatMember == nil {
		return true
	}
	switch upd.OldChatMember.Role {
	case tele.Left, tele.Kicked:
		return true
	}
	return false
}

func (d *Dispatcher) welcome(c tele.Context, u *tele.User) error {
	if u == nil || u.IsBot {
		return nil
	}
	ctx := helpers.BuildContext(c)
	text := WelcomeText(format.FullName(u))
	if err := helpers.SendText(c, text); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	d.welcomes.Add(1)
	logger.Info(ctx, "app", "welcome.sent",
		slog.String("status", "ok"),
		slog.Int64("member_id", u.ID),
	)
	return nil
}

// WelcomeText greets a new group member.
func WelcomeText(fullName string) string {
	return fmt.Sprintf("Hello %s! Welcome to the group!", fullName)
}
