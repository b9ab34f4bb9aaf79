package payment

import (
	"fmt"
	"strconv"

	"github.com/gamersarena/arenabot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// LineItem is one priced row of an invoice, in minor currency units.
type LineItem struct {
	Label  string
	Amount int64
}

// Invoice is a provider-neutral payment request.
type Invoice struct {
	Title          string
	Description    string
	Payload        string
	Currency       string
	StartParameter string
	Items          []LineItem

	NeedName            bool
	NeedPhoneNumber     bool
	NeedEmail           bool
	NeedShippingAddress bool
}

// Total sums the line items.
func (i Invoice) Total() int64 {
	var sum int64
	for _, it := range i.Items {
		sum += it.Amount
	}
	return sum
}

// ToTelebot converts the invoice for sending with the given provider token.
func (i Invoice) ToTelebot(providerToken string) *tele.Invoice {
	prices := make([]tele.Price, 0, len(i.Items))
	for _, it := range i.Items {
		prices = append(prices, tele.Price{Label: it.Label, Amount: int(it.Amount)})
	}
	return &tele.Invoice{
		Title:               i.Title,
		Description:         i.Description,
		Payload:             i.Payload,
		Currency:            i.Currency,
		Prices:              prices,
		Token:               providerToken,
		Start:               i.StartParameter,
		NeedName:            i.NeedName,
		NeedPhoneNumber:     i.NeedPhoneNumber,
		NeedEmail:           i.NeedEmail,
		NeedShippingAddress: i.NeedShippingAddress,
	}
}

// Gateway builds entry-fee invoices.
type Gateway struct {
	cfg      Config
	verifier *Verifier
}

// NewGateway wires cfg to a verifier created from its payload settings.
func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		cfg:      cfg,
		verifier: NewVerifier(cfg.verifierOptions()),
	}
}

// Verifier exposes the payload verifier shared with checkout handling.
func (g *Gateway) Verifier() *Verifier { return g.verifier }

// ProviderToken returns the configured provider credential.
func (g *Gateway) ProviderToken() string { return g.cfg.ProviderToken }

// Withdraw invalidates the payload of an invoice that was not delivered.
func (g *Gateway) Withdraw(inv Invoice) { g.verifier.Retire(inv.Payload) }

// EntryInvoice prices the entry fee of t in minor units. An invoice that
// fails to send must be passed to Withdraw.
func (g *Gateway) EntryInvoice(t catalog.Tournament) Invoice {
	return Invoice{
		Title:          fmt.Sprintf("%s Tournament Entry Fee", t.Type),
		Description:    fmt.Sprintf("Entry fee for %s tournament.", t.Type),
		Payload:        g.verifier.Issue(),
		Currency:       g.cfg.Currency,
		StartParameter: g.cfg.StartParameter,
		Items: []LineItem{
			{Label: "Entry Fee", Amount: catalog.MinorUnits(t.EntryFee)},
		},
		NeedName:            g.cfg.needName(),
		NeedPhoneNumber:     g.cfg.NeedPhoneNumber,
		NeedEmail:           g.cfg.NeedEmail,
		NeedShippingAddress: g.cfg.NeedShippingAddress,
	}
}

// FormatAmount renders a whole-unit amount for humans: ₹800 for INR, "800 USD" otherwise.
func FormatAmount(amount int64, currency string) string {
	if currency == "INR" {
		return "₹" + strconv.FormatInt(amount, 10)
	}
	return strconv.FormatInt(amount, 10) + " " + currency
}
