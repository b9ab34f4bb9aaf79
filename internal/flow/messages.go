package flow

import (
	"fmt"

	"github.com/gamersarena/arenabot/core/telegram/format"
	"github.com/gamersarena/arenabot/internal/catalog"
	"github.com/gamersarena/arenabot/internal/payment"
)

// CancelledText acknowledges /cancel.
const CancelledText = "Operation cancelled."

func greetingText(arena, mention string) string {
	return fmt.Sprintf("Hi %s! Welcome to %s!\nPlease enter your Game ID:", mention, format.EscapeHTML(arena))
}

func gameIDRecordedText(gameID string) string {
	return fmt.Sprintf("Great! Your Game ID: %s has been recorded.\nNow, please select the game you want to participate in:", gameID)
}

func gameSelectedText(game catalog.Game) string {
	return fmt.Sprintf("You've selected %s. Now, choose the tournament type:", game.Name)
}

func detailsText(t catalog.Tournament, currency string) string {
	return fmt.Sprintf(
		"Tournament Details for %s:\nEntry Fee: %s\nPer Kill: %s\nFirst Prize: %s\n\nTo complete registration, please use the payment button below.",
		t.Type,
		payment.FormatAmount(t.EntryFee, currency),
		payment.FormatAmount(t.PerKill, currency),
		payment.FormatAmount(t.FirstPrize, currency),
	)
}

func gameOptions(c *catalog.Catalog) []Option {
	games := c.Games()
	out := make([]Option, 0, len(games))
	for _, g := range games {
		out = append(out, Option{Label: g.Name, Value: string(g.Code)})
	}
	return out
}

func tournamentOptions(c *catalog.Catalog) []Option {
	ts := c.Tournaments()
	out := make([]Option, 0, len(ts))
	for _, t := range ts {
		out = append(out, Option{Label: string(t.Type), Value: string(t.Type)})
	}
	return out
}
