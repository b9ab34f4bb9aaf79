// Package catalog holds the static game and tournament tables offered by the bot.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// GameCode is the short identifier carried in game selection buttons.
type GameCode string

// TournamentType names a bracket size such as Solo or Squad.
type TournamentType string

// Game maps a code to its display name.
type Game struct {
	Code GameCode `yaml:"code"`
	Name string   `yaml:"name"`
}

// Tournament holds the prize table of one tournament type, in whole currency units.
type Tournament struct {
	Type       TournamentType `yaml:"type"`
	EntryFee   int64          `yaml:"entry_fee"`
	PerKill    int64          `yaml:"per_kill"`
	FirstPrize int64          `yaml:"first_prize"`
}

var (
	// ErrUnknownGame is returned when a code is not part of the catalog.
	ErrUnknownGame = errors.New("catalog: unknown game code")
	// ErrUnknownTournament is returned when a type is not part of the catalog.
	ErrUnknownTournament = errors.New("catalog: unknown tournament type")
)

// Catalog is an immutable, ordered view over the configured games and tournaments.
type Catalog struct {
	games       []Game
	tournaments []Tournament
	gameIdx     map[GameCode]int
	tourIdx     map[TournamentType]int
}

// DefaultGames is the game table used when configuration provides none.
func DefaultGames() []Game {
	return []Game{
		{Code: "BGMI", Name: "BGMI"},
		{Code: "FREE_FIRE", Name: "Free Fire"},
		{Code: "COD", Name: "Call of Duty"},
	}
}

// DefaultTournaments is the tournament table used when configuration provides none.
func DefaultTournaments() []Tournament {
	return []Tournament{
		{Type: "Solo", EntryFee: 200, PerKill: 50, FirstPrize: 1000},
		{Type: "Duo", EntryFee: 400, PerKill: 100, FirstPrize: 2000},
		{Type: "Squad", EntryFee: 800, PerKill: 200, FirstPrize: 4000},
	}
}

// Default returns the catalog built from DefaultGames and DefaultTournaments.
func Default() *Catalog {
	c, err := New(DefaultGames(), DefaultTournaments())
	if err != nil {
		panic(err)
	}
	return c
}

// New validates and indexes the given tables. Input order is kept for presentation.
func New(games []Game, tournaments []Tournament) (*Catalog, error) {
	if len(games) == 0 {
		return nil, errors.New("catalog: no games configured")
	}
	if len(tournaments) == 0 {
		return nil, errors.New("catalog: no tournaments configured")
	}

	c := &Catalog{
		games:       make([]Game, 0, len(games)),
		tournaments: make([]Tournament, 0, len(tournaments)),
		gameIdx:     make(map[GameCode]int, len(games)),
		tourIdx:     make(map[TournamentType]int, len(tournaments)),
	}
	for i, g := range games {
		g.Code = GameCode(strings.TrimSpace(string(g.Code)))
		g.Name = strings.TrimSpace(g.Name)
		if err := validToken(string(g.Code)); err != nil {
			return nil, fmt.Errorf("catalog: games[%d].code: %w", i, err)
		}
		if g.Name == "" {
			return nil, fmt.Errorf("catalog: games[%d].name is empty", i)
		}
		if _, dup := c.gameIdx[g.Code]; dup {
			return nil, fmt.Errorf("catalog: duplicate game code %q", g.Code)
		}
		c.gameIdx[g.Code] = len(c.games)
		c.games = append(c.games, g)
	}
	for i, t := range tournaments {
		t.Type = TournamentType(strings.TrimSpace(string(t.Type)))
		if err := validToken(string(t.Type)); err != nil {
			return nil, fmt.Errorf("catalog: tournaments[%d].type: %w", i, err)
		}
		if t.EntryFee < 0 || t.PerKill < 0 || t.FirstPrize < 0 {
			return nil, fmt.Errorf("catalog: tournament %q has a negative amount", t.Type)
		}
		if t.EntryFee > MaxEntryFee {
			return nil, fmt.Errorf("catalog: tournament %q entry fee exceeds %d", t.Type, MaxEntryFee)
		}
		if _, dup := c.tourIdx[t.Type]; dup {
			return nil, fmt.Errorf("catalog: duplicate tournament type %q", t.Type)
		}
		c.tourIdx[t.Type] = len(c.tournaments)
		c.tournaments = append(c.tournaments, t)
	}
	return c, nil
}

// validToken keeps codes usable as callback payloads ("|" separates callback fields).
func validToken(s string) error {
	switch {
	case s == "":
		return errors.New("empty")
	case strings.ContainsAny(s, "|\f"):
		return errors.New("contains a reserved character")
	case len(s) > 32:
		return errors.New("longer than 32 bytes")
	}
	return nil
}

// Games returns a copy of the game table in presentation order.
func (c *Catalog) Games() []Game {
	return append([]Game(nil), c.games...)
}

// Tournaments returns a copy of the tournament table in presentation order.
func (c *Catalog) Tournaments() []Tournament {
	return append([]Tournament(nil), c.tournaments...)
}

// ParseGame decodes a raw selection payload into a known game.
func (c *Catalog) ParseGame(raw string) (Game, error) {
	i, ok := c.gameIdx[GameCode(strings.TrimSpace(raw))]
	if !ok {
		return Game{}, fmt.Errorf("%w: %q", ErrUnknownGame, raw)
	}
	return c.games[i], nil
}

// ParseTournament decodes a raw selection payload into a known tournament.
func (c *Catalog) ParseTournament(raw string) (Tournament, error) {
	i, ok := c.tourIdx[TournamentType(strings.TrimSpace(raw))]
	if !ok {
		return Tournament{}, fmt.Errorf("%w: %q", ErrUnknownTournament, raw)
	}
	return c.tournaments[i], nil
}

// MaxEntryFee bounds entry fees so the invoice amount in minor units stays
// within a 32-bit integer.
const MaxEntryFee = 1_000_000

// MinorUnits converts a whole-unit amount into the currency's smallest unit.
func MinorUnits(amount int64) int64 {
	return amount * 100
}
