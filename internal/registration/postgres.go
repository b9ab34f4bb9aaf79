package registration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BackendPostgres names the PostgreSQL backend.
const BackendPostgres = "postgres"

type namedExecer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// Postgres appends records to the registrations table created by migrations/.
type Postgres struct {
	db namedExecer
}

var _ namedExecer = (*sqlx.DB)(nil)

type registrationRow struct {
	Name   string `db:"name"`
	Game   string `db:"game"`
	UserID string `db:"game_user_id"`
}

const insertRegistration = `INSERT INTO registrations (name, game, game_user_id) VALUES (:name, :game, :game_user_id)`

// NewPostgres wraps an open sqlx pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Name implements Store.
func (p *Postgres) Name() string { return BackendPostgres }

// Submit inserts one row.
func (p *Postgres) Submit(ctx context.Context, rec Record) error {
	res, err := p.db.NamedExecContext(ctx, insertRegistration, registrationRow{
		Name:   rec.Name,
		Game:   rec.Game,
		UserID: rec.UserID,
	})
	if err != nil {
		return fmt.Errorf("postgres: insert registration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("postgres: %d rows affected: %w", n, ErrRejected)
	}
	return nil
}
