package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/clinicore/opd-emr/internal/config"
)

func init() {
	// modernc registers itself as "sqlite"; sqlx only knows "sqlite3".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens the single SQLite database file backing the whole application.
// A single write connection keeps SQLite's locking out of the picture; WAL and
// busy_timeout make concurrent readers behave under load.
func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path,
		cfg.BusyTimeoutMS,
	)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
