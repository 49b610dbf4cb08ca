package postgres

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// New opens and pings a Postgres connection pool via the pgx stdlib driver.
func New(dsn string) (*sqlx.DB, error) {
	return sqlx.Connect("pgx", dsn)
}
