package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Config carries the Postgres connection settings, sourced from the
// environment with a POSTGRES_ prefix.
type Config struct {
	URL          string `split_words:"true" required:"true"`
	MaxOpenConns int    `split_words:"true" default:"20"`
	PingTimeout  int    `split_words:"true" default:"5"`
}

// New opens a pooled connection and verifies it with a bounded ping.
func (c *Config) New() (*sql.DB, error) {
	db, err := sql.Open("postgres", c.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(c.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.PingTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
