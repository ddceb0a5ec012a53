// Package storage implements every store interface on top of sqlx, for both Postgres
// and SQLite. Queries are written with `?` placeholders and rebound per driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/user/portfolio-go/auth"
)

const pgUniqueViolation = "23505"

// Store bundles the per-resource stores over one database.
type Store struct {
	db *sqlx.DB

	Identities *IdentityStore
	Posts      *PostStore
	Comments   *CommentStore
	Projects   *ProjectStore
	Messages   *MessageStore
}

// New creates the stores over db.
func New(db *sqlx.DB) *Store {
	b := base{db: db}
	return &Store{
		db:         db,
		Identities: &IdentityStore{b},
		Posts:      &PostStore{b},
		Comments:   &CommentStore{b},
		Projects:   &ProjectStore{b},
		Messages:   &MessageStore{b},
	}
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type base struct {
	db *sqlx.DB
}

// withTx runs fn in a transaction, committing on success and rolling back on error or panic.
func (b base) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}

// ownerUsername resolves the owner reference of a new resource. A missing owner
// is auth.ErrIdentityNotFound.
func ownerUsername(ctx context.Context, tx *sqlx.Tx, ownerID string) (string, error) {
	var username string
	err := tx.GetContext(ctx, &username, tx.Rebind(`SELECT username FROM users WHERE id = ?`), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrIdentityNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve owner: %w", err)
	}
	return username, nil
}

// uniqueViolation reports the column of a unique-constraint failure, if err is one.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return "email", true
		case strings.Contains(pgErr.ConstraintName, "username"):
			return "username", true
		}
		return pgErr.ConstraintName, true
	}

	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		rest := msg[i+len("UNIQUE constraint failed: "):]
		if dot := strings.Index(rest, "."); dot >= 0 {
			rest = rest[dot+1:]
		}
		if end := strings.IndexAny(rest, " ,"); end >= 0 {
			rest = rest[:end]
		}
		return rest, true
	}
	return "", false
}

func found(err error) (bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// now is the store clock. Microsecond precision survives both backends.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
