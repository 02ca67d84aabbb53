package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/finagle"
)

// CreateUser returns the user named username, creating it if needed.
func (s *Store) CreateUser(ctx context.Context, username string) (finagle.User, error) {
	username, err := finagle.ValidateUsername(username)
	if err != nil {
		return finagle.User{}, err
	}
	// an insert that hits the unique username would still use up an id.
	u, err := s.UserByName(ctx, username)
	if !errors.Is(err, ErrNotFound) {
		return u, err
	}
	now := time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		username, now)
	if err != nil {
		return finagle.User{}, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return s.UserByName(ctx, username)
}

// User returns the user with the given id.
func (s *Store) User(ctx context.Context, id int64) (finagle.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE id = ?`, id)
	return scanUser(row, fmt.Sprintf("user %d", id))
}

// UserByName returns the user with the given username.
func (s *Store) UserByName(ctx context.Context, username string) (finagle.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, username)
	return scanUser(row, fmt.Sprintf("user %q", username))
}

// DeleteUser deletes a user and all its transactions.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return expectOne(res, fmt.Sprintf("user %d", id))
}

func scanUser(row *sql.Row, what string) (finagle.User, error) {
	var u finagle.User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return u, fmt.Errorf("failed to read %s: %w", what, err)
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return u, fmt.Errorf("invalid creation time of %s: %w", what, err)
	}
	u.CreatedAt = t
	return u, nil
}

// expectOne returns ErrNotFound if the statement affected no row.
func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
