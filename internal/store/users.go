package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is an account that owns catalog data.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	user := User{
		ID:           s.newID(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
	}
	created := s.timestamp()
	user.CreatedAt = parseTime(created)

	err := s.withTx(ctx, func(tx queryer) error {
		taken, err := exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, user.Email)
		if err != nil {
			return fmt.Errorf("check user email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, created_at)
			VALUES (?, ?, ?, ?)
		`, user.ID, user.Email, user.PasswordHash, created); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByEmail finds an account by its login email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = ?
	`, normalizeEmail(email)))
}

// UserByID finds an account by id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE id = ?
	`, id))
}

// EnsureUser creates the account if no account uses email yet. It reports
// whether a row was inserted.
func (s *Store) EnsureUser(ctx context.Context, email, passwordHash string) (User, bool, error) {
	user, err := s.UserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}
	user, err = s.CreateUser(ctx, email, passwordHash)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var user User
	var created string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = parseTime(created)
	return user, nil
}
