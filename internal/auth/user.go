// Package auth registers users, issues API tokens and guards handlers
// behind them.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an API account.
type User struct {
	ID           int64
	UUID         string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserStore persists users in the users table.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Add inserts u. Returns ErrUserExists when the username or email is taken.
func (s *UserStore) Add(ctx context.Context, u *User) error {
	if u.UUID == "" {
		u.UUID = uuid.New().String()
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uuid, username, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.UUID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("add user %s: %w", u.Username, ErrUserExists)
		}
		return fmt.Errorf("add user %s: %w", u.Username, err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	u.CreatedAt = now
	return nil
}

const userColumns = "id, uuid, username, email, password_hash, is_admin, created_at"

func (s *UserStore) get(ctx context.Context, where string, arg any) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" = ?", arg).
		Scan(&u.ID, &u.UUID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.get(ctx, "username", username)
}

func (s *UserStore) GetByUUID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, "uuid", id)
}

// SetAdmin grants or revokes admin rights.
func (s *UserStore) SetAdmin(ctx context.Context, username string, admin bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE username = ?", admin, username)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Register hashes password and stores a new user.
func (s *UserStore) Register(ctx context.Context, username, email, password string, admin bool) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{Username: username, Email: email, PasswordHash: hash, IsAdmin: admin}
	if err := s.Add(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
