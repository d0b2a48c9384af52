// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/scoreboard/auth"
	"github.com/danielhkuo/scoreboard/models"
)

// NewUser is the input to CreateUser.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
	Admin    bool
}

const userColumns = "id, username, name, email, password_hash, admin"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Admin)
	return u, err
}

// CreateUser registers an account. Only administrators may do this.
func (s *Store) CreateUser(ctx context.Context, caller Caller, in NewUser) (models.User, error) {
	if !caller.Admin {
		return models.User{}, forbidden("only administrators can create users")
	}
	return s.insertUser(ctx, in)
}

// EnsureAdmin creates an administrator unless one with that username
// already exists. It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.GetUser(ctx, username)
	if err == nil {
		return false, nil
	}
	if KindOf(err) != KindNotFound {
		return false, err
	}
	_, err = s.insertUser(ctx, NewUser{Name: username, Username: username, Email: email, Password: password, Admin: true})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) insertUser(ctx context.Context, in NewUser) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" {
		return models.User{}, invalid("username is required")
	}
	if in.Email == "" {
		return models.User{}, invalid("email is required")
	}
	if in.Password == "" {
		return models.User{}, invalid("password is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{Username: in.Username, Name: in.Name, Email: in.Email, PasswordHash: hash, Admin: in.Admin}
	err = s.writeTx(ctx, "create_user", func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1 OR email = $2)",
			u.Username, u.Email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if exists {
			return conflict("a user with this username or email already exists")
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO app_user (username, name, email, password_hash, admin)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, u.Username, u.Name, u.Email, u.PasswordHash, u.Admin).Scan(&u.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return conflict("a user with this username or email already exists")
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	slog.Info("user created", "username", u.Username, "admin", u.Admin)
	return u, nil
}

// GetUser loads a user by username.
func (s *Store) GetUser(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE username = $1", username))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("user %q not found", username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// Authenticate checks a password for the user with the given username or
// email. Every failure is reported as Forbidden so callers cannot probe
// which accounts exist.
func (s *Store) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return models.User{}, invalid("username or email and password are required")
	}

	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1", login))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, forbidden("invalid credentials")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return models.User{}, forbidden("invalid credentials")
	}
	return u, nil
}

// ListUsers pages through all users by id. Administrators only.
func (s *Store) ListUsers(ctx context.Context, caller Caller, limit int, token string) (Page[models.User], error) {
	var page Page[models.User]
	if !caller.Admin {
		return page, forbidden("only administrators can list users")
	}

	limit = ClampLimit(limit, DefaultPageSize, MaxPageSize)
	var after int64
	if token != "" {
		var err error
		if after, err = decodeIDToken(token); err != nil {
			return page, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM app_user WHERE id > $1 ORDER BY id LIMIT $2", after, limit+1)
	if err != nil {
		return page, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	page.Items = []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return page, fmt.Errorf("failed to scan user: %w", err)
		}
		page.Items = append(page.Items, u)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate users: %w", err)
	}

	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
		next := encodeIDToken(page.Items[limit-1].ID)
		page.ContinueToken = &next
	}
	return page, nil
}

// DeleteUser removes a user matched by username or email, along with
// their sessions. Administrators only.
func (s *Store) DeleteUser(ctx context.Context, caller Caller, username, email string) error {
	if !caller.Admin {
		return forbidden("only administrators can delete users")
	}
	if username == "" && email == "" {
		return invalid("username or email is required")
	}

	return s.writeTx(ctx, "delete_user", func(tx *sql.Tx) error {
		var id int64
		var name string
		err := tx.QueryRowContext(ctx,
			"SELECT id, username FROM app_user WHERE username = $1 OR email = $2 ORDER BY id LIMIT 1",
			username, email).Scan(&id, &name)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("user not found")
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM score WHERE session_id IN (SELECT id FROM session WHERE username = $1)", name); err != nil {
			return fmt.Errorf("failed to delete scores: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM session WHERE username = $1", name); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM suite_user WHERE user_id = $1", id); err != nil {
			return fmt.Errorf("failed to delete suite ownership: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM app_user WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		slog.Info("user deleted", "username", name, "by", caller.Username)
		return nil
	})
}
