package store

import (
	"database/sql"
	"log/slog"

	"github.com/pavelanni/dreamroute/internal/model"
)

// CreateUser inserts a new user.
func (s *Store) CreateUser(u model.User) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (username, display_name, password_hash, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.DisplayName, u.PasswordHash, u.Role, u.Active, s.now(),
	)
	if err != nil {
		slog.Error("failed to create user", "username", u.Username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "username", u.Username, "role", u.Role)
	return id, nil
}

// EnsureAdmin creates the admin account, or resets its password hash if it
// exists. Resetting logs the account out everywhere.
func (s *Store) EnsureAdmin(username, passwordHash string) error {
	existing, err := s.GetUserByUsername(username)
	if err != nil {
		return err
	}
	if existing == nil {
		_, err := s.CreateUser(model.User{
			Username:     username,
			DisplayName:  "Administrator",
			PasswordHash: passwordHash,
			Role:         model.UserRoleAdmin,
			Active:       true,
		})
		return err
	}
	if _, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, role = ?, active = 1 WHERE id = ?`,
		passwordHash, model.UserRoleAdmin, existing.ID,
	); err != nil {
		return err
	}
	n, err := s.RevokeUserSessions(existing.ID)
	if err != nil {
		return err
	}
	slog.Info("admin password reset", "username", username, "revoked_sessions", n)
	return nil
}

const userColumns = `id, username, display_name, password_hash, role, active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername returns a user by username, or nil.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// GetUserByID returns a user by ID, or nil.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// UserCount returns the number of users with the given role.
func (s *Store) UserCount(role model.UserRole) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&count)
	return count, err
}
