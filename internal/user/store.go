package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
	"github.com/mauv0809/shuttle-league/internal/validation"
)

const defaultSearchLimit = 20

// New creates a new UserStore.
func New(db *sql.DB) UserStore {
	return &store{
		db: db,
	}
}

// CreateUser registers a profile. A taken username is reported by the unique index.
func (s *store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	if in.ID == "" {
		return nil, apperr.Invalid("create user", "user id is required")
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Nickname = strings.TrimSpace(in.Nickname)
	if err := validation.Struct(ctx, in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, nickname, username, email, photo_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.DisplayName, in.Nickname, in.Username, in.Email, in.PhotoURL, now.Unix(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.username") {
				return nil, apperr.ErrUsernameTaken
			}
			return nil, apperr.New(apperr.KindConflict, "create user", errors.New("user already exists"))
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	log.Info("Created user", "userID", in.ID, "username", in.Username)

	return &User{
		ID:          in.ID,
		DisplayName: in.DisplayName,
		Nickname:    in.Nickname,
		Username:    in.Username,
		Email:       in.Email,
		PhotoURL:    in.PhotoURL,
		CreatedAt:   time.Unix(now.Unix(), 0),
	}, nil
}

const userColumns = `id, display_name, nickname, username, email,
	COALESCE(photo_url, ''), COALESCE(bio, ''), COALESCE(phone, ''), COALESCE(gender, ''), COALESCE(address, ''),
	verified, created_at`

func scanUser(scanner interface{ Scan(...any) error }) (*User, error) {
	var (
		u         User
		createdAt int64
	)
	err := scanner.Scan(&u.ID, &u.DisplayName, &u.Nickname, &u.Username, &u.Email,
		&u.PhotoURL, &u.Bio, &u.Phone, &u.Gender, &u.Address, &u.Verified, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

func (s *store) getUser(ctx context.Context, where string, arg any) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *store) GetUser(ctx context.Context, userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUser(ctx, "id", userID)
}

func (s *store) GetByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUser(ctx, "username", username)
}

// IsUsernameAvailable is advisory for forms. CreateUser is the authoritative check.
func (s *store) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if err := validation.Username(username); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var taken bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return !taken, nil
}

// UpdateProfile applies the non-nil fields. Names are re-validated.
func (s *store) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	update.DisplayName = trimmed(update.DisplayName)
	update.Nickname = trimmed(update.Nickname)
	if err := validation.Struct(ctx, update); err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	for column, value := range map[string]*string{
		"display_name": update.DisplayName,
		"nickname":     update.Nickname,
		"photo_url":    update.PhotoURL,
		"bio":          update.Bio,
		"phone":        update.Phone,
		"gender":       update.Gender,
		"address":      update.Address,
	} {
		if value != nil {
			sets, args = append(sets, column+" = ?"), append(args, *value)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sets) > 0 {
		args = append(args, userID)
		res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		if err := database.CheckAffected(res, apperr.ErrUserNotFound); err != nil {
			return nil, err
		}
		log.Info("Updated user profile", "userID", userID, "fields", len(sets))
	}
	return s.getUser(ctx, "id", userID)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func (s *store) SetVerified(ctx context.Context, userID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET verified = ? WHERE id = ?`, verified, userID)
	if err != nil {
		return fmt.Errorf("failed to set verified: %w", err)
	}
	return database.CheckAffected(res, apperr.ErrUserNotFound)
}

// SearchUsers finds users whose username or display name starts with prefix.
func (s *store) SearchUsers(ctx context.Context, prefix string, limit int) ([]User, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, apperr.Field("q", "search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	pattern := escapeLike(prefix) + "%"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username LIKE ? ESCAPE '\' OR display_name LIKE ? ESCAPE '\'
		ORDER BY username
		LIMIT ?`, strings.ToLower(pattern), pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
