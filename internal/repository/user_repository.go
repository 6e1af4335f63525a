package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// UserRepo persists accounts.  The profile sub-document lives in a JSON column.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, name, email, password_hash, role, profile, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// userRow holds the raw columns of a users row so it can be scanned as part
// of a wider joined row.
type userRow struct {
	u       model.User
	profile sql.NullString
}

func (r *userRow) dest() []any {
	return []any{&r.u.ID, &r.u.Name, &r.u.Email, &r.u.PasswordHash, &r.u.Role, &r.profile, &r.u.CreatedAt, &r.u.UpdatedAt}
}

func (r *userRow) user() (*model.User, error) {
	u := r.u
	if r.profile.Valid && r.profile.String != "" {
		if err := json.Unmarshal([]byte(r.profile.String), &u.Profile); err != nil {
			return nil, err
		}
	}
	u.Profile.Normalize()
	return &u, nil
}

func scanUser(s rowScanner) (*model.User, error) {
	var row userRow
	if err := s.Scan(row.dest()...); err != nil {
		return nil, err
	}
	return row.user()
}

// Create inserts the user and fills in ID and timestamps.  The email is
// stored lower-cased; a taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Profile.Normalize()
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, profile) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Role, profile)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at, updated_at FROM users WHERE id = ?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListByRole returns every user with the role, most recent first.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY created_at DESC, id DESC", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile replaces the name and the whole profile document.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name string, p model.Profile) error {
	p.Normalize()
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = ?, profile = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, doc, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
