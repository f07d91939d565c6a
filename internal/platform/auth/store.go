package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	RoleMember        = "member"
	RoleAdministrator = "administrator"
)

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
SELECT user_id, email, username, password_hash, role, created_at
FROM users
WHERE email = ?
LIMIT 1
`
	var u User
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	const q = `
SELECT user_id, email, username, password_hash, role, created_at
FROM users
WHERE user_id = ?
LIMIT 1
`
	var u User
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (email, username, password_hash, role, created_at)
VALUES (?, ?, ?, ?, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, u.Email, u.Username, u.PasswordHash, u.Role)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	return nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT user_id, email, username, password_hash, role, created_at
FROM users
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, u *User) (int64, error) {
	const q = `
UPDATE users
SET email = ?, username = ?, password_hash = ?, role = ?
WHERE user_id = ?
`
	res, err := s.db.ExecContext(ctx, q, u.Email, u.Username, u.PasswordHash, u.Role, u.ID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Delete は未返却の貸出が残る利用者を消さない。
// 返却済みの貸出履歴は fk_loans_user の CASCADE で利用者と一緒に消える。
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE user_id = ? AND returned_at IS NULL`, id,
	).Scan(&active)
	if err != nil {
		return 0, err
	}
	if active > 0 {
		return 0, ErrHasActiveLoan
	}

	const q = `DELETE FROM users WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
