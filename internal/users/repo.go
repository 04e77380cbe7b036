package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// User is a single identity row. Guests are ordinary rows with is_guest set
// and an expiry; promotion flips the flags in place so owned rows never move.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	IsGuest        bool       `json:"is_guest"`
	ExpiryAt       *time.Time `json:"expiry_at,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

const userColumns = `id::text, username, email, password_hash, is_guest, expiry_at, last_activity_at, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsGuest,
		&u.ExpiryAt, &u.LastActivityAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	IsGuest      bool
	ExpiryAt     *time.Time
}

// Create inserts a fully-formed identity in a single statement. There is no
// separate profile row to attach afterward.
func (r *Repo) Create(ctx context.Context, nu NewUser) (*User, error) {
	if nu.Username == "" {
		return nil, fmt.Errorf("username required")
	}

	const q = `
insert into users (username, email, password_hash, is_guest, expiry_at)
values ($1, $2, $3, $4, $5)
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, nu.Username, nu.Email, nu.PasswordHash, nu.IsGuest, nu.ExpiryAt))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `select ` + userColumns + ` from users where id = $1::uuid;`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

// GetRegisteredByUsername looks up a non-guest identity for login. Guest
// usernames are system-generated and their passwords are never disclosed,
// so they are not reachable through this path.
func (r *Repo) GetRegisteredByUsername(ctx context.Context, username string) (*User, error) {
	const q = `select ` + userColumns + ` from users where username = $1 and not is_guest;`
	return scanUser(r.db.QueryRow(ctx, q, username))
}

// UsernameTaken reports whether a registered identity already uses the name.
// Guest usernames are ignored, matching the partial unique index.
func (r *Repo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	const q = `select exists(select 1 from users where username = $1 and not is_guest);`
	var taken bool
	if err := r.db.QueryRow(ctx, q, username).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *Repo) EmailTaken(ctx context.Context, email string) (bool, error) {
	const q = `select exists(select 1 from users where email = $1 and not is_guest);`
	var taken bool
	if err := r.db.QueryRow(ctx, q, email).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// TouchActivity refreshes last_activity_at so the inactivity sweep does not
// collect identities that are still in use.
func (r *Repo) TouchActivity(ctx context.Context, id string) error {
	const q = `update users set last_activity_at = now() where id = $1::uuid;`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
