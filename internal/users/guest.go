package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// GuestUsername derives a throwaway username from a random UUID. Eight hex
// characters keep the collision probability negligible; the insert retries
// on the unique violation anyway.
func GuestUsername() string {
	return "guest_" + uuid.New().String()[:8]
}

// CreateGuest provisions a new guest identity with a random username, a
// random credential that is never disclosed, and an expiry expiryDays from
// now.
func (r *Repo) CreateGuest(ctx context.Context, passwordHash string, expiryDays int) (*User, error) {
	expiry := time.Now().Add(time.Duration(expiryDays) * 24 * time.Hour)

	for i := 0; i < 5; i++ {
		u, err := r.Create(ctx, NewUser{
			Username:     GuestUsername(),
			Email:        "",
			PasswordHash: passwordHash,
			IsGuest:      true,
			ExpiryAt:     &expiry,
		})
		if err == nil {
			return u, nil
		}

		// unique violation on username → retry with a fresh one
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique guest username")
}

// Promote converts a guest into a registered identity in place: credentials
// are overwritten, is_guest and expiry_at are cleared. Owned projects and
// panels keep their owner reference, so nothing else is touched. Returns
// ErrNotAGuest when the row exists but is already registered.
func (r *Repo) Promote(ctx context.Context, id, username, email, passwordHash string) (*User, error) {
	const q = `
update users
set username = $2, email = $3, password_hash = $4, is_guest = false, expiry_at = null
where id = $1::uuid and is_guest
returning ` + userColumns + `;
`
	u, err := scanUser(r.db.QueryRow(ctx, q, id, username, email, passwordHash))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Distinguish "missing" from "already registered".
	if _, gerr := r.GetByID(ctx, id); gerr == nil {
		return nil, ErrNotAGuest
	}
	return nil, ErrNotFound
}

// SweepGuests deletes every guest that is past its expiry or has been
// inactive longer than inactivityDays, cascading to owned projects and
// panels. Reruns are safe, but the returned count is only accurate for an
// uncontended run.
func (r *Repo) SweepGuests(ctx context.Context, now time.Time, inactivityDays int) (int, error) {
	inactiveBefore := now.Add(-time.Duration(inactivityDays) * 24 * time.Hour)

	const q = `
delete from users
where is_guest and (expiry_at < $1 or last_activity_at < $2)
returning username;
`
	rows, err := r.db.Query(ctx, q, now, inactiveBefore)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return count, err
		}
		log.Printf("deleted guest user: %s", username)
		count++
	}
	return count, rows.Err()
}
