package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarplan/rooftop-backend/internal/users"
)

const (
	CtxSession  = "session"
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxIsGuest  = "is_guest"
)

// WithSession loads the session from the cookie, creating a fresh one when
// the cookie is missing or stale. Every request downstream can rely on a
// session being present.
func WithSession(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		sess, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session store unavailable"})
				c.Abort()
				return
			}
			sess, err = store.New(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session store unavailable"})
				c.Abort()
				return
			}
			setSessionCookie(c, sess.Token)
		}

		c.Set(CtxSession, sess)
		c.Next()
	}
}

// RequireCSRF rejects mutating requests whose X-CSRF-Token header does not
// match the session's token. Safe methods pass through.
func RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sess := SessionFrom(c)
		if sess == nil || c.GetHeader("X-CSRF-Token") != sess.CSRFToken {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "CSRF token missing or invalid"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// WithIdentity resolves the request to an identity. A logged-in session is
// used as-is; otherwise a guest is resolved from the session or created on
// demand and logged in. This never fails for anonymous visitors unless the
// store is down.
func WithIdentity(store *Store, repo Users, guestExpiryDays int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := SessionFrom(c)

		if sess.UserID != "" {
			u, err := repo.GetByID(ctx, sess.UserID)
			if err == nil {
				if u.IsGuest {
					_ = repo.TouchActivity(ctx, u.ID)
				}
				setIdentity(c, u)
				c.Next()
				return
			}
			if !errors.Is(err, users.ErrNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "user store unavailable"})
				c.Abort()
				return
			}
			// Logged-in user no longer exists (e.g. swept guest); fall
			// through to guest resolution.
		}

		u, err := resolveOrCreateGuest(c, store, repo, sess, guestExpiryDays)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "guest provisioning failed"})
			c.Abort()
			return
		}

		setIdentity(c, u)
		c.Next()
	}
}

func resolveOrCreateGuest(c *gin.Context, store *Store, repo Users, sess *Session, expiryDays int) (*users.User, error) {
	ctx := c.Request.Context()

	if sess.GuestID != "" {
		u, err := repo.GetByID(ctx, sess.GuestID)
		if err == nil && u.IsGuest {
			if terr := repo.TouchActivity(ctx, u.ID); terr != nil {
				return nil, terr
			}
			if sess.UserID != u.ID {
				sess.UserID = u.ID
				if serr := store.Save(ctx, sess); serr != nil {
					return nil, serr
				}
			}
			return u, nil
		}
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return nil, err
		}
		// Guest was swept or promoted elsewhere; provision a new one.
	}

	hash, err := randomCredentialHash()
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateGuest(ctx, hash, expiryDays)
	if err != nil {
		return nil, err
	}

	sess.GuestID = u.ID
	sess.UserID = u.ID
	if err := store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return u, nil
}

func setIdentity(c *gin.Context, u *users.User) {
	c.Set(CtxUserID, u.ID)
	c.Set(CtxUsername, u.Username)
	c.Set(CtxIsGuest, u.IsGuest)
}

// SessionFrom returns the session placed in the context by WithSession.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}

// UserID returns the resolved identity id for the request.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(SessionDuration.Seconds()), "/", "", false, true)
}
