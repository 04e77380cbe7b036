package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarplan/rooftop-backend/internal/users"
	"github.com/solarplan/rooftop-backend/pkg/passwords"
)

// Handler bundles the auth endpoints: register (with guest promotion),
// login, logout, CSRF token fetch and auth status.
type Handler struct {
	store   *Store
	repo    Users
	limiter *loginLimiter
}

func NewHandler(store *Store, repo Users) *Handler {
	return &Handler{
		store:   store,
		repo:    repo,
		limiter: newLoginLimiter(10, 5),
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
	r.POST("/auth/logout", h.logout)
	r.GET("/csrf", h.csrfToken)
	r.GET("/user-status", h.userStatus)
}

type registerReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, "invalid body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password1 == "" {
		fail(c, "All fields are required.")
		return
	}
	if req.Password1 != req.Password2 {
		fail(c, "Passwords do not match.")
		return
	}

	ctx := c.Request.Context()

	taken, err := h.repo.UsernameTaken(ctx, req.Username)
	if err != nil {
		storeFailure(c, err)
		return
	}
	if taken {
		fail(c, "Username already taken.")
		return
	}

	taken, err = h.repo.EmailTaken(ctx, req.Email)
	if err != nil {
		storeFailure(c, err)
		return
	}
	if taken {
		fail(c, "Email already in use.")
		return
	}

	hash, err := passwords.Hash(req.Password1)
	if err != nil {
		storeFailure(c, err)
		return
	}

	sess := SessionFrom(c)

	// A guest in this session gets promoted instead of creating a second
	// identity, so everything they built carries over.
	if sess.GuestID != "" {
		u, err := h.repo.Promote(ctx, sess.GuestID, req.Username, req.Email, hash)
		switch {
		case err == nil:
			sess, err = h.store.Login(ctx, sess, u.ID)
			if err != nil {
				storeFailure(c, err)
				return
			}
			setSessionCookie(c, sess.Token)
			c.JSON(http.StatusOK, gin.H{"success": true, "username": u.Username, "converted": true})
			return
		case errors.Is(err, users.ErrNotFound), errors.Is(err, users.ErrNotAGuest):
			// Stale guest reference; register a fresh account below.
		default:
			storeFailure(c, err)
			return
		}
	}

	u, err := h.repo.Create(ctx, users.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		storeFailure(c, err)
		return
	}

	sess, err = h.store.Login(ctx, sess, u.ID)
	if err != nil {
		storeFailure(c, err)
		return
	}
	setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{"success": true, "username": u.Username})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	if !h.limiter.allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many login attempts. Try again later."})
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, "invalid body")
		return
	}

	ctx := c.Request.Context()

	u, err := h.repo.GetRegisteredByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			fail(c, "Invalid username or password.")
			return
		}
		storeFailure(c, err)
		return
	}

	ok, err := passwords.Verify(req.Password, u.PasswordHash)
	if err != nil || !ok {
		fail(c, "Invalid username or password.")
		return
	}

	sess, err := h.store.Login(ctx, SessionFrom(c), u.ID)
	if err != nil {
		storeFailure(c, err)
		return
	}
	setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{"success": true, "username": u.Username})
}

func (h *Handler) logout(c *gin.Context) {
	sess := SessionFrom(c)
	if err := h.store.Destroy(c.Request.Context(), sess); err != nil {
		storeFailure(c, err)
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) csrfToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": SessionFrom(c).CSRFToken})
}

// userStatus reports authentication state without provisioning a guest.
func (h *Handler) userStatus(c *gin.Context) {
	sess := SessionFrom(c)

	resp := gin.H{"is_authenticated": false, "is_guest": false}
	if sess.UserID != "" {
		u, err := h.repo.GetByID(c.Request.Context(), sess.UserID)
		if err == nil {
			resp["is_authenticated"] = true
			resp["is_guest"] = u.IsGuest
			resp["username"] = u.Username
		}
	}
	c.JSON(http.StatusOK, resp)
}

// randomCredentialHash hashes a throwaway password for guest accounts. The
// plaintext is discarded immediately; guests never log in by password.
func randomCredentialHash() (string, error) {
	return passwords.Hash(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

func fail(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func storeFailure(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}
