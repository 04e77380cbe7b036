package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"

	// SessionCookie is the name of the browser cookie carrying the token.
	SessionCookie = "session_id"
)

var ErrNoSession = errors.New("session not found")

// Session is the per-browser state kept in Redis. UserID is the identity the
// session is logged in as; GuestID remembers a guest provisioned for this
// browser so repeated visits resolve to the same guest.
type Session struct {
	Token     string `json:"-"`
	UserID    string `json:"user_id,omitempty"`
	GuestID   string `json:"guest_id,omitempty"`
	CSRFToken string `json:"csrf_token"`
}

// Store keeps sessions in Redis with a sliding 7-day TTL.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates an empty session with a fresh token and CSRF token.
func (s *Store) New(ctx context.Context) (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	csrf, err := randomToken()
	if err != nil {
		return nil, err
	}

	sess := &Session{Token: token, CSRFToken: csrf}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes the session back and resets its TTL. When the session is
// logged in, the user->session mapping is updated so a later login can
// invalidate this session.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, SessionKeyPrefix+sess.Token, data, SessionDuration)
	if sess.UserID != "" {
		pipe.Set(ctx, UserSessionKeyPrefix+sess.UserID, sess.Token, SessionDuration)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads a session by token. Returns ErrNoSession for unknown or expired
// tokens.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	data, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	sess.Token = token
	return &sess, nil
}

// Login rotates the session token for the given user so the 7-day timer
// restarts and any previous session of that user is invalidated.
func (s *Store) Login(ctx context.Context, sess *Session, userID string) (*Session, error) {
	s.invalidateUserSession(ctx, userID)

	token, err := randomToken()
	if err != nil {
		return nil, err
	}

	fresh := &Session{
		Token:     token,
		UserID:    userID,
		GuestID:   sess.GuestID,
		CSRFToken: sess.CSRFToken,
	}
	if err := s.Save(ctx, fresh); err != nil {
		return nil, err
	}

	s.client.Del(ctx, SessionKeyPrefix+sess.Token)
	return fresh, nil
}

// Destroy removes the session entirely, guest reference included.
func (s *Store) Destroy(ctx context.Context, sess *Session) error {
	if sess.UserID != "" {
		s.client.Del(ctx, UserSessionKeyPrefix+sess.UserID)
	}
	return s.client.Del(ctx, SessionKeyPrefix+sess.Token).Err()
}

func (s *Store) invalidateUserSession(ctx context.Context, userID string) {
	token, err := s.client.Get(ctx, UserSessionKeyPrefix+userID).Result()
	if err == nil && token != "" {
		s.client.Del(ctx, SessionKeyPrefix+token)
	}
	s.client.Del(ctx, UserSessionKeyPrefix+userID)
}
