package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

// Session is a signed-in user together with their Google credentials
type Session struct {
	ID        string
	Email     string
	Name      string
	Picture   string
	Token     *oauth2.Token
	CreatedAt time.Time

	tokenSource oauth2.TokenSource
}

// TokenSource returns a token source that refreshes the session's access token
// when it expires and a refresh token is available
func (s *Session) TokenSource() oauth2.TokenSource {
	if s.tokenSource != nil {
		return s.tokenSource
	}
	return oauth2.StaticTokenSource(s.Token)
}

// Sessions is an in-process session store with a fixed lifetime per session
type Sessions struct {
	db *cache.Cache
}

// NewSessions creates a session store whose entries expire after ttl
func NewSessions(ttl time.Duration) *Sessions {
	cleanup := 10 * time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &Sessions{db: cache.New(ttl, cleanup)}
}

// Create stores s under a fresh id and returns it
func (s *Sessions) Create(sess *Session) *Session {
	sess.ID = uuid.NewString()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	s.db.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

// Get returns the live session with the given id
func (s *Sessions) Get(id string) (*Session, bool) {
	if x, found := s.db.Get(id); found {
		return x.(*Session), true
	}
	return nil, false
}

// Delete removes a session
func (s *Sessions) Delete(id string) {
	s.db.Delete(id)
}

// Count returns the number of stored sessions, expired ones included until
// the next cleanup
func (s *Sessions) Count() int {
	return s.db.ItemCount()
}

// LatestTokenSource returns the token source of the most recently created
// live session
func (s *Sessions) LatestTokenSource() (oauth2.TokenSource, bool) {
	var latest *Session
	for _, item := range s.db.Items() {
		sess := item.Object.(*Session)
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, false
	}
	return latest.TokenSource(), true
}

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession stores the session in ctx
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext extracts the session stored by the middleware
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey).(*Session)
	return sess
}
