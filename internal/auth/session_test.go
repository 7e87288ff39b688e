package auth

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSessions_CreateGetDelete(t *testing.T) {
	sessions := NewSessions(time.Hour)

	sess := sessions.Create(&Session{Email: "alice@example.com"})
	if sess.ID == "" {
		t.Fatal("Expected session id to be assigned")
	}
	if sess.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	got, ok := sessions.Get(sess.ID)
	if !ok || got.Email != "alice@example.com" {
		t.Errorf("Expected to find session, got %+v", got)
	}

	sessions.Delete(sess.ID)
	if _, ok := sessions.Get(sess.ID); ok {
		t.Error("Expected session to be deleted")
	}
}

func TestSessions_UniqueIDs(t *testing.T) {
	sessions := NewSessions(time.Hour)
	a := sessions.Create(&Session{Email: "a@example.com"})
	b := sessions.Create(&Session{Email: "b@example.com"})
	if a.ID == b.ID {
		t.Error("Expected distinct session ids")
	}
}

func TestSessions_Expiry(t *testing.T) {
	sessions := NewSessions(20 * time.Millisecond)
	sess := sessions.Create(&Session{Email: "alice@example.com"})

	time.Sleep(40 * time.Millisecond)
	if _, ok := sessions.Get(sess.ID); ok {
		t.Error("Expected session to expire")
	}
}

func TestSessions_LatestTokenSource(t *testing.T) {
	sessions := NewSessions(time.Hour)

	if _, ok := sessions.LatestTokenSource(); ok {
		t.Error("Expected no token source without sessions")
	}

	now := time.Now()
	sessions.Create(&Session{
		Email:     "old@example.com",
		Token:     &oauth2.Token{AccessToken: "old"},
		CreatedAt: now.Add(-time.Minute),
	})
	sessions.Create(&Session{
		Email:     "new@example.com",
		Token:     &oauth2.Token{AccessToken: "new"},
		CreatedAt: now,
	})

	ts, ok := sessions.LatestTokenSource()
	if !ok {
		t.Fatal("Expected a token source")
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("Expected latest session token, got %s", tok.AccessToken)
	}
}

func TestSignAndParseSession(t *testing.T) {
	secret := []byte("0123456789abcdef")
	sess := &Session{ID: "session-1", Email: "alice@example.com"}

	signed, err := signSession(secret, sess, time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	claims, err := parseSession(secret, signed)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if claims.ID != "session-1" || claims.Subject != "alice@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, err := parseSession([]byte("another-secret!!"), signed); err == nil {
		t.Error("Expected token signed with a different secret to be rejected")
	}
}

func TestParseSession_Expired(t *testing.T) {
	secret := []byte("0123456789abcdef")
	signed, err := signSession(secret, &Session{ID: "s", Email: "a@example.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := parseSession(secret, signed); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}
