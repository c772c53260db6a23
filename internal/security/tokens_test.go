package security

import (
	"testing"
	"time"
)

func newTestProvider() *TokenProvider {
	return NewTokenProvider([]byte("test-secret"), "mockforge", "mockforge-api", time.Hour, 5*time.Minute)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	p := newTestProvider()
	token, expiresAt, err := p.IssueAccess("sess-1", "user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiresAt should be in the future")
	}
	sessionID, userID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if sessionID != "sess-1" || userID != "user-1" {
		t.Errorf("got session=%q user=%q", sessionID, userID)
	}
}

func TestPendingTokenRoundTrip(t *testing.T) {
	p := newTestProvider()
	token, err := p.IssuePending("login-1", "user-1")
	if err != nil {
		t.Fatalf("IssuePending: %v", err)
	}
	loginID, userID, err := p.ValidatePending(token)
	if err != nil {
		t.Fatalf("ValidatePending: %v", err)
	}
	if loginID != "login-1" || userID != "user-1" {
		t.Errorf("got login=%q user=%q", loginID, userID)
	}
}

func TestPurposeConfusionRejected(t *testing.T) {
	p := newTestProvider()
	access, _, err := p.IssueAccess("sess-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	pending, err := p.IssuePending("login-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.ValidatePending(access); err == nil {
		t.Error("access token must not validate as pending token")
	}
	if _, _, err := p.ValidateAccess(pending); err == nil {
		t.Error("pending token must not validate as access token")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	p := newTestProvider()
	other := NewTokenProvider([]byte("other-secret"), "mockforge", "mockforge-api", time.Hour, time.Minute)
	token, _, err := p.IssueAccess("sess-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := other.ValidateAccess(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	p := NewTokenProvider([]byte("test-secret"), "mockforge", "mockforge-api", -time.Minute, -time.Minute)
	token, _, err := p.IssueAccess("sess-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.ValidateAccess(token); err == nil {
		t.Error("expired token must be rejected")
	}
}
