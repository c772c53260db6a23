package auth

import (
	"sync"
	"time"
)

// PendingKind tags what a pending login is waiting for.
type PendingKind string

const (
	KindNeedsMFA      PendingKind = "needs_mfa"
	KindNeedsWebAuthn PendingKind = "needs_webauthn"
	KindNeedsSSO      PendingKind = "needs_sso"
)

// PendingLogin is a login that passed the first factor and is waiting for a
// second step. It is referenced by the temp token handed to the client and
// expires with it.
type PendingLogin struct {
	ID          string
	UserID      string
	Kind        PendingKind
	Fingerprint string
	UserAgent   string
	IP          string
	ExpiresAt   time.Time
}

// PendingStore holds pending logins with a TTL. Expired entries are dropped
// lazily on read.
type PendingStore struct {
	mu   sync.Mutex
	byID map[string]*PendingLogin
	ttl  time.Duration
	now  func() time.Time
}

// NewPendingStore returns an empty store whose entries live for ttl.
func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{
		byID: make(map[string]*PendingLogin),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores p, stamping its expiry from the store TTL.
func (s *PendingStore) Put(p *PendingLogin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ExpiresAt = s.now().Add(s.ttl)
	s.byID[p.ID] = p
}

// Get returns the pending login with the given ID, or nil if it does not
// exist or has expired. Expired entries are removed.
func (s *PendingStore) Get(id string) *PendingLogin {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil
	}
	if s.now().After(p.ExpiresAt) {
		delete(s.byID, id)
		return nil
	}
	return p
}

// Delete removes the pending login with the given ID.
func (s *PendingStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}
