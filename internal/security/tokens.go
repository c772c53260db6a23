package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or used
	// for the wrong purpose.
	ErrInvalidToken = errors.New("invalid token")
)

// Token purposes. A pending-login temp token must never pass as an access
// token and vice versa.
const (
	purposeAccess  = "access"
	purposePending = "pending_login"
)

// AccessClaims holds JWT claims for the bearer access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	Purpose   string `json:"purpose"`
}

// PendingClaims holds JWT claims for the temp token handed out when a login
// still needs a second factor.
type PendingClaims struct {
	jwt.RegisteredClaims
	LoginID string `json:"login_id"`
	Purpose string `json:"purpose"`
}

// TokenProvider issues and validates HS256-signed access and pending-login tokens.
type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	pendingTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given HMAC secret.
// issuer and audience are set on claims and validated on parse.
func NewTokenProvider(secret []byte, issuer, audience string, accessTTL, pendingTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		pendingTTL: pendingTTL,
	}
}

// IssueAccess issues an access token bound to the given session and user.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(sessionID, userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
		Purpose:   purposeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	return token, expiresAt, err
}

// ValidateAccess parses an access token and returns its session and user IDs.
func (p *TokenProvider) ValidateAccess(token string) (sessionID, userID string, err error) {
	var claims AccessClaims
	if err := p.parse(token, &claims); err != nil {
		return "", "", err
	}
	if claims.Purpose != purposeAccess || claims.SessionID == "" || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.Subject, nil
}

// IssuePending issues a short-lived temp token bound to a pending login.
func (p *TokenProvider) IssuePending(loginID, userID string) (string, error) {
	now := time.Now().UTC()
	claims := PendingClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.pendingTTL)),
		},
		LoginID: loginID,
		Purpose: purposePending,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// ValidatePending parses a temp token and returns the pending login and user IDs.
func (p *TokenProvider) ValidatePending(token string) (loginID, userID string, err error) {
	var claims PendingClaims
	if err := p.parse(token, &claims); err != nil {
		return "", "", err
	}
	if claims.Purpose != purposePending || claims.LoginID == "" || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.LoginID, claims.Subject, nil
}

func (p *TokenProvider) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithAudience(p.audience))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
