package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hms/hms/internal/platform/apperr"
)

// Claims is the signed token payload: the identity plus the authorization
// snapshot computed at issuance time. Refresh re-signs this snapshot as-is,
// so a permission change only takes effect after the access token's short
// expiry or a fresh login.
type Claims struct {
	jwt.RegisteredClaims
	UserID              string   `json:"userId"`
	TenantID            string   `json:"tenantId"`
	Roles               []string `json:"roles"`
	Permissions         []string `json:"permissions"`
	Username            string   `json:"username"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Department          string   `json:"department,omitempty"`
	Status              string   `json:"status"`
	ForcePasswordChange bool     `json:"forcePasswordChange"`
}

// Identity converts verified claims back into a request identity.
func (c *Claims) Identity() *Identity {
	return &Identity{
		UserID:              c.UserID,
		TenantID:            c.TenantID,
		Roles:               c.Roles,
		Permissions:         c.Permissions,
		Username:            c.Username,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Department:          c.Department,
		Status:              c.Status,
		ForcePasswordChange: c.ForcePasswordChange,
	}
}

// TokenConfig carries the signing material for both token classes.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService issues and verifies the two classes of HMAC-signed,
// time-bounded tokens. There is no revocation list: a compromised token
// stays valid until its natural expiry, which is why access tokens are
// short-lived.
type TokenService struct {
	cfg TokenConfig
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueAccess signs a short-lived access token for the identity.
func (s *TokenService) IssueAccess(id *Identity) (string, error) {
	return s.issue(id, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for the identity.
func (s *TokenService) IssueRefresh(id *Identity) (string, error) {
	return s.issue(id, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *TokenService) issue(id *Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:              id.UserID,
		TenantID:            id.TenantID,
		Roles:               id.Roles,
		Permissions:         id.Permissions,
		Username:            id.Username,
		FirstName:           id.FirstName,
		LastName:            id.LastName,
		Department:          id.Department,
		Status:              id.Status,
		ForcePasswordChange: id.ForcePasswordChange,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, s.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, s.cfg.RefreshSecret)
}

func (s *TokenService) verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.KindInvalidToken, "Invalid or expired token", err)
	}
	return claims, nil
}
