// Package token issues and verifies the HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrExpired   = errors.New("token has expired")
	ErrInvalid   = errors.New("invalid token")
	ErrWrongKind = errors.New("wrong token kind")
)

// Claims is the token payload. InstitutionID is empty for super admins.
type Claims struct {
	UserID        string     `json:"uid"`
	InstitutionID string     `json:"iid,omitempty"`
	Role          model.Role `json:"role"`
	Kind          Kind       `json:"kind"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the caller identity.
func (c *Claims) Principal() (model.Principal, error) {
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return model.Principal{}, ErrInvalid
	}
	p := model.Principal{UserID: uid, Role: c.Role}
	if c.InstitutionID != "" {
		iid, err := uuid.Parse(c.InstitutionID)
		if err != nil {
			return model.Principal{}, ErrInvalid
		}
		p.InstitutionID = &iid
	}
	if !p.Role.Valid() {
		return model.Principal{}, ErrInvalid
	}
	return p, nil
}

type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.SecretKey),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for p.
func (m *Manager) IssuePair(p model.Principal) (model.TokenPair, error) {
	now := m.now()

	access, accessExp, err := m.sign(p, KindAccess, now, m.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, refreshExp, err := m.sign(p, KindRefresh, now, m.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(p model.Principal, kind Kind, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		UserID: p.UserID.String(),
		Role:   p.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if p.InstitutionID != nil {
		claims.InstitutionID = p.InstitutionID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}

// Parse verifies signature, issuer, expiry and kind.
func (m *Manager) Parse(raw string, kind Kind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}
