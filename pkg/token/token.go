package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Manager issues and verifies HS256 access/refresh token pairs for readers.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type Claims struct {
	ReaderID string `json:"reader_id"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *Manager) IssuePair(readerID string) (*Pair, error) {
	now := time.Now()

	accessToken, err := m.sign(readerID, "access", m.accessSecret, now, m.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := m.sign(readerID, "refresh", m.refreshSecret, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, "access", m.accessSecret)
}

// Refresh verifies a refresh token and issues a fresh pair.
func (m *Manager) Refresh(refreshToken string) (*Pair, error) {
	claims, err := m.parse(refreshToken, "refresh", m.refreshSecret)
	if err != nil {
		return nil, err
	}
	return m.IssuePair(claims.ReaderID)
}

func (m *Manager) sign(readerID, subject string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		ReaderID: readerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(tokenStr, subject string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject != subject || claims.ReaderID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
