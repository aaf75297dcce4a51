package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = 24 * time.Hour

var (
	ErrInvalidConfig = errors.New("invalid session config")
	ErrInvalidToken  = errors.New("invalid session token")
)

// Claims identify the signed-in account. Absence of a valid cookie means
// logged-out; there is no server-side session state to revoke.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (claims *Claims) UserID() string {
	return claims.Subject
}

// Config carries the signing parameters for session tokens.
type Config struct {
	SigningKey []byte
	Issuer     string
	CookieName string
	TTL        time.Duration
}

// Manager issues and validates HS256 session tokens.
type Manager struct {
	signingKey []byte
	issuer     string
	cookieName string
	ttl        time.Duration
	nowFn      func() time.Time
}

// New wires a Manager from config.
func New(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("%w: signing key is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		return nil, fmt.Errorf("%w: cookie name is required", ErrInvalidConfig)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		signingKey: cfg.SigningKey,
		issuer:     cfg.Issuer,
		cookieName: cfg.CookieName,
		ttl:        ttl,
		nowFn:      time.Now,
	}, nil
}

// CookieName returns the configured cookie name.
func (manager *Manager) CookieName() string {
	return manager.cookieName
}

// TTL returns the configured token lifetime.
func (manager *Manager) TTL() time.Duration {
	return manager.ttl
}

// Issue signs a token for the user and returns it with its expiry.
func (manager *Manager) Issue(userID string, email string, role string) (string, time.Time, error) {
	now := manager.nowFn().UTC()
	expiresAt := now.Add(manager.ttl)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    manager.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses and verifies a token string.
func (manager *Manager) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return manager.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(manager.issuer),
		jwt.WithTimeFunc(func() time.Time { return manager.nowFn() }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GinMiddleware resolves the session cookie into claims stored under
// contextKey, aborting unauthenticated requests with 401.
func (manager *Manager) GinMiddleware(contextKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, err := ctx.Cookie(manager.cookieName)
		if err != nil || raw == "" {
			abortUnauthorized(ctx)
			return
		}
		claims, err := manager.Validate(raw)
		if err != nil {
			abortUnauthorized(ctx)
			return
		}
		ctx.Set(contextKey, claims)
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "missing session",
		},
	})
}
