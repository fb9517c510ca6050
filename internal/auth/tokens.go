package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vidtube/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	issuer   = "vidtube-api"
	audience = "vidtube-client"

	kindAccess  = "access"
	kindRefresh = "refresh"

	blacklistPrefix = "blacklist:"
)

// Claims is the verified content of a token.
type Claims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// TokenConfig configures signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenManager signs access and refresh tokens and tracks revoked access tokens in Redis.
type TokenManager struct {
	cfg TokenConfig
	rdb *redis.Client
	now func() time.Time
}

// NewTokenManager creates a TokenManager. rdb may be nil, which disables revocation checks.
func NewTokenManager(cfg TokenConfig, rdb *redis.Client) *TokenManager {
	return &TokenManager{cfg: cfg, rdb: rdb, now: time.Now}
}

// IssueAccessToken signs a short-lived token carrying the user's identity.
func (m *TokenManager) IssueAccessToken(user *models.User) (string, error) {
	return m.sign(user, kindAccess, m.cfg.AccessSecret, m.cfg.AccessTTL, jwt.MapClaims{
		"username": user.Username,
		"email":    user.Email,
		"fullName": user.FullName,
	})
}

// IssueRefreshToken signs a long-lived token that only carries the subject.
func (m *TokenManager) IssueRefreshToken(user *models.User) (string, error) {
	return m.sign(user, kindRefresh, m.cfg.RefreshSecret, m.cfg.RefreshTTL, jwt.MapClaims{})
}

func (m *TokenManager) sign(user *models.User, kind, secret string, ttl time.Duration, claims jwt.MapClaims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%s token secret not configured", kind)
	}

	now := m.now()
	claims["sub"] = strconv.FormatUint(uint64(user.ID), 10)
	claims["iss"] = issuer
	claims["aud"] = audience
	claims["typ"] = kind
	claims["exp"] = now.Add(ttl).Unix()
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAccessToken validates an access token and rejects revoked ones.
func (m *TokenManager) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString, kindAccess, m.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	if m.rdb != nil && claims.JTI != "" {
		revoked, err := m.rdb.Exists(ctx, blacklistPrefix+claims.JTI).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return claims, nil
}

// VerifyRefreshToken validates a refresh token's signature and claims.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, kindRefresh, m.cfg.RefreshSecret)
}

// Revoke blacklists an access token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err()
}

func (m *TokenManager) parse(tokenString, kind, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Unauthorized request")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	if typ, _ := mapClaims["typ"].(string); typ != kind {
		return nil, models.NewUnauthorizedError("Invalid token type")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	claims := &Claims{UserID: uint(userID)}
	claims.Username, _ = mapClaims["username"].(string)
	claims.JTI, _ = mapClaims["jti"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
