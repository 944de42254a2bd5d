package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "caretrip"

// TokenType различает access и refresh токены
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims содержит payload JWT токена
type Claims struct {
	SubjectID        uuid.UUID   `json:"sid"`
	Role             domain.Role `json:"role"`
	Name             string      `json:"name,omitempty"`
	ManagementCodeID *uuid.UUID  `json:"mcid,omitempty"`
	SessionID        *uuid.UUID  `json:"sess,omitempty"`
	Type             TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

// Principal восстанавливает субъект из claims
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{
		SubjectID:        c.SubjectID,
		Role:             c.Role,
		Name:             c.Name,
		ManagementCodeID: c.ManagementCodeID,
		SessionID:        c.SessionID,
	}
}

// TokenService управляет созданием и валидацией JWT токенов
type TokenService struct {
	secretKey     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// TokenPair содержит access и refresh токены
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// NewTokenService создает новый сервис для работы с токенами
func NewTokenService(secretKey string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		secretKey:     secretKey,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// RefreshExpiry возвращает срок жизни refresh токена (и сессии водителя)
func (ts *TokenService) RefreshExpiry() time.Duration {
	return ts.refreshExpiry
}

// GenerateTokenPair генерирует пару access и refresh токенов
func (ts *TokenService) GenerateTokenPair(p domain.Principal) (*TokenPair, error) {
	accessToken, expiresAt, err := ts.generateToken(p, TokenTypeAccess, ts.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := ts.generateToken(p, TokenTypeRefresh, ts.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// generateToken генерирует JWT токен
// jti делает каждый токен уникальным, чтобы хеши в БД не совпадали
func (ts *TokenService) generateToken(p domain.Principal, typ TokenType, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)

	claims := &Claims{
		SubjectID:        p.SubjectID,
		Role:             p.Role,
		Name:             p.Name,
		ManagementCodeID: p.ManagementCodeID,
		SessionID:        p.SessionID,
		Type:             typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.SubjectID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ts.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken валидирует JWT токен и возвращает claims
func (ts *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.secretKey), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// ValidateAccessToken валидирует токен и проверяет, что это access токен
func (ts *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return ts.validateTyped(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken валидирует токен и проверяет, что это refresh токен
func (ts *TokenService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return ts.validateTyped(tokenString, TokenTypeRefresh)
}

func (ts *TokenService) validateTyped(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := ts.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// HashToken создает SHA-256 хеш токена для хранения в БД
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
