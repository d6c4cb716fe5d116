package auth

import (
	"errors"
	"time"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrMissingUserID = errors.New("missing user_id in claims")
	ErrInvalidRole   = errors.New("invalid role in claims")
)

// Claims represents custom JWT claims carrying the acting user's identity
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken creates a signed token for the given user and role
func (s *JWTService) GenerateToken(userID uuid.UUID, username string, role identity.Role) (string, time.Time, error) {
	if !role.IsValid() {
		return "", time.Time{}, ErrInvalidRole
	}

	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   userID.String(),
		Username: username,
		Role:     role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and validates a token, returning the acting user
func (s *JWTService) ValidateToken(tokenString string) (identity.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.Actor{}, ErrExpiredToken
		}
		return identity.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Actor{}, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return identity.Actor{}, ErrMissingUserID
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return identity.Actor{}, ErrInvalidClaims
	}

	role := identity.Role(claims.Role)
	if !role.IsValid() {
		return identity.Actor{}, ErrInvalidRole
	}

	return identity.NewActor(userID, role), nil
}
