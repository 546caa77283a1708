package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     string
	resetSecret   string
	tokenDuration time.Duration
	refreshExp    time.Duration
	resetExp      time.Duration
}

func NewJWTManager(secretKey, resetSecret string, tokenDuration, refreshExp, resetExp time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		resetSecret:   resetSecret,
		tokenDuration: tokenDuration,
		refreshExp:    refreshExp,
		resetExp:      resetExp,
	}
}

func (m *JWTManager) GenerateToken(userID, email, role string) (string, error) {
	return m.sign(userID, email, role, m.secretKey, m.tokenDuration)
}

func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.sign(userID, "", "", m.secretKey, m.refreshExp)
}

// GenerateResetToken issues a short-lived password-reset token signed with a
// dedicated secret, so it can never pass as an access token.
func (m *JWTManager) GenerateResetToken(userID string) (string, error) {
	return m.sign(userID, "", "", m.resetSecret, m.resetExp)
}

func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.secretKey)
}

func (m *JWTManager) ValidateResetToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.resetSecret)
}

func (m *JWTManager) GetTokenDuration() time.Duration {
	return m.tokenDuration
}

func (m *JWTManager) sign(userID, email, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (m *JWTManager) parse(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
