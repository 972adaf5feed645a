package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
)

// RefreshCookieName là tên cookie chứa refresh token.
const RefreshCookieName = "jwt"

var validMethods = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

type AccessClaims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func GenerateAccessToken(secret string, ttl time.Duration, userID uuid.UUID, role models.Role) (string, error) {
	claims := AccessClaims{
		UserID:           userID.String(),
		Role:             role,
		RegisteredClaims: registered(ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, errors.Wrap(err, "signing access token")
}

func GenerateRefreshToken(secret string, ttl time.Duration, username string) (string, error) {
	claims := RefreshClaims{
		Username:         username,
		RegisteredClaims: registered(ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, errors.Wrap(err, "signing refresh token")
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
}

// VerifyAccessToken trả về claims kể cả khi token đã hết hạn (kèm lỗi), để
// caller có thể phân biệt bằng IsTokenExpired.
func VerifyAccessToken(secret, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret), validMethods)
	if err != nil {
		return claims, err
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, errors.New("token has invalid userId claim")
	}
	return claims, nil
}

func VerifyRefreshToken(secret, tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret), validMethods); err != nil {
		return nil, err
	}
	return claims, nil
}

// IsTokenExpired: chữ ký hợp lệ nhưng đã quá hạn.
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
