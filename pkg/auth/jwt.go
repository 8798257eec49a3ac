package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carry the resolved caller identity inside a signed session token.
type Claims struct {
	Sub      int64  `json:"sub"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
	Approved bool   `json:"approved"`
	jwt.RegisteredClaims
}

func NewAccessToken(sub int64, email string, admin, approved bool, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:      sub,
		Email:    email,
		Admin:    admin,
		Approved: approved,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"libris-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
