package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID      string `json:"uid"`
	Email       string `json:"email,omitempty"`
	IsCompany   bool   `json:"is_company"`
	CompanyName string `json:"company_name,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) Session() Session {
	return Session{
		UserID:      c.UserID,
		Email:       c.Email,
		IsCompany:   c.IsCompany,
		CompanyName: c.CompanyName,
	}
}

func GenerateToken(secret string, session Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      session.UserID,
		Email:       session.Email,
		IsCompany:   session.IsCompany,
		CompanyName: session.CompanyName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
