package auth_service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/parlour/utils"
)

// Claims carried by an admin session token.
type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(adminID uuid.UUID, username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		AdminID:  adminID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken checks signature, algorithm and expiry and returns the claims.
// Every failure is reported as utils.ErrUnauthorized.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, utils.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}

	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", utils.ErrUnauthorized)
	}
	if _, err := uuid.Parse(claims.AdminID); err != nil {
		return nil, fmt.Errorf("%w: invalid admin_id", utils.ErrUnauthorized)
	}
	return claims, nil
}
