package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/botlab/robot-access/internal/core/domain"
)

// sessionClaims is the payload of a session token. The role is informative
// only; authorisation always reads the role from the stored account.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role,omitempty"`
}

func (s *AuthService) issueToken(acc *domain.Account) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.tokenTTL)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.Username,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: acc.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiry, nil
}

// parseToken checks signature and expiry and returns the claims.
func (s *AuthService) parseToken(token string) (*sessionClaims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", domain.ErrInvalidToken)
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnknownSubject
	}
	return claims, nil
}
