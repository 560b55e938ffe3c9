package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/model"
)

// Claims is the bearer token payload identifying a caller.
type Claims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthService validates caller tokens. Tokens are issued by the identity
// layer in front of this service; IssueToken exists for dev seeding and tests.
type AuthService struct {
	jwtSecret []byte
	jwtIssuer string
}

func NewAuthService(jwtSecret, jwtIssuer string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		jwtIssuer: jwtIssuer,
	}
}

// IssueToken signs an HS256 token for caller that expires after ttl.
func (s *AuthService) IssueToken(caller model.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     caller.Role,
		TenantID: caller.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the caller.
func (s *AuthService) ValidateToken(raw string) (*model.Caller, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return nil, apperr.Wrap(apperr.EUnauthorized, "validate token", msg, err)
	}

	if claims.Subject == "" || claims.Role == "" {
		return nil, apperr.New(apperr.EUnauthorized, "validate token", "token is missing subject or role")
	}

	return &model.Caller{
		UserID:   claims.Subject,
		Role:     claims.Role,
		TenantID: claims.TenantID,
	}, nil
}
