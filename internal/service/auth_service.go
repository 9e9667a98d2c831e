package service

import (
	"errors"
	"strings"
	"time"

	"memberportal/internal/config"
	"memberportal/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles member authentication. The portal is the only
// consumer of the identity: all the engine ever needs is "is there an
// authenticated member, and which email does it expose".
type AuthService struct {
	memberPassword string
	jwtSecret      []byte
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		memberPassword: cfg.MemberPassword,
		jwtSecret:      []byte(cfg.JWTSecret),
	}
}

// Login validates credentials and issues a member token carrying the
// email claim the submission pipeline falls back to.
func (s *AuthService) Login(email, password string) (*model.LoginResponse, error) {
	if email == "" || !strings.Contains(email, "@") || password != s.memberPassword {
		return nil, ErrInvalidCredentials
	}

	memberID := "m_" + uuid.New().String()[:8]

	claims := &model.MemberClaims{
		MemberID: memberID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    tokenString,
		MemberID: memberID,
		Email:    email,
	}, nil
}

// ValidateToken validates a member JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.MemberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.MemberClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.MemberClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
