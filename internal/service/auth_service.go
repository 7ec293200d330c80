package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"prepwise/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService issues and validates user tokens. Real account storage is
// the hosted auth provider's job; this service only covers the demo
// credentials used in local and staging environments.
type AuthService struct {
	demoEmail    string
	demoPassword string
	jwtSecret    []byte
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret string) *AuthService {
	email := os.Getenv("DEMO_EMAIL")
	if email == "" {
		email = "student@example.com"
	}
	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "password123"
	}

	return &AuthService{
		demoEmail:    email,
		demoPassword: password,
		jwtSecret:    []byte(jwtSecret),
	}
}

// Login validates credentials and returns a token for the user.
func (s *AuthService) Login(email, password string) (*model.LoginResponse, error) {
	if email != s.demoEmail || password != s.demoPassword {
		return nil, ErrInvalidCredentials
	}

	userID := "user_" + uuid.New().String()[:8]

	claims := &model.UserClaims{
		UserID: userID,
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
		Token:  tokenString,
		UserID: userID,
	}, nil
}

// ValidateUserToken parses and verifies a user token.
func (s *AuthService) ValidateUserToken(tokenString string) (*model.UserClaims, error) {
	claims := &model.UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
