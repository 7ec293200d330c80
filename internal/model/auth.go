package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims for a logged-in student.
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
