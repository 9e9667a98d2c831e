package model

import "github.com/golang-jwt/jwt/v5"

// MemberClaims are the JWT claims for an authenticated member. Email is
// the identity the submission pipeline falls back to when a catalog has
// no explicit email question.
type MemberClaims struct {
	MemberID string `json:"memberId"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for member login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token    string `json:"token"`
	MemberID string `json:"memberId"`
	Email    string `json:"email"`
}
