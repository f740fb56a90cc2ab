package model

import "github.com/golang-jwt/jwt/v5"

// FacilitatorClaims are JWT claims for the facilitator/admin surface
type FacilitatorClaims struct {
	FacilitatorID string `json:"facilitatorId"`
	jwt.RegisteredClaims
}

// ParticipantClaims are JWT claims for anonymous participant identities
type ParticipantClaims struct {
	Subject string `json:"sub_id"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for facilitator login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token         string `json:"token"`
	FacilitatorID string `json:"facilitatorId"`
}

// AnonymousResponse is returned when an anonymous identity is issued
type AnonymousResponse struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
}
