package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds the credentials typed at the desk.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DeskLoginResponse is returned when a desk is opened.
type DeskLoginResponse struct {
	DeskID    string    `json:"desk_id"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	Admin     Admin     `json:"admin"`
	IssuedAt  time.Time `json:"issued_at"`
}

// DeskClaims is the JWT payload binding a bearer to one open desk.
type DeskClaims struct {
	DeskID    string `json:"desk_id"`
	AdminID   int64  `json:"admin_id"`
	AdminName string `json:"admin_name"`
	jwt.RegisteredClaims
}
