package entity

import (
	"strings"
	"time"
)

// Role is the authorization role carried in issued tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RoleForUsername derives the role assigned at registration: any username
// containing the literal substring "admin" (case-sensitive) gets RoleAdmin.
// This mirrors the upstream rule and is not a security boundary; token
// consumers must not treat the role claim as proof of operator intent.
func RoleForUsername(username string) Role {
	if strings.Contains(username, "admin") {
		return RoleAdmin
	}
	return RoleUser
}

// User is the aggregate root for the account domain.
// PasswordHash is a bcrypt hash; plaintext is never stored or logged.
// VerificationCode is present only while IsVerified is false and is cleared
// exactly once when verification succeeds.
type User struct {
	ID               string
	Username         string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	IsVerified       bool
	VerificationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
