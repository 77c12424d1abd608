// Package auth establishes the principal session; everything beyond login
// and logout belongs to the surrounding asset-register application.
package auth

import "time"

// User mirrors the upstream users table.
type User struct {
	ID           int64
	Username     string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
