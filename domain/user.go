// Package domain contains core concepts of the chat system.
// This file defines the User principal owned by the identity provider.
package domain

import "time"

// User is the authenticated principal. The coordination engine only
// reads the username; creation and mutation belong to the auth layer.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
