package domain

import "time"

// User is a registered catalog user. Name is the login email.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
