// Package models holds the persistent entities of the account service.
package models

import "time"

// User is a single account record. ID is assigned by the store on insert and
// never changes afterwards. PasswordHash always holds a bcrypt hash, never a
// plaintext password. BadgeNumber uses 0 as "unset", mirroring the optional
// field of the source document model.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Organization string
	BadgeNumber  int32
	CreatedAt    time.Time
}

// Redacted returns a copy of the user with the password hash withheld.
// Every value handed back to a caller goes through this.
func (u *User) Redacted() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
