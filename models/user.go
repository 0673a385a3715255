package models

import "time"

// User is a registered account. The ID doubles as the local part of the
// user's address (<id>@domain) and is stored lowercase.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the subset of a user visible to other users.
type PublicUser struct {
	ID   string `json:"userId"`
	Name string `json:"name"`
}

// Public strips everything other users are not allowed to see.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name}
}
