package domain

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:1024;not null" json:"-"`
	Name         *string   `gorm:"size:255" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection returned to clients; it never carries the password hash.
type PublicUser struct {
	ID    uint    `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
