package model

import "time"

// User is a registered account. The password digest never leaves the
// server; responses serialize everything else.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	Tasks      []Task     `gorm:"foreignKey:UserID" json:"-"`
	Categories []Category `gorm:"foreignKey:UserID" json:"-"`
}
