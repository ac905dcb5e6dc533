package models

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // "salt:hash", never returned in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the request structure for creating a new account
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the request structure for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the response structure for user data
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToResponse converts a User model to a UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}
