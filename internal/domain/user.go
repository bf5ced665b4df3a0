package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Admin accounts are seeded at startup and never deleted.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Address      string    `json:"address"`
	PinCode      string    `json:"pin_code"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterUserDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	FullName string `json:"fullName" binding:"required,max=100"`
	Address  string `json:"address" binding:"required"`
	PinCode  string `json:"pinCode" binding:"required,max=10"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token string `json:"token"`
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type UpdateUserDTO struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
