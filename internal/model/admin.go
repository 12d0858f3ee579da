package model

import "time"

// Admin represents a school staff account.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token       string   `json:"token"`
	ExpiresAt   int64    `json:"expires_at"`
	Admin       Admin    `json:"admin"`
	Permissions []string `json:"permissions"`
}

// AdminProfile is returned by the "me" endpoint.
type AdminProfile struct {
	Admin       Admin    `json:"admin"`
	Permissions []string `json:"permissions"`
}

// CreateAdminRequest is the payload for creating a staff account.
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=super_admin staff"`
}

// UpdateAdminRequest is the payload for updating a staff account.
type UpdateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=super_admin staff"`
}

// ChangePasswordRequest is the payload for an admin changing their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=6,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128,nefield=CurrentPassword"`
}
