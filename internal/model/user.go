package model

// User represents a user in the database.
type User struct {
	ID       int64
	Name     string
	Email    string
	Password string // bcrypt hash
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"pass" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
