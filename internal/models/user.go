// internal/models/user.go
package models

// User is the authenticated account as returned by the backend.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session pairs a user with the bearer token issued at login.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by login and signup.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
