// Package models contains the data structures exchanged with the forum API.
package models

// User is the identity held by the session store. Token is only present for a
// logged-in identity; Password is only ever set on a freshly decoded register
// response and is stripped before the value leaves the auth client.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Clone returns a copy of u, or nil when u is nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /api/auth/login.
type LoginResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// Identity maps a login response onto the stored identity.
func (r *LoginResponse) Identity() *User {
	return &User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Token:    r.Token,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}
