package dto

import "github.com/spendlog/spendlog/internal/model"

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenResponse carries a fresh access/refresh pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserResponse is a user as listed to staff.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// ToUserResponses converts users for the staff listing.
func ToUserResponses(users []*model.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			IsStaff:  u.IsStaff,
		}
	}
	return out
}
