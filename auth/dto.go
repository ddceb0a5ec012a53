package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72" example:"secret1"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"secret1"`
}

// UserView is the public projection returned alongside a token.
type UserView struct {
	ID    string `json:"id" example:"6f1c2b0e-8d0a-4e53-9f0a-2f7d1f4d0b11"`
	Name  string `json:"name" example:"alice"`
	Email string `json:"email" example:"alice@example.com"`
	Role  Role   `json:"role" example:"user"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  UserView `json:"user"`
}

func newUserView(i Identity) UserView {
	return UserView{ID: i.ID, Name: i.Username, Email: i.Email, Role: i.Role}
}
