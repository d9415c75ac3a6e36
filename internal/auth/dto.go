package auth

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	AboutMe  string `json:"about_me,omitempty"`
}

// LoginRequest represents the request body for login. Username also
// accepts the account email.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the successful login payload
type LoginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Token    string `json:"token"`
}
