package user

// ProfileResponse is the authenticated user's own profile view
type ProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	AboutMe  string `json:"about_me"`
	Avatar   Avatar `json:"avatar"`
	IsActive bool   `json:"is_active"`
}

// ToProfileResponse converts a User model to its profile DTO
func (u *User) ToProfileResponse() *ProfileResponse {
	return &ProfileResponse{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		AboutMe:  u.AboutMe,
		Avatar:   u.Avatar,
		IsActive: u.IsActive,
	}
}
