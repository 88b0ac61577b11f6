package models

// UserProfile is the identity returned by the backend for the current token.
// The core only checks for its presence; fields are shown by the UI.
type UserProfile struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Registration is the payload for creating a new account.
// FullName is optional and omitted from the request when empty.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}
