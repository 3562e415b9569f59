package domain

// SignupRequest is the body for POST /api/v1/auth/signup. Name is only
// used by the verify-first flow.
type SignupRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/v1/auth/signin. Role is accepted
// for client compatibility and ignored.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// VerifyAccountRequest carries the 6-digit code the user received by mail.
type VerifyAccountRequest struct {
	VerificationCode string `json:"verificationCode"`
}

// ForgotPasswordRequest is the body for POST /api/v1/user/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// UpdatePreferencesRequest replaces the stored preferences object entirely.
type UpdatePreferencesRequest struct {
	SelfDescription string   `json:"selfDescription"`
	Work            []string `json:"work"`
	Country         string   `json:"country"`
	ToolStack       []string `json:"toolStack"`
	Goals           []string `json:"goals"`
}

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}
