package auth

// LoginParameters is the body of POST /api/auth/login/.
type LoginParameters struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParameters is the body of POST /api/auth/register/. The backend
// assigns the patient role to every self-registered account.
type RegisterParameters struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// TokenPair is what login and register return on success.
type TokenPair struct {
	Message string `json:"message,omitempty"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
