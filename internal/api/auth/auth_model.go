package auth

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Principal is the transient, verified representation of who is logging in.
// It exists for the duration of one login attempt and is discarded once the
// pipeline completes; the password hash never travels further than token
// issuance.
type Principal struct {
	Email        string
	PasswordHash string
}
