package models

// AuthUser is the caller identified by a bearer token.
type AuthUser struct {
    UserID string `json:"userId"`
    Email  string `json:"email,omitempty"`
}
