package middleware

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strings"

    "plan-payment-api/models"
    "plan-payment-api/services/auth"
    "plan-payment-api/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

type TokenValidator interface {
    ValidateToken(token string) (*models.AuthUser, error)
}

// AuthMiddleware requires a valid "Bearer <token>" header and puts the
// caller into the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            if r.Method == http.MethodOptions {
                next.ServeHTTP(w, r)
                return
            }

            authHeader := r.Header.Get("Authorization")
            if authHeader == "" {
                log.Printf("Missing Authorization header from %s", r.RemoteAddr)
                utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing authorization header")
                return
            }

            parts := strings.Split(authHeader, " ")
            if len(parts) != 2 || parts[0] != "Bearer" {
                log.Printf("Invalid Authorization header format from %s", r.RemoteAddr)
                utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header format")
                return
            }

            user, err := validator.ValidateToken(parts[1])
            if err != nil {
                log.Printf("Token validation failed from %s: %v", r.RemoteAddr, err)

                message := "Authentication failed"
                switch {
                case errors.Is(err, auth.ErrTokenExpired):
                    message = "Token expired"
                case errors.Is(err, auth.ErrInvalidToken):
                    message = "Invalid token"
                }

                utils.SendErrorResponse(w, http.StatusUnauthorized, message)
                return
            }

            ctx := context.WithValue(r.Context(), UserContextKey, user)
            next.ServeHTTP(w, r.WithContext(ctx))
        })
    }
}

// GetUserFromContext returns the authenticated caller, or nil when the
// request did not pass through AuthMiddleware.
func GetUserFromContext(ctx context.Context) *models.AuthUser {
    user, _ := ctx.Value(UserContextKey).(*models.AuthUser)
    return user
}
