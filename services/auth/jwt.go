package auth

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "plan-payment-api/models"
)

const AccessTokenDuration = 15 * time.Minute

var (
    ErrTokenExpired = errors.New("token expired")
    ErrInvalidToken = errors.New("invalid token")
)

type JWTService struct {
    secretKey []byte
    issuer    string
}

// Claims carries the paying user in the registered "sub" claim.
type Claims struct {
    Email string `json:"email,omitempty"`
    jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string) *JWTService {
    return &JWTService{
        secretKey: []byte(secretKey),
        issuer:    issuer,
    }
}

// GenerateToken signs an HS256 access token for userID.
func (j *JWTService) GenerateToken(userID, email string, duration time.Duration) (string, error) {
    now := time.Now()
    claims := Claims{
        Email: email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   userID,
            Issuer:    j.issuer,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
            NotBefore: jwt.NewNumericDate(now),
        },
    }

    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return token.SignedString(j.secretKey)
}

func (j *JWTService) ValidateToken(tokenString string) (*models.AuthUser, error) {
    opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
    if j.issuer != "" {
        opts = append(opts, jwt.WithIssuer(j.issuer))
    }

    token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
        }
        return j.secretKey, nil
    }, opts...)
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrInvalidToken
    }

    claims, ok := token.Claims.(*Claims)
    if !ok || !token.Valid || claims.Subject == "" {
        return nil, ErrInvalidToken
    }

    return &models.AuthUser{
        UserID: claims.Subject,
        Email:  claims.Email,
    }, nil
}
