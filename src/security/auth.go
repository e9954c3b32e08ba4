package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates the bearer tokens protecting the API.
// Access is gated by a single API key whose bcrypt hash lives in config.
type AuthService struct {
	jwtSecret   string
	apiKeyHash  string
	tokenExpiry time.Duration
}

func NewAuthService(jwtSecret, apiKeyHash string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:   jwtSecret,
		apiKeyHash:  apiKeyHash,
		tokenExpiry: tokenExpiry,
	}
}

var ErrInvalidAPIKey = errors.New("invalid API key")

// CheckAPIKey compares a presented API key against the configured hash.
func (a *AuthService) CheckAPIKey(apiKey string) error {
	if a.apiKeyHash == "" {
		return errors.New("no API key configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.apiKeyHash), []byte(apiKey)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

func (a *AuthService) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": "api",
		"exp": time.Now().Add(a.tokenExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.jwtSecret))
}

func (a *AuthService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.jwtSecret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
