package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service tokens authenticate the monitoring service against the internal
// endpoints. They share an HS256 secret; user identity is never carried here.

var internalSecret string

func InitInternalSecret() error {
	internalSecret = os.Getenv("INTERNAL_TOKEN_SECRET")
	if internalSecret == "" {
		return fmt.Errorf("INTERNAL_TOKEN_SECRET environment variable is not set")
	}
	return nil
}

func GenerateServiceToken(service string) (string, error) {
	claims := jwt.MapClaims{
		"service": service,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(internalSecret))
}

func VerifyServiceToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(internalSecret), nil
	})

	if err != nil || !token.Valid {
		return "", fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return "", fmt.Errorf("Invalid token claims")
	}

	service, ok := claims["service"].(string)

	if !ok || service == "" {
		return "", fmt.Errorf("Missing service claim")
	}

	return service, nil
}
