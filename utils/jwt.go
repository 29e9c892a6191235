package utils

import (
	"fmt"
	"os"
)

// GetJWTSecret returns the HMAC secret used to validate access tokens.
func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}
