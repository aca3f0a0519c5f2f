package utils

import (
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	godotenv.Load()
}

// Getenv returns the value of the environment variable, or fallback if unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func JWTSecret() string {
	return os.Getenv("JWT_SECRET")
}
