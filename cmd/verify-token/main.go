package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"

	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config-dir", "", "directory with userdir.yaml")
	token := pflag.String("token", "", "JWT token to verify")
	pflag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Error: --token flag is required")
		fmt.Fprintln(os.Stderr, "Usage: verify-token --token=<JWT_TOKEN>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	claims, err := auth.NewJWTService(cfg.JWT).ValidateToken(*token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired"
		}
		fmt.Printf("Token %s: %v\n", reason, err)
		os.Exit(1)
	}

	fmt.Printf("Token is VALID\n\n")
	fmt.Printf("  User ID:    %d\n", claims.UserID)
	fmt.Printf("  Role:       %s\n", claims.Role)
	fmt.Printf("  Issuer:     %s\n", claims.Issuer)
	fmt.Printf("  Issued At:  %s\n", claims.IssuedAt.Time)
	fmt.Printf("  Expires At: %s\n", claims.ExpiresAt.Time)
}
