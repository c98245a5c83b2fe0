package main

import (
	"fmt"
	"os"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"

	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config-dir", "", "directory with userdir.yaml")
	userID := pflag.Int64("user", 1, "user id")
	roleName := pflag.String("role", "ADMIN", "PATIENT|DOCTOR|RECEPTIONIST|ADMIN")
	pflag.Parse()

	role, err := domain.ParseRole(*roleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Загружаем конфигурацию (тот же способ, что и в сервисе)
	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTService(cfg.JWT).GenerateToken(*userID, role.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User ID: %d\n", *userID)
	fmt.Printf("Role:    %s\n", role)
	fmt.Printf("TTL:     %s\n", cfg.JWT.TTL)
	fmt.Printf("\nToken:\n%s\n", token)
	fmt.Printf("\nVerify through the service:\n")
	fmt.Printf("user-client --action verify_token --data '{\"token\":\"%s\"}'\n", token)
}
