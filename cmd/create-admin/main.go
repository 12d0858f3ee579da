package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/database"
	"github.com/nbwschool/admission-backend/internal/logger"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/repository"
	"github.com/nbwschool/admission-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Only password hashing is used here, so no Redis client is needed.
	adminRepo := repository.NewAdminRepository(pool)
	adminService := service.NewAdminService(adminRepo, service.NewAuthService(cfg, nil))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		fmt.Println("Error: Name must be at least 2 characters")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// Role
	fmt.Printf("Enter Role [%s/%s] (default %s): ", model.RoleSuperAdmin, model.RoleStaff, model.RoleSuperAdmin)
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(roleStr)
	role := model.RoleSuperAdmin
	if roleStr != "" {
		r, err := model.ParseRole(roleStr)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		role = r
	}

	// ─── Create Admin ──────────────────────────────────────────────────
	admin, err := adminService.Create(ctx, model.CreateAdminRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     role,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Printf("Error: an admin with email %s already exists\n", email)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d, role: %s\n", admin.Name, admin.Email, admin.ID, admin.Role)
}
