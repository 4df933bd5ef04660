package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nuvemflow/orderdesk-backend/internal/users"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/db"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/security"
)

const generatedPasswordLength = 16

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "create-user"})

	_ = godotenv.Load()

	email := flag.String("email", "", "operator email (required)")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(enums.UserRoleUser), "role: admin|manager|user")
	password := flag.String("password", "", "password; a temporary one is generated when empty")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}
	parsedRole, err := enums.ParseUserRole(strings.ToLower(strings.TrimSpace(*role)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "create-user",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	generated := false
	plain := *password
	if plain == "" {
		plain, err = security.GenerateTempPassword(generatedPasswordLength)
		requireResource(ctx, logg, "password generator", err)
		generated = true
	}

	hash, err := security.HashPassword(plain, cfg.Password)
	requireResource(ctx, logg, "password hash", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = strings.SplitN(strings.TrimSpace(*email), "@", 2)[0]
	}

	user, err := users.NewRepository(dbClient.DB()).Create(ctx, users.CreateUserDTO{
		Email:        *email,
		PasswordHash: hash,
		Name:         displayName,
		Role:         parsedRole,
	})
	if pkgerrors.IsUniqueViolation(err) {
		fmt.Fprintf(os.Stderr, "user %s already exists\n", *email)
		os.Exit(1)
	}
	requireResource(ctx, logg, "user insert", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
	}), "operator created")

	if generated {
		fmt.Printf("temporary password for %s: %s\n", user.Email, plain)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
