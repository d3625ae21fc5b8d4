package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/strata-api/internal/config"
	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/services"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Println("Usage: create-user <email> <name> <password>")
		os.Exit(1)
	}

	email, name, password := os.Args[1], os.Args[2], os.Args[3]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	user, err := services.NewUserService(db).Create(ctx, email, name, password)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.UUID)
}
