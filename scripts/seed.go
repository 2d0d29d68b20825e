//go:build ignore

package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/database"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/pkg/config"
	"github.com/mhalder/docshare/pkg/util"
)

// Seeds the demo accounts. Wipes the users table first, so only run this
// against a development database.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := db.Exec("DELETE FROM users").Error; err != nil {
		log.Fatalf("failed to clear users: %v", err)
	}

	seedUsers := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Admin User", "admin@example.com", "admin123", models.RoleAdmin},
		{"Regular User", "user@example.com", "user123", models.RoleUser},
		{"Manager User", "manager@example.com", "manager123", models.RoleUser},
	}

	for _, u := range seedUsers {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", u.email, err)
		}

		user := models.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("failed to create %s: %v", u.email, err)
		}

		fmt.Printf("created %s (%s / %s)\n", u.role, u.email, u.password)
	}

	fmt.Println("seed complete")
}
