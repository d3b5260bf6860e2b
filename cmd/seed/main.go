// Command seed inserts a set of demo accounts into the database so a fresh
// environment has users to chat with. Running it twice is safe; existing
// accounts are left untouched.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dmline/internal/app/db"
	"dmline/internal/app/store"
	"dmline/internal/configs"
	"dmline/internal/pkg/logx"
)

// seedPassword is the shared password for every demo account.
const seedPassword = "password123"

type seedUser struct {
	email string
	name  string
}

var seedUsers = []seedUser{
	{email: "alice@example.com", name: "Alice Johnson"},
	{email: "bob@example.com", name: "Bob Smith"},
	{email: "charlie@example.com", name: "Charlie Brown"},
	{email: "diana@example.com", name: "Diana Prince"},
}

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	users := store.NewUsers(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logx.Fatal(err, "Failed to hash seed password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for _, su := range seedUsers {
		_, err := users.Create(ctx, su.email, su.name, string(hash))
		switch {
		case err == nil:
			created++
			logx.Info("Seeded user", "email", su.email)
		case db.IsUniqueViolation(err):
			logx.Info("User already exists, skipping", "email", su.email)
		default:
			logx.Fatal(err, "Failed to seed user", "email", su.email)
		}
	}

	logx.Info("Seeding finished", "created", created, "total", len(seedUsers))
}
