package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/auth-microservice/config"
	"github.com/oksasatya/auth-microservice/internal/domain/entity"
	"github.com/oksasatya/auth-microservice/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "admin"
	name := "Administrator"
	email := "admin@gmail.com"
	password := "Admin123!"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Seeded account is created verified so it can log in immediately.
	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, name, email, password_hash, role, is_verified, verification_code)
		VALUES ($1, $2, $3, $4, $5, TRUE, NULL)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, username, name, email, hash, string(entity.RoleForUsername(username))).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)
}
