package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, `DROP TABLE IF EXISTS users CASCADE`); err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			last_login TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_password_reset TIMESTAMPTZ,
			google_registered BOOLEAN NOT NULL DEFAULT FALSE,
			avatar_id TEXT,
			avatar_url TEXT,
			preferences JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	// Development account: dev@flowva.app / Abcdef1!
	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdef1!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	query := `
		INSERT INTO users (email, password, verified)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (email) DO NOTHING
	`
	if _, err := conn.Exec(ctx, query, "dev@flowva.app", string(hash)); err != nil {
		return fmt.Errorf("failed to seed dev user: %w", err)
	}
	return nil
}
