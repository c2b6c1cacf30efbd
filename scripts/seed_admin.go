package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/khoahotran/careerfolio/pkg/auth"
)

func main() {
	fmt.Println("adding admin into database...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminLoginID := os.Getenv("ADMIN_LOGIN_ID")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminLoginID == "" || adminPassword == "" {
		log.Fatalf("ADMIN_EMAIL, ADMIN_LOGIN_ID and ADMIN_PASSWORD are required")
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var userID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, role)
			VALUES ('Administrator', $1, 'admin')
			ON CONFLICT (email) DO UPDATE SET role = 'admin'
			RETURNING idx`, adminEmail).Scan(&userID)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_credentials (user_idx, login_id, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_idx) DO UPDATE SET login_id = $2, password_hash = $3`,
			userID, adminLoginID, hash); err != nil {
			return fmt.Errorf("upsert credential: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_profile (user_idx, nickname) VALUES ($1, $2)
			ON CONFLICT (user_idx) DO NOTHING`, userID, adminLoginID); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("cannot add admin: %v", err)
	}

	fmt.Printf("added or updated admin '%s' successfully!\n", adminEmail)
}
