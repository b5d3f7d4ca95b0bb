package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and the admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.DB); err == nil {
			return fmt.Errorf("database %s already exists", cfg.DB)
		}
		password, err := initDatabase(cmd.Context(), cfg.DB, cfg.Admin.Email)
		if err != nil {
			return err
		}
		printInitResult(cmd.OutOrStdout(), cfg.DB, cfg.Admin.Email, password)
		return nil
	},
}

// initDatabase creates a new database, applies migrations and creates the
// admin user. It returns the generated admin password. On failure the
// database is closed and its files are removed.
func initDatabase(ctx context.Context, path, adminEmail string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", err
	}

	password, err := setupDatabase(ctx, database, adminEmail)
	if cerr := database.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing database: %w", cerr)
	}
	if err != nil {
		removeDatabase(path)
		return "", err
	}
	return password, nil
}

func setupDatabase(ctx context.Context, database *sql.DB, adminEmail string) (string, error) {
	if err := db.Migrate(database); err != nil {
		return "", err
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	_, err = store.New(database).CreateUser(ctx, &model.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		IsAdmin:      true,
	})
	if err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// removeDatabase deletes a SQLite database along with its WAL and shared
// memory files.
func removeDatabase(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Error("removing database file", "path", p, "error", err)
		}
	}
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, email, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Migrations applied.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Email:    %s\n", email)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
