package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
)

func runInit(cmd *cobra.Command, configPath string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	created, password, err := bootstrapAdmin(ctx, a)
	if err != nil {
		return err
	}
	if !created {
		return errors.New("database already has an admin account")
	}

	printInitResult(os.Stdout, a.cfg.DB.DSN, a.cfg.AdminEmail, password)
	return nil
}

// bootstrapAdmin creates the configured admin account with a generated
// password when the database has no admin yet.
func bootstrapAdmin(ctx context.Context, a *app) (bool, string, error) {
	admins, err := a.store.CountAdmins(ctx)
	if err != nil {
		return false, "", err
	}
	if admins > 0 {
		return false, "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return false, "", fmt.Errorf("generating password: %w", err)
	}

	_, err = a.controller.CreateUser(ctx, "", inventory.UserInput{
		FullName: "Administrator",
		Email:    a.cfg.AdminEmail,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return false, "", fmt.Errorf("creating admin user: %w", err)
	}
	return true, password, nil
}

// printInitResult prints the generated admin credentials.
func printInitResult(w io.Writer, dsn, email, password string) {
	fmt.Fprintf(w, "Database ready: %s\n", dsn)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Email:    %s\n", email)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
	fmt.Fprintln(w)
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
