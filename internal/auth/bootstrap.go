package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lightgray/lightgray/internal/database"
	"github.com/lightgray/lightgray/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

// AdminAccount describes the account created on first start.
type AdminAccount struct {
	Name     string
	Email    string
	Username string
	Password string
}

// EnsureAdmin creates the configured admin account unless the username is taken.
// An empty username or password disables the bootstrap.
func EnsureAdmin(ctx context.Context, db database.DBTX, account AdminAccount) (bool, error) {
	account.Username = strings.TrimSpace(account.Username)
	if account.Username == "" || account.Password == "" {
		return false, nil
	}
	if msg := validate.First(validate.Username(account.Username), validate.Password(account.Password)); msg != "" {
		return false, errors.New("admin account: " + msg)
	}
	if account.Name == "" {
		account.Name = account.Username
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	tag, err := db.Exec(ctx,
		`INSERT INTO users (id, name, email, username, password, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), account.Name, account.Email, account.Username, string(hashed), RoleAdmin,
	)
	if err != nil {
		return false, fmt.Errorf("insert admin account: %w", err)
	}

	created := tag.RowsAffected() > 0
	if created {
		slog.Info("auth: admin account created", "username", account.Username)
	}
	return created, nil
}
