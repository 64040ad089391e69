package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CredentialVerifier resolves an email/password pair into a verified
// Identity. Implementations may distinguish unknown accounts from wrong
// passwords; the orchestrator collapses both at the response boundary.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (Identity, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, nickname, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("query user by email: %w", err)
	}

	return user, nil
}

// UpsertByEmail creates or updates a user with the given plaintext
// password. Used at bootstrap to seed an operator account from env.
func (r *Repository) UpsertByEmail(ctx context.Context, email, nickname, plainPassword string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, nickname, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email)
		DO UPDATE SET nickname = EXCLUDED.nickname, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
	`, id.String(), email, nickname, string(hash), now)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// Verifier checks credentials against the users table with bcrypt.
type Verifier struct {
	repo *Repository
}

func NewVerifier(repo *Repository) *Verifier {
	return &Verifier{repo: repo}
}

func (v *Verifier) Verify(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := v.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrAccountNotFound
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{SubjectID: user.ID, Email: user.Email}, nil
}
