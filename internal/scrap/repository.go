package scrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNewsNotFound  = errors.New("news not found")
	ErrScrapNotFound = errors.New("scrap not found")
	ErrDuplicate     = errors.New("scrap already exists")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) checkReferences(ctx context.Context, userID, newsID string) error {
	var userExists, newsExists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE id = $1),
			EXISTS(SELECT 1 FROM news WHERE id = $2)
	`, userID, newsID).Scan(&userExists, &newsExists)
	if err != nil {
		return fmt.Errorf("check scrap references: %w", err)
	}
	if !userExists {
		return ErrUserNotFound
	}
	if !newsExists {
		return ErrNewsNotFound
	}

	return nil
}

func (r *Repository) Insert(ctx context.Context, userID, newsID string) (Scrap, error) {
	if err := r.checkReferences(ctx, userID, newsID); err != nil {
		return Scrap{}, err
	}

	var existing string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM scraps WHERE user_id = $1 AND news_id = $2
	`, userID, newsID).Scan(&existing)
	if err == nil {
		return Scrap{}, ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Scrap{}, fmt.Errorf("query scrap by user and news: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Scrap{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	s := Scrap{
		ID:        id.String(),
		UserID:    userID,
		NewsID:    newsID,
		CreatedAt: time.Now().UTC(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scraps (id, user_id, news_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.UserID, s.NewsID, s.CreatedAt)
	if err != nil {
		return Scrap{}, fmt.Errorf("insert scrap: %w", err)
	}

	return s, nil
}

func (r *Repository) Delete(ctx context.Context, userID, newsID string) error {
	if err := r.checkReferences(ctx, userID, newsID); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM scraps WHERE user_id = $1 AND news_id = $2
	`, userID, newsID)
	if err != nil {
		return fmt.Errorf("delete scrap: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrScrapNotFound
	}

	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Scrap, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, news_id, created_at
		FROM scraps
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query scraps by user: %w", err)
	}
	defer rows.Close()

	scraps := make([]Scrap, 0)
	for rows.Next() {
		var s Scrap
		if err := rows.Scan(&s.ID, &s.UserID, &s.NewsID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scrap: %w", err)
		}
		scraps = append(scraps, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraps: %w", err)
	}

	return scraps, nil
}
