package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reporter_id, title, content, created_at
		FROM news
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	articles := make([]Article, 0)
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.ReporterID, &a.Title, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}

	return articles, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Article, error) {
	var a Article
	err := r.db.QueryRowContext(ctx, `
		SELECT id, reporter_id, title, content, created_at
		FROM news
		WHERE id = $1
	`, id).Scan(&a.ID, &a.ReporterID, &a.Title, &a.Content, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Article{}, err
		}
		return Article{}, fmt.Errorf("query article: %w", err)
	}

	return a, nil
}
