package reporter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) reporterExists(ctx context.Context, reporterID string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM reporters WHERE id = $1)
	`, reporterID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check reporter exists: %w", err)
	}
	if !exists {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) InsertTrend(ctx context.Context, reporterID string, input TrendInput, date time.Time) (Trend, error) {
	if err := r.reporterExists(ctx, reporterID); err != nil {
		return Trend{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Trend{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	trend := Trend{
		ID:         id.String(),
		ReporterID: reporterID,
		Keyword:    input.Keyword,
		Count:      input.Count,
		Date:       date,
		CreatedAt:  now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reporter_trends (id, reporter_id, keyword, count, trend_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, trend.ID, trend.ReporterID, trend.Keyword, trend.Count, trend.Date, trend.CreatedAt)
	if err != nil {
		return Trend{}, fmt.Errorf("insert trend: %w", err)
	}

	return trend, nil
}

func (r *Repository) UpdateTrend(ctx context.Context, id string, input TrendInput, date time.Time) (Trend, error) {
	var trend Trend
	err := r.db.QueryRowContext(ctx, `
		UPDATE reporter_trends
		SET keyword = $2, count = $3, trend_date = $4
		WHERE id = $1
		RETURNING id, reporter_id, keyword, count, trend_date, created_at
	`, id, input.Keyword, input.Count, date).
		Scan(&trend.ID, &trend.ReporterID, &trend.Keyword, &trend.Count, &trend.Date, &trend.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trend{}, err
		}
		return Trend{}, fmt.Errorf("update trend: %w", err)
	}

	return trend, nil
}

func (r *Repository) DeleteTrend(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reporter_trends WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trend: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) ListByPress(ctx context.Context, pressID string) ([]Reporter, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM presses WHERE id = $1)
	`, pressID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check press exists: %w", err)
	}
	if !exists {
		return nil, sql.ErrNoRows
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, press_id, name, email
		FROM reporters
		WHERE press_id = $1
		ORDER BY name ASC
	`, pressID)
	if err != nil {
		return nil, fmt.Errorf("query reporters by press: %w", err)
	}
	defer rows.Close()

	reporters := make([]Reporter, 0)
	for rows.Next() {
		var rep Reporter
		if err := rows.Scan(&rep.ID, &rep.PressID, &rep.Name, &rep.Email); err != nil {
			return nil, fmt.Errorf("scan reporter: %w", err)
		}
		reporters = append(reporters, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reporters: %w", err)
	}

	return reporters, nil
}

// DeleteTrendsBefore removes trend rows older than the cutoff in
// batches. Used by the maintenance endpoint.
func (r *Repository) DeleteTrendsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM reporter_trends
			WHERE trend_date < $1
			ORDER BY trend_date ASC
			LIMIT $2
		)
		DELETE FROM reporter_trends t
		USING stale
		WHERE t.id = stale.id
	`, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale trends: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale trends rows affected: %w", err)
	}

	return affected, nil
}
