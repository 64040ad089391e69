package news

import "time"

type Article struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
