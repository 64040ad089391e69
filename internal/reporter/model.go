package reporter

import "time"

type Reporter struct {
	ID      string `json:"id"`
	PressID string `json:"press_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Trend is one keyword-count observation for a reporter on a given day.
type Trend struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	Keyword    string    `json:"keyword"`
	Count      int       `json:"count"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

type TrendInput struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Date    string `json:"date"`
}
