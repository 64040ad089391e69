package scrap

import "time"

// Scrap is a user's bookmark of one news article. A user may scrap a
// given article at most once.
type Scrap struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	NewsID    string    `json:"news_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ScrapInput struct {
	NewsID string `json:"news_id"`
}
