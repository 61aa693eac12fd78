// Package model defines the entities exchanged between the bot,
// the predictors and the web API.
package model

// Question is what a user asked, it is never persisted directly
type Question struct {
	Text      string
	AskerID   int64
	ChatID    int64
	MessageID int
}

// Answer is produced by one predictor for one question
type Answer struct {
	// ID is assigned by the web API, nil if there is nothing to rate
	ID        *int64 `json:"id"`
	Predictor string `json:"predictor"`
	Text      string `json:"text"`
	// Rating 0 means unrated, otherwise 1..5
	Rating int `json:"rating,omitempty"`
}

// User is a telegram user known to the web API
type User struct {
	TgID      int64  `json:"tg_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

const (
	// MinRating is the lowest star rating
	MinRating = 1
	// MaxRating is the highest star rating
	MaxRating = 5
)
