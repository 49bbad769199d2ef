package models

import "time"

// Result — авторитетный счёт игры, максимум один на игру.
// Пока IsFinal == false, очки по нему не считаются, даже если счёт уже записан.
type Result struct {
	ID        int       `json:"id"`
	GameID    int       `json:"game_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	IsFinal   bool      `json:"is_final"`
	UpdatedAt time.Time `json:"updated_at"`
}
