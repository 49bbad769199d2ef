package models

import "time"

type Game struct {
	ID         int       `json:"id"`
	RoundID    int       `json:"round_id"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	StartTime  time.Time `json:"start_time"`
	CreatedAt  time.Time `json:"created_at"`

	// Опциональное обогащение для ответов API.
	HomeTeam *Team   `json:"home_team,omitempty"`
	AwayTeam *Team   `json:"away_team,omitempty"`
	Result   *Result `json:"result,omitempty"`
}
