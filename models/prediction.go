package models

import "time"

// Prediction — прогноз пользователя на итоговый счёт игры.
// Не более одного прогноза на пару (user, game) — уникальный индекс в БД.
// PointsEarned равен nil, пока результат игры не финализирован; после
// финализации всегда отражает текущий (возможно исправленный) результат.
type Prediction struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	GameID        int       `json:"game_id"`
	PredHomeScore int       `json:"pred_home_score"`
	PredAwayScore int       `json:"pred_away_score"`
	PointsEarned  *int      `json:"points_earned,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
