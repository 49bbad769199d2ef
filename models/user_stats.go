package models

// UserStats — производная статистика пользователя для таблицы лидеров и профиля.
// Никогда не хранится в БД, всегда пересчитывается из прогнозов.
type UserStats struct {
	UserID            int     `json:"user_id"`
	Nickname          *string `json:"nickname,omitempty"`
	TotalPoints       int     `json:"total_points"`
	TotalPredictions  int     `json:"total_predictions"`
	ScoredPredictions int     `json:"scored_predictions"`
	PointsPerGame     float64 `json:"points_per_game"`
	BestGamePoints    *int    `json:"best_game_points,omitempty"`
	WorstGamePoints   *int    `json:"worst_game_points,omitempty"`
	BestRoundPoints   *int    `json:"best_round_points,omitempty"`
	WorstRoundPoints  *int    `json:"worst_round_points,omitempty"`
	Rank              int     `json:"rank"`
}
