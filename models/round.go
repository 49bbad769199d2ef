package models

import "time"

// Round группирует игры в именованное временное окно (тур).
// Используется как область агрегации для рейтинга.
type Round struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}
