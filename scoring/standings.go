package scoring

import (
	"sort"
	"time"

	"github.com/Dosada05/prediction-league/models"
)

// Entry — снимок одного прогноза для агрегации рейтинга.
// Points == nil означает, что результат игры ещё не финализирован.
type Entry struct {
	UserID    int
	GameID    int
	RoundID   int
	Points    *int
	CreatedAt time.Time
}

type userAccumulator struct {
	stats       models.UserStats
	firstPick   time.Time
	roundPoints map[int]int // очки по турам, только по засчитанным прогнозам
}

// BuildStandings агрегирует снимок прогнозов в упорядоченный рейтинг.
// Всегда полный пересчёт от исходных записей — инкрементальные дельты небезопасны,
// потому что финальный результат может быть исправлен задним числом.
//
// Порядок детерминированный: total_points по убыванию, затем points_per_game
// по убыванию, затем самый ранний прогноз по возрастанию, затем user_id по
// возрастанию. Последний ключ уникален, поэтому двух равных позиций не бывает.
func BuildStandings(entries []Entry) []models.UserStats {
	byUser := make(map[int]*userAccumulator)

	for _, e := range entries {
		acc, ok := byUser[e.UserID]
		if !ok {
			acc = &userAccumulator{
				stats:       models.UserStats{UserID: e.UserID},
				firstPick:   e.CreatedAt,
				roundPoints: make(map[int]int),
			}
			byUser[e.UserID] = acc
		}

		// total_predictions считает все прогнозы в области, включая незасчитанные.
		acc.stats.TotalPredictions++
		if e.CreatedAt.Before(acc.firstPick) {
			acc.firstPick = e.CreatedAt
		}

		if e.Points == nil {
			continue
		}
		pts := *e.Points

		acc.stats.ScoredPredictions++
		acc.stats.TotalPoints += pts
		if acc.stats.BestGamePoints == nil || pts > *acc.stats.BestGamePoints {
			v := pts
			acc.stats.BestGamePoints = &v
		}
		if acc.stats.WorstGamePoints == nil || pts < *acc.stats.WorstGamePoints {
			v := pts
			acc.stats.WorstGamePoints = &v
		}
		acc.roundPoints[e.RoundID] += pts
	}

	standings := make([]models.UserStats, 0, len(byUser))
	order := make(map[int]time.Time, len(byUser))
	for _, acc := range byUser {
		// PPG делит только на засчитанные прогнозы: игры без результата
		// не размывают среднее.
		if acc.stats.ScoredPredictions > 0 {
			acc.stats.PointsPerGame = float64(acc.stats.TotalPoints) / float64(acc.stats.ScoredPredictions)
		}
		for _, rp := range acc.roundPoints {
			v := rp
			if acc.stats.BestRoundPoints == nil || rp > *acc.stats.BestRoundPoints {
				acc.stats.BestRoundPoints = &v
			}
			if acc.stats.WorstRoundPoints == nil || rp < *acc.stats.WorstRoundPoints {
				acc.stats.WorstRoundPoints = &v
			}
		}
		order[acc.stats.UserID] = acc.firstPick
		standings = append(standings, acc.stats)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.PointsPerGame != b.PointsPerGame {
			return a.PointsPerGame > b.PointsPerGame
		}
		fa, fb := order[a.UserID], order[b.UserID]
		if !fa.Equal(fb) {
			return fa.Before(fb)
		}
		return a.UserID < b.UserID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
