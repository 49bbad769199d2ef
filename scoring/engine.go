package scoring

import (
	"errors"

	"github.com/Dosada05/prediction-league/models"
)

// ErrNegativeScore возвращается, если в прогнозе или результате отрицательный счёт.
// Такие значения отклоняются до начисления очков, никогда не обрезаются молча.
var ErrNegativeScore = errors.New("prediction and result scores must be non-negative")

const (
	// WinnerPoints начисляется за верно угаданный исход (победа хозяев,
	// победа гостей или ничья — ничья считается отдельным исходом).
	WinnerPoints = 5

	// MaxPoints — максимум за одну игру: 5 + 25 + 10 + 10.
	MaxPoints = 50
)

// marginTable: очки за точность разницы счёта, индекс — |predDiff - actualDiff|.
var marginTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// sideTable: очки за точность счёта одной стороны, индекс — |pred - actual|.
// Применяется к хозяевам и гостям независимо.
var sideTable = [...]int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// PointsBreakdown — разложение очков прогноза по компонентам.
type PointsBreakdown struct {
	Winner int `json:"winner"`
	Diff   int `json:"diff"`
	Home   int `json:"home"`
	Away   int `json:"away"`
	Total  int `json:"total"`
}

type outcome int

const (
	outcomeHomeWin outcome = iota
	outcomeAwayWin
	outcomeTie
)

func outcomeOf(home, away int) outcome {
	switch {
	case home > away:
		return outcomeHomeWin
	case away > home:
		return outcomeAwayWin
	default:
		return outcomeTie
	}
}

func tableLookup(table []int, gap int) int {
	if gap < len(table) {
		return table[gap]
	}
	return 0
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// ComputePoints считает очки прогноза против результата.
// Чистая функция без состояния: одинаковые входы всегда дают одинаковый выход,
// на этом держится идемпотентность пересчёта. Финальность результата
// не проверяется — за это отвечает вызывающий (координатор пересчёта).
func ComputePoints(prediction *models.Prediction, result *models.Result) (PointsBreakdown, error) {
	if prediction.PredHomeScore < 0 || prediction.PredAwayScore < 0 ||
		result.HomeScore < 0 || result.AwayScore < 0 {
		return PointsBreakdown{}, ErrNegativeScore
	}

	// Неверный исход — ноль по всем компонентам, остальное не считаем.
	if outcomeOf(prediction.PredHomeScore, prediction.PredAwayScore) != outcomeOf(result.HomeScore, result.AwayScore) {
		return PointsBreakdown{}, nil
	}

	b := PointsBreakdown{Winner: WinnerPoints}

	predDiff := abs(prediction.PredHomeScore - prediction.PredAwayScore)
	actualDiff := abs(result.HomeScore - result.AwayScore)
	b.Diff = tableLookup(marginTable[:], abs(predDiff-actualDiff))

	b.Home = tableLookup(sideTable[:], abs(prediction.PredHomeScore-result.HomeScore))
	b.Away = tableLookup(sideTable[:], abs(prediction.PredAwayScore-result.AwayScore))

	b.Total = b.Winner + b.Diff + b.Home + b.Away
	return b, nil
}
