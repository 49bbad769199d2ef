package scoring

import "time"

// SubmissionCutoff — за сколько до начала игры закрывается приём прогнозов.
// Фиксированная доменная константа; её изменение — продуктовое решение.
const SubmissionCutoff = time.Hour

// CanSubmit решает, можно ли принять новый прогноз на игру.
// Прогноз принимается, только если у пользователя ещё нет прогноза на эту игру,
// результат не финализирован и до начала игры остаётся больше SubmissionCutoff.
func CanSubmit(now, gameStart time.Time, hasPrediction, resultFinal bool) bool {
	if hasPrediction || resultFinal {
		return false
	}
	return now.Before(gameStart.Add(-SubmissionCutoff))
}
