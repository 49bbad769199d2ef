package services

import "errors"

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPredictionClosed   = errors.New("predictions are closed for this game")
	ErrPredictionExists   = errors.New("prediction already exists for this game")
	ErrResultNotFinal     = errors.New("game has no final result")
	ErrResultScoresNeeded = errors.New("home and away scores are required")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrResultExists         = errors.New("result already recorded for this game")
	ErrRecomputeContended   = errors.New("another recompute is in progress for this game, retry later")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrPredictionNotFound = errors.New("prediction not found")

	// Ошибки игр и туров
	ErrGameSameTeams        = errors.New("home and away teams must differ")
	ErrRoundInvalidDates    = errors.New("round end date must be after start date")
	ErrGameAlreadyPredicted = errors.New("game already has predictions, reschedule is not allowed")
)
