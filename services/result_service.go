package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/realtime"
	"github.com/Dosada05/prediction-league/repositories"
)

type ResultInput struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
	IsFinal   bool `json:"is_final"`
}

// ResultChangeNotifier принимает событие "результат игры изменился".
// Координатор пересчёта реализует этот интерфейс; сервис результатов
// не знает, как именно доставляется событие.
type ResultChangeNotifier interface {
	NotifyResultChanged(gameID int)
}

type ResultService interface {
	RecordResult(ctx context.Context, gameID int, input ResultInput) (*models.Result, error)
	CorrectResult(ctx context.Context, gameID int, input ResultInput) (*models.Result, error)
	FinalizeResult(ctx context.Context, gameID int) (*models.Result, error)
	GetByGameID(ctx context.Context, gameID int) (*models.Result, error)
}

type resultService struct {
	resultRepo  repositories.ResultRepository
	gameRepo    repositories.GameRepository
	notifier    ResultChangeNotifier
	broadcaster LeaderboardBroadcaster
}

func NewResultService(
	resultRepo repositories.ResultRepository,
	gameRepo repositories.GameRepository,
	notifier ResultChangeNotifier,
	broadcaster LeaderboardBroadcaster,
) ResultService {
	return &resultService{
		resultRepo:  resultRepo,
		gameRepo:    gameRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

// announce рассылает событие по результату в комнату тура игры.
func (s *resultService) announce(ctx context.Context, messageType string, result *models.Result) {
	if s.broadcaster == nil {
		return
	}
	game, err := s.gameRepo.GetByID(ctx, result.GameID)
	if err != nil {
		return
	}
	room := realtime.RoundRoom(game.RoundID)
	s.broadcaster.BroadcastToRoom(room, realtime.Message{
		Type:    messageType,
		Payload: result,
		RoomID:  room,
	})
}

func (s *resultService) validateScores(input ResultInput) error {
	if input.HomeScore == nil || input.AwayScore == nil {
		return ErrResultScoresNeeded
	}
	if *input.HomeScore < 0 || *input.AwayScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}
	return nil
}

// RecordResult создаёт результат игры. Пока IsFinal == false, это черновик:
// очки по нему не считаются. Финализация сразу при создании допустима.
func (s *resultService) RecordResult(ctx context.Context, gameID int, input ResultInput) (*models.Result, error) {
	if err := s.validateScores(input); err != nil {
		return nil, err
	}
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", gameID, err)
	}

	result := &models.Result{
		GameID:    gameID,
		HomeScore: *input.HomeScore,
		AwayScore: *input.AwayScore,
		IsFinal:   input.IsFinal,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		if errors.Is(err, repositories.ErrResultAlreadyExists) {
			return nil, ErrResultExists
		}
		return nil, fmt.Errorf("failed to create result for game %d: %w", gameID, err)
	}

	if result.IsFinal {
		s.notifier.NotifyResultChanged(gameID)
		s.announce(ctx, realtime.MessageResultFinalized, result)
	}
	return result, nil
}

// CorrectResult правит счёт существующего результата. Если результат уже
// финален, исправление обязано запустить пересчёт — устаревших очков
// не бывает по инварианту.
func (s *resultService) CorrectResult(ctx context.Context, gameID int, input ResultInput) (*models.Result, error) {
	if err := s.validateScores(input); err != nil {
		return nil, err
	}

	existing, err := s.resultRepo.GetByGameID(ctx, nil, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result for game %d: %w", gameID, err)
	}

	// Финальность снять нельзя: прогнозы уже оценены, откат финальности
	// оставил бы очки без источника.
	isFinal := existing.IsFinal || input.IsFinal

	result := &models.Result{
		GameID:    gameID,
		HomeScore: *input.HomeScore,
		AwayScore: *input.AwayScore,
		IsFinal:   isFinal,
	}
	if err := s.resultRepo.Update(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to update result for game %d: %w", gameID, err)
	}

	if result.IsFinal {
		s.notifier.NotifyResultChanged(gameID)
		s.announce(ctx, realtime.MessageResultCorrected, result)
	}
	return result, nil
}

// FinalizeResult помечает записанный результат как финальный,
// что и разрешает начисление очков.
func (s *resultService) FinalizeResult(ctx context.Context, gameID int) (*models.Result, error) {
	existing, err := s.resultRepo.GetByGameID(ctx, nil, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result for game %d: %w", gameID, err)
	}

	existing.IsFinal = true
	if err := s.resultRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to finalize result for game %d: %w", gameID, err)
	}

	// Повторная финализация безопасна: пересчёт идемпотентен.
	s.notifier.NotifyResultChanged(gameID)
	s.announce(ctx, realtime.MessageResultFinalized, existing)
	return existing, nil
}

func (s *resultService) GetByGameID(ctx context.Context, gameID int) (*models.Result, error) {
	result, err := s.resultRepo.GetByGameID(ctx, nil, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result for game %d: %w", gameID, err)
	}
	return result, nil
}
