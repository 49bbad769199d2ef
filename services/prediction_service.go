package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

type PredictionInput struct {
	GameID        int `json:"game_id"`
	PredHomeScore int `json:"pred_home_score"`
	PredAwayScore int `json:"pred_away_score"`
}

type PredictionService interface {
	CreatePrediction(ctx context.Context, userID int, input PredictionInput) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	ListByGame(ctx context.Context, gameID int) ([]*models.Prediction, error)
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	gameRepo       repositories.GameRepository
	resultRepo     repositories.ResultRepository
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	gameRepo repositories.GameRepository,
	resultRepo repositories.ResultRepository,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		gameRepo:       gameRepo,
		resultRepo:     resultRepo,
	}
}

// CreatePrediction принимает прогноз, если дедлайн ещё не наступил
// и у пользователя нет прогноза на эту игру.
func (s *predictionService) CreatePrediction(ctx context.Context, userID int, input PredictionInput) (*models.Prediction, error) {
	if input.PredHomeScore < 0 || input.PredAwayScore < 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, scoring.ErrNegativeScore)
	}

	game, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", input.GameID, err)
	}

	hasPrediction := false
	if _, err := s.predictionRepo.GetByUserAndGame(ctx, userID, input.GameID); err == nil {
		hasPrediction = true
	} else if !errors.Is(err, repositories.ErrPredictionNotFound) {
		return nil, fmt.Errorf("failed to check existing prediction: %w", err)
	}

	resultFinal := false
	if res, err := s.resultRepo.GetByGameID(ctx, nil, input.GameID); err == nil {
		resultFinal = res.IsFinal
	} else if !errors.Is(err, repositories.ErrResultNotFound) {
		return nil, fmt.Errorf("failed to check game result: %w", err)
	}

	if !scoring.CanSubmit(time.Now(), game.StartTime, hasPrediction, resultFinal) {
		if hasPrediction {
			return nil, ErrPredictionExists
		}
		return nil, ErrPredictionClosed
	}

	prediction := &models.Prediction{
		UserID:        userID,
		GameID:        input.GameID,
		PredHomeScore: input.PredHomeScore,
		PredAwayScore: input.PredAwayScore,
	}
	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		// Уникальный индекс страхует от гонки двух одновременных сабмитов.
		if errors.Is(err, repositories.ErrPredictionConflict) {
			return nil, ErrPredictionExists
		}
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	return prediction, nil
}

func (s *predictionService) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for user %d: %w", userID, err)
	}
	return predictions, nil
}

func (s *predictionService) ListByGame(ctx context.Context, gameID int) ([]*models.Prediction, error) {
	predictions, err := s.predictionRepo.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for game %d: %w", gameID, err)
	}
	return predictions, nil
}
