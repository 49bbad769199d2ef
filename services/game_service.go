package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"golang.org/x/sync/errgroup"
)

type GameInput struct {
	RoundID    int       `json:"round_id"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	StartTime  time.Time `json:"start_time"`
}

type GameService interface {
	CreateGame(ctx context.Context, input GameInput) (*models.Game, error)
	GetGame(ctx context.Context, id int) (*models.Game, error)
	ListGames(ctx context.Context, roundID *int, upcomingOnly bool) ([]*models.Game, error)
	UpdateGame(ctx context.Context, id int, input GameInput) (*models.Game, error)
	DeleteGame(ctx context.Context, id int) error
}

type gameService struct {
	gameRepo       repositories.GameRepository
	teamRepo       repositories.TeamRepository
	resultRepo     repositories.ResultRepository
	predictionRepo repositories.PredictionRepository
}

func NewGameService(
	gameRepo repositories.GameRepository,
	teamRepo repositories.TeamRepository,
	resultRepo repositories.ResultRepository,
	predictionRepo repositories.PredictionRepository,
) GameService {
	return &gameService{
		gameRepo:       gameRepo,
		teamRepo:       teamRepo,
		resultRepo:     resultRepo,
		predictionRepo: predictionRepo,
	}
}

func (s *gameService) validate(input GameInput) error {
	if input.HomeTeamID == input.AwayTeamID {
		return ErrGameSameTeams
	}
	if input.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrValidationFailed)
	}
	return nil
}

func (s *gameService) CreateGame(ctx context.Context, input GameInput) (*models.Game, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	game := &models.Game{
		RoundID:    input.RoundID,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		StartTime:  input.StartTime,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameRoundInvalid):
			return nil, ErrRoundNotFound
		case errors.Is(err, repositories.ErrGameTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// GetGame возвращает игру, обогащённую командами и результатом (если есть).
func (s *gameService) GetGame(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		home, err := s.teamRepo.GetByID(gCtx, game.HomeTeamID)
		if err != nil {
			return fmt.Errorf("failed to load home team %d: %w", game.HomeTeamID, err)
		}
		game.HomeTeam = home
		return nil
	})
	g.Go(func() error {
		away, err := s.teamRepo.GetByID(gCtx, game.AwayTeamID)
		if err != nil {
			return fmt.Errorf("failed to load away team %d: %w", game.AwayTeamID, err)
		}
		game.AwayTeam = away
		return nil
	})
	g.Go(func() error {
		result, err := s.resultRepo.GetByGameID(gCtx, nil, game.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrResultNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load result for game %d: %w", game.ID, err)
		}
		game.Result = result
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, roundID *int, upcomingOnly bool) ([]*models.Game, error) {
	games, err := s.gameRepo.List(ctx, roundID, upcomingOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) UpdateGame(ctx context.Context, id int, input GameInput) (*models.Game, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", id, err)
	}

	// Перенос времени игры с существующими прогнозами запрещён:
	// окно приёма уже отработало по старому времени.
	if !input.StartTime.Equal(game.StartTime) {
		predictions, pErr := s.predictionRepo.ListByGame(ctx, nil, id)
		if pErr != nil {
			return nil, fmt.Errorf("failed to check predictions for game %d: %w", id, pErr)
		}
		if len(predictions) > 0 {
			return nil, ErrGameAlreadyPredicted
		}
	}

	game.RoundID = input.RoundID
	game.HomeTeamID = input.HomeTeamID
	game.AwayTeamID = input.AwayTeamID
	game.StartTime = input.StartTime

	if err := s.gameRepo.Update(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameRoundInvalid):
			return nil, ErrRoundNotFound
		case errors.Is(err, repositories.ErrGameTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update game %d: %w", id, err)
	}
	return game, nil
}

func (s *gameService) DeleteGame(ctx context.Context, id int) error {
	if err := s.gameRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return nil
}
