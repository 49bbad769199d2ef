package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

type RoundInput struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type RoundService interface {
	CreateRound(ctx context.Context, input RoundInput) (*models.Round, error)
	GetRound(ctx context.Context, id int) (*models.Round, error)
	ListRounds(ctx context.Context) ([]*models.Round, error)
	UpdateRound(ctx context.Context, id int, input RoundInput) (*models.Round, error)
	DeleteRound(ctx context.Context, id int) error
}

type roundService struct {
	roundRepo repositories.RoundRepository
}

func NewRoundService(roundRepo repositories.RoundRepository) RoundService {
	return &roundService{roundRepo: roundRepo}
}

func (s *roundService) validate(input RoundInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.EndDate.After(input.StartDate) {
		return ErrRoundInvalidDates
	}
	return nil
}

func (s *roundService) CreateRound(ctx context.Context, input RoundInput) (*models.Round, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	round := &models.Round{
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	return round, nil
}

func (s *roundService) GetRound(ctx context.Context, id int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to load round %d: %w", id, err)
	}
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context) ([]*models.Round, error) {
	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (s *roundService) UpdateRound(ctx context.Context, id int, input RoundInput) (*models.Round, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	round, err := s.GetRound(ctx, id)
	if err != nil {
		return nil, err
	}
	round.Name = input.Name
	round.StartDate = input.StartDate
	round.EndDate = input.EndDate
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to update round %d: %w", id, err)
	}
	return round, nil
}

func (s *roundService) DeleteRound(ctx context.Context, id int) error {
	if err := s.roundRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to delete round %d: %w", id, err)
	}
	return nil
}
