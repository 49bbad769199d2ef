package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound      = errors.New("result not found")
	ErrResultGameInvalid   = errors.New("result game conflict or invalid")
	ErrResultAlreadyExists = errors.New("result already exists for this game")
)

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByGameID(ctx context.Context, exec SQLExecutor, gameID int) (*models.Result, error)
	Update(ctx context.Context, result *models.Result) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (game_id, home_score, away_score, is_final)
		VALUES ($1, $2, $3, $4)
		RETURNING id, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		result.GameID, result.HomeScore, result.AwayScore, result.IsFinal,
	).Scan(&result.ID, &result.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "results_game_id_key":
				return ErrResultAlreadyExists
			case "results_game_id_fkey":
				return ErrResultGameInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) GetByGameID(ctx context.Context, exec SQLExecutor, gameID int) (*models.Result, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, game_id, home_score, away_score, is_final, updated_at FROM results WHERE game_id = $1`
	var res models.Result
	err := executor.QueryRowContext(ctx, query, gameID).Scan(
		&res.ID, &res.GameID, &res.HomeScore, &res.AwayScore, &res.IsFinal, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *postgresResultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results
		SET home_score = $1, away_score = $2, is_final = $3, updated_at = NOW()
		WHERE game_id = $4
		RETURNING id, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		result.HomeScore, result.AwayScore, result.IsFinal, result.GameID,
	).Scan(&result.ID, &result.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResultNotFound
		}
		return err
	}
	return nil
}
