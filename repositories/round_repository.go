package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	List(ctx context.Context) ([]*models.Round, error)
	Update(ctx context.Context, round *models.Round) error
	Delete(ctx context.Context, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (name, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, round.Name, round.StartDate, round.EndDate).
		Scan(&round.ID, &round.CreatedAt)
}

func (r *postgresRoundRepository) scanRound(row interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var rd models.Round
	err := row.Scan(&rd.ID, &rd.Name, &rd.StartDate, &rd.EndDate, &rd.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &rd, nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `SELECT id, name, start_date, end_date, created_at FROM rounds WHERE id = $1`
	return r.scanRound(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRoundRepository) List(ctx context.Context) ([]*models.Round, error) {
	query := `SELECT id, name, start_date, end_date, created_at FROM rounds ORDER BY start_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		rd, scanErr := r.scanRound(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

func (r *postgresRoundRepository) Update(ctx context.Context, round *models.Round) error {
	query := `UPDATE rounds SET name = $1, start_date = $2, end_date = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, round.Name, round.StartDate, round.EndDate, round.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM rounds WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
