package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameRoundInvalid = errors.New("game round conflict or invalid")
	ErrGameTeamInvalid  = errors.New("game team conflict or invalid")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByRound(ctx context.Context, roundID int) ([]*models.Game, error)
	List(ctx context.Context, roundID *int, upcomingOnly bool) ([]*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (round_id, home_team_id, away_team_id, start_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		game.RoundID, game.HomeTeamID, game.AwayTeamID, game.StartTime,
	).Scan(&game.ID, &game.CreatedAt)
	return r.handleGameError(err)
}

func (r *postgresGameRepository) scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.RoundID, &g.HomeTeamID, &g.AwayTeamID, &g.StartTime, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT id, round_id, home_team_id, away_team_id, start_time, created_at FROM games WHERE id = $1`
	return r.scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Game, error) {
	return r.List(ctx, &roundID, false)
}

func (r *postgresGameRepository) List(ctx context.Context, roundID *int, upcomingOnly bool) ([]*models.Game, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, round_id, home_team_id, away_team_id, start_time, created_at
		FROM games
		WHERE 1=1`)

	args := make([]interface{}, 0, 2)
	placeholderIndex := 1

	if roundID != nil {
		queryBuilder.WriteString(" AND round_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundID)
		placeholderIndex++
	}
	if upcomingOnly {
		queryBuilder.WriteString(" AND start_time > NOW()")
	}
	queryBuilder.WriteString(" ORDER BY start_time ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g, scanErr := r.scanGame(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games
		SET round_id = $1, home_team_id = $2, away_team_id = $3, start_time = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		game.RoundID, game.HomeTeamID, game.AwayTeamID, game.StartTime, game.ID,
	)
	if err != nil {
		return r.handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM games WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "games_round_id_fkey":
			return ErrGameRoundInvalid
		case "games_home_team_id_fkey", "games_away_team_id_fkey":
			return ErrGameTeamInvalid
		}
	}
	return err
}
