package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/scoring"
	"github.com/lib/pq"
)

var (
	ErrPredictionNotFound    = errors.New("prediction not found")
	ErrPredictionConflict    = errors.New("user already has a prediction for this game")
	ErrPredictionGameInvalid = errors.New("prediction game conflict or invalid")
	ErrPredictionUserInvalid = errors.New("prediction user conflict or invalid")
)

type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id int) (*models.Prediction, error)
	GetByUserAndGame(ctx context.Context, userID, gameID int) (*models.Prediction, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	UpdatePoints(ctx context.Context, exec SQLExecutor, predictionID int, points int) error
	// ListSnapshot возвращает снимок прогнозов для области агрегации:
	// roundID == nil — все прогнозы по финализированным и нефинализированным
	// играм (all-time), иначе — только прогнозы по играм указанного тура.
	// userID дополнительно сужает снимок до одного пользователя.
	ListSnapshot(ctx context.Context, roundID, userID *int) ([]scoring.Entry, error)
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPredictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, game_id, pred_home_score, pred_away_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		prediction.UserID, prediction.GameID,
		prediction.PredHomeScore, prediction.PredAwayScore,
	).Scan(&prediction.ID, &prediction.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "predictions_user_id_game_id_key":
				return ErrPredictionConflict
			case "predictions_game_id_fkey":
				return ErrPredictionGameInvalid
			case "predictions_user_id_fkey":
				return ErrPredictionUserInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPredictionRepository) scanPrediction(row interface{ Scan(...interface{}) error }) (*models.Prediction, error) {
	var p models.Prediction
	err := row.Scan(
		&p.ID, &p.UserID, &p.GameID,
		&p.PredHomeScore, &p.PredAwayScore, &p.PointsEarned, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return &p, nil
}

const predictionColumns = `id, user_id, game_id, pred_home_score, pred_away_score, points_earned, created_at`

func (r *postgresPredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`
	return r.scanPrediction(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPredictionRepository) GetByUserAndGame(ctx context.Context, userID, gameID int) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 AND game_id = $2`
	return r.scanPrediction(r.db.QueryRowContext(ctx, query, userID, gameID))
}

func (r *postgresPredictionRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.Prediction, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE game_id = $1 ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions for game %d: %w", gameID, err)
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, scanErr := r.scanPrediction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions for user %d: %w", userID, err)
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, scanErr := r.scanPrediction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *postgresPredictionRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, predictionID int, points int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE predictions SET points_earned = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, points, predictionID)
	if err != nil {
		return fmt.Errorf("UpdatePoints: failed to execute query for prediction %d: %w", predictionID, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) ListSnapshot(ctx context.Context, roundID, userID *int) ([]scoring.Entry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT p.user_id, p.game_id, g.round_id, p.points_earned, p.created_at
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		WHERE 1=1`)

	args := make([]interface{}, 0, 2)
	placeholderIndex := 1

	if roundID != nil {
		queryBuilder.WriteString(" AND g.round_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundID)
		placeholderIndex++
	}
	if userID != nil {
		queryBuilder.WriteString(" AND p.user_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *userID)
	}
	queryBuilder.WriteString(" ORDER BY p.created_at ASC, p.id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction snapshot: %w", err)
	}
	defer rows.Close()

	entries := make([]scoring.Entry, 0)
	for rows.Next() {
		var e scoring.Entry
		if scanErr := rows.Scan(&e.UserID, &e.GameID, &e.RoundID, &e.Points, &e.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan prediction snapshot row: %w", scanErr)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
