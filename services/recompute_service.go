package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

const (
	lockRetryAttempts = 3
	lockRetryDelay    = 50 * time.Millisecond

	recomputeQueueSize = 64
)

// LeaderboardPublisher пересчитывает и рассылает рейтинги затронутых областей.
type LeaderboardPublisher interface {
	PublishUpdate(ctx context.Context, roundID int)
}

// RecomputeService — координатор пересчёта очков.
// Реагирует на события "результат игры изменился": берёт замок игры,
// заново оценивает все прогнозы по ней в одной транзакции и затем
// инициирует пересчёт рейтингов. Пересчёты разных игр идут параллельно,
// по одной игре — строго последовательно.
type RecomputeService interface {
	ResultChangeNotifier
	// RecomputeForGame возвращает идентификаторы пользователей, чьи прогнозы
	// были переоценены. ErrResultNotFinal означает, что считать нечего (no-op).
	RecomputeForGame(ctx context.Context, gameID int) ([]int, error)
	Run(ctx context.Context)
}

type recomputeService struct {
	db             *sql.DB
	gameRepo       repositories.GameRepository
	resultRepo     repositories.ResultRepository
	predictionRepo repositories.PredictionRepository
	publisher      LeaderboardPublisher
	logger         *slog.Logger

	events chan int

	mu        sync.Mutex
	gameLocks map[int]*sync.Mutex
}

func NewRecomputeService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	resultRepo repositories.ResultRepository,
	predictionRepo repositories.PredictionRepository,
	publisher LeaderboardPublisher,
	logger *slog.Logger,
) RecomputeService {
	return &recomputeService{
		db:             db,
		gameRepo:       gameRepo,
		resultRepo:     resultRepo,
		predictionRepo: predictionRepo,
		publisher:      publisher,
		logger:         logger,
		events:         make(chan int, recomputeQueueSize),
		gameLocks:      make(map[int]*sync.Mutex),
	}
}

func (s *recomputeService) NotifyResultChanged(gameID int) {
	s.events <- gameID
}

// Run потребляет входящий поток событий до отмены контекста.
func (s *recomputeService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case gameID := <-s.events:
			affected, err := s.RecomputeForGame(ctx, gameID)
			switch {
			case errors.Is(err, ErrResultNotFinal):
				s.logger.Debug("recompute skipped, result not final", slog.Int("game_id", gameID))
			case errors.Is(err, ErrRecomputeContended):
				// Конкурирующий пересчёт уже держит замок; вернём событие в очередь.
				s.logger.Warn("recompute contended, requeueing", slog.Int("game_id", gameID))
				time.AfterFunc(lockRetryDelay*2, func() { s.NotifyResultChanged(gameID) })
			case err != nil:
				s.logger.Error("recompute failed", slog.Int("game_id", gameID), slog.Any("error", err))
			default:
				s.logger.Info("recompute completed",
					slog.Int("game_id", gameID),
					slog.Int("affected_users", len(affected)),
				)
			}
		}
	}
}

// lockForGame возвращает замок конкретной игры, создавая его при первом обращении.
// Отдельный мьютекс на игру сохраняет параллелизм между играми.
func (s *recomputeService) lockForGame(gameID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.gameLocks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.gameLocks[gameID] = lock
	}
	return lock
}

func (s *recomputeService) acquireGameLock(ctx context.Context, gameID int) (*sync.Mutex, error) {
	lock := s.lockForGame(gameID)
	for attempt := 0; attempt < lockRetryAttempts; attempt++ {
		if lock.TryLock() {
			return lock, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return nil, ErrRecomputeContended
}

func (s *recomputeService) RecomputeForGame(ctx context.Context, gameID int) ([]int, error) {
	lock, err := s.acquireGameLock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", gameID, err)
	}

	result, err := s.resultRepo.GetByGameID(ctx, nil, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFinal
		}
		return nil, fmt.Errorf("failed to load result for game %d: %w", gameID, err)
	}
	if !result.IsFinal {
		return nil, ErrResultNotFinal
	}

	affected, err := s.applyScores(ctx, gameID, result)
	if err != nil {
		return nil, err
	}

	// Рейтинг пересчитывается уже после фиксации транзакции:
	// агрегатор читает только закоммиченные очки.
	s.publisher.PublishUpdate(ctx, game.RoundID)
	return affected, nil
}

// applyScores переоценивает все прогнозы игры в одной транзакции.
// Либо обновляются очки всех прогнозов, либо ни одного — частично
// начисленные очки нарушили бы согласованность рейтинга.
func (s *recomputeService) applyScores(ctx context.Context, gameID int, result *models.Result) (affected []int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			affected = nil
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit score updates for game %d: %w", gameID, cErr)
			affected = nil
		}
	}()

	predictions, err := s.predictionRepo.ListByGame(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}

	for _, p := range predictions {
		breakdown, cErr := scoring.ComputePoints(p, result)
		if cErr != nil {
			err = fmt.Errorf("failed to score prediction %d: %w", p.ID, cErr)
			return nil, err
		}
		if err = s.predictionRepo.UpdatePoints(ctx, tx, p.ID, breakdown.Total); err != nil {
			return nil, err
		}
		affected = append(affected, p.UserID)
	}
	return affected, nil
}
