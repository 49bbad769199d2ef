package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/realtime"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LeaderboardBroadcaster рассылает сообщение всем подписчикам комнаты.
// Реализуется realtime.Hub.
type LeaderboardBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type LeaderboardService interface {
	LeaderboardPublisher
	GetAllTimeRanking(ctx context.Context) ([]models.UserStats, error)
	GetRoundRanking(ctx context.Context, roundID int) ([]models.UserStats, error)
	GetUserStats(ctx context.Context, userID int) (*models.UserStats, error)
}

type leaderboardService struct {
	predictionRepo repositories.PredictionRepository
	userRepo       repositories.UserRepository
	roundRepo      repositories.RoundRepository
	broadcaster    LeaderboardBroadcaster
	logger         *slog.Logger

	// Конкурентные запросы одной области схлопываются в одно вычисление.
	// Агрегация — чистая функция от снимка, поэтому раздать один результат
	// всем ожидающим безопасно.
	group singleflight.Group
}

func NewLeaderboardService(
	predictionRepo repositories.PredictionRepository,
	userRepo repositories.UserRepository,
	roundRepo repositories.RoundRepository,
	broadcaster LeaderboardBroadcaster,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		roundRepo:      roundRepo,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// rankingForScope всегда пересчитывает рейтинг с нуля из исходных прогнозов.
// Никаких хранимых агрегатов: после исправления результата инкрементальные
// счётчики разъезжаются с источником.
func (s *leaderboardService) rankingForScope(ctx context.Context, roundID *int) ([]models.UserStats, error) {
	key := "all_time"
	if roundID != nil {
		key = "round_" + strconv.Itoa(*roundID)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		snapshot, err := s.predictionRepo.ListSnapshot(ctx, roundID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load prediction snapshot: %w", err)
		}

		standings := scoring.BuildStandings(snapshot)
		if err := s.attachNicknames(ctx, standings); err != nil {
			return nil, err
		}
		return standings, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.UserStats), nil
}

func (s *leaderboardService) attachNicknames(ctx context.Context, standings []models.UserStats) error {
	if len(standings) == 0 {
		return nil
	}
	ids := make([]int, 0, len(standings))
	for _, st := range standings {
		ids = append(ids, st.UserID)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load users for standings: %w", err)
	}
	nicknames := make(map[int]*string, len(users))
	for _, u := range users {
		nicknames[u.ID] = u.Nickname
	}
	for i := range standings {
		standings[i].Nickname = nicknames[standings[i].UserID]
	}
	return nil
}

func (s *leaderboardService) GetAllTimeRanking(ctx context.Context) ([]models.UserStats, error) {
	return s.rankingForScope(ctx, nil)
}

func (s *leaderboardService) GetRoundRanking(ctx context.Context, roundID int) ([]models.UserStats, error) {
	var standings []models.UserStats

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.roundRepo.GetByID(gCtx, roundID); err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return ErrRoundNotFound
			}
			return fmt.Errorf("failed to load round %d: %w", roundID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		standings, err = s.rankingForScope(gCtx, &roundID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return standings, nil
}

// GetUserStats возвращает производную статистику пользователя вместе
// с его местом в сквозном рейтинге.
func (s *leaderboardService) GetUserStats(ctx context.Context, userID int) (*models.UserStats, error) {
	var (
		user      *models.User
		standings []models.UserStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gCtx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		standings, err = s.rankingForScope(gCtx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range standings {
		if standings[i].UserID == userID {
			return &standings[i], nil
		}
	}

	// Пользователь без прогнозов: нулевая статистика вне рейтинга.
	return &models.UserStats{UserID: userID, Nickname: user.Nickname}, nil
}

// PublishUpdate пересчитывает затронутые области и рассылает их подписчикам.
// Ошибки здесь только логируются: пересчёт очков уже зафиксирован,
// а рассылка — это доставка "как получится".
func (s *leaderboardService) PublishUpdate(ctx context.Context, roundID int) {
	if allTime, err := s.rankingForScope(ctx, nil); err != nil {
		s.logger.Error("failed to recompute all-time ranking", slog.Any("error", err))
	} else {
		s.broadcaster.BroadcastToRoom(realtime.LeaderboardRoom, realtime.Message{
			Type:    realtime.MessageLeaderboardUpdated,
			Payload: allTime,
			RoomID:  realtime.LeaderboardRoom,
		})
	}

	if round, err := s.rankingForScope(ctx, &roundID); err != nil {
		s.logger.Error("failed to recompute round ranking",
			slog.Int("round_id", roundID), slog.Any("error", err))
	} else {
		room := realtime.RoundRoom(roundID)
		s.broadcaster.BroadcastToRoom(room, realtime.Message{
			Type:    realtime.MessageLeaderboardUpdated,
			Payload: round,
			RoomID:  room,
		})
	}
}
