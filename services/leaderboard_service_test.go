package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaderboardFixture struct {
	games       *fakeGameRepo
	predictions *fakePredictionRepo
	users       *fakeUserRepo
	rounds      *fakeRoundRepo
	broadcaster *fakeBroadcaster
	service     LeaderboardService
}

func newLeaderboardFixture() *leaderboardFixture {
	games := newFakeGameRepo()
	predictions := newFakePredictionRepo(games)
	users := newFakeUserRepo()
	rounds := newFakeRoundRepo()
	broadcaster := newFakeBroadcaster()
	return &leaderboardFixture{
		games:       games,
		predictions: predictions,
		users:       users,
		rounds:      rounds,
		broadcaster: broadcaster,
		service:     NewLeaderboardService(predictions, users, rounds, broadcaster, discardLogger()),
	}
}

func strPtr(s string) *string { return &s }

func (f *leaderboardFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	f.users.put(&models.User{ID: 1, Nickname: strPtr("alpha"), Email: "a@example.com"})
	f.users.put(&models.User{ID: 2, Nickname: strPtr("beta"), Email: "b@example.com"})

	f.rounds.put(&models.Round{ID: 1, Name: "Round 1"})
	f.rounds.put(&models.Round{ID: 2, Name: "Round 2"})

	f.games.put(&models.Game{ID: 1, RoundID: 1})
	f.games.put(&models.Game{ID: 2, RoundID: 2})

	mk := func(userID, gameID, points int, offset time.Duration) {
		p := &models.Prediction{
			UserID: userID, GameID: gameID,
			PredHomeScore: 1, PredAwayScore: 0,
			CreatedAt: time.Now().Add(offset),
		}
		require.NoError(t, f.predictions.Create(ctx, p))
		require.NoError(t, f.predictions.UpdatePoints(ctx, nil, p.ID, points))
	}

	mk(1, 1, 34, -time.Hour)
	mk(1, 2, 50, -time.Minute)
	mk(2, 1, 40, -2*time.Hour)
}

func TestGetAllTimeRanking(t *testing.T) {
	f := newLeaderboardFixture()
	f.seed(t)

	standings, err := f.service.GetAllTimeRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, 1, standings[0].UserID)
	assert.Equal(t, 84, standings[0].TotalPoints)
	assert.Equal(t, 1, standings[0].Rank)
	require.NotNil(t, standings[0].Nickname)
	assert.Equal(t, "alpha", *standings[0].Nickname)

	assert.Equal(t, 2, standings[1].UserID)
	assert.Equal(t, 40, standings[1].TotalPoints)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestGetRoundRanking_ScopesToRound(t *testing.T) {
	f := newLeaderboardFixture()
	f.seed(t)

	standings, err := f.service.GetRoundRanking(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	// В туре 1 у пользователя 2 больше очков, чем у пользователя 1.
	assert.Equal(t, 2, standings[0].UserID)
	assert.Equal(t, 40, standings[0].TotalPoints)
	assert.Equal(t, 1, standings[1].UserID)
	assert.Equal(t, 34, standings[1].TotalPoints)
}

func TestGetRoundRanking_UnknownRound(t *testing.T) {
	f := newLeaderboardFixture()
	f.seed(t)

	_, err := f.service.GetRoundRanking(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestGetUserStats(t *testing.T) {
	f := newLeaderboardFixture()
	f.seed(t)

	stats, err := f.service.GetUserStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 84, stats.TotalPoints)
	assert.Equal(t, 2, stats.TotalPredictions)
	assert.Equal(t, 2, stats.ScoredPredictions)
	assert.Equal(t, 42.0, stats.PointsPerGame)
	assert.Equal(t, 1, stats.Rank)
}

func TestGetUserStats_NoPredictions(t *testing.T) {
	f := newLeaderboardFixture()
	f.users.put(&models.User{ID: 9, Nickname: strPtr("ghost"), Email: "g@example.com"})

	stats, err := f.service.GetUserStats(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, 9, stats.UserID)
	assert.Equal(t, 0, stats.TotalPoints)
	assert.Equal(t, 0, stats.TotalPredictions)
	assert.Equal(t, 0, stats.Rank)
	require.NotNil(t, stats.Nickname)
	assert.Equal(t, "ghost", *stats.Nickname)
}

func TestGetUserStats_UnknownUser(t *testing.T) {
	f := newLeaderboardFixture()

	_, err := f.service.GetUserStats(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPublishUpdate_BroadcastsBothScopes(t *testing.T) {
	f := newLeaderboardFixture()
	f.seed(t)

	f.service.PublishUpdate(context.Background(), 1)

	allTime := f.broadcaster.roomMessages(realtime.LeaderboardRoom)
	require.Len(t, allTime, 1)
	msg, ok := allTime[0].(realtime.Message)
	require.True(t, ok)
	assert.Equal(t, realtime.MessageLeaderboardUpdated, msg.Type)

	round := f.broadcaster.roomMessages(realtime.RoundRoom(1))
	require.Len(t, round, 1)
}
