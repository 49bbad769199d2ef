package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gameFixture struct {
	games       *fakeGameRepo
	teams       *fakeTeamRepo
	results     *fakeResultRepo
	predictions *fakePredictionRepo
	service     GameService
}

func newGameFixture() *gameFixture {
	games := newFakeGameRepo()
	teams := newFakeTeamRepo()
	results := newFakeResultRepo()
	predictions := newFakePredictionRepo(games)
	teams.put(&models.Team{ID: 1, Name: "Hawks"})
	teams.put(&models.Team{ID: 2, Name: "Bulls"})
	return &gameFixture{
		games:       games,
		teams:       teams,
		results:     results,
		predictions: predictions,
		service:     NewGameService(games, teams, results, predictions),
	}
}

func TestCreateGame_SameTeamsRejected(t *testing.T) {
	f := newGameFixture()

	_, err := f.service.CreateGame(context.Background(), GameInput{
		RoundID: 1, HomeTeamID: 1, AwayTeamID: 1, StartTime: time.Now(),
	})
	assert.ErrorIs(t, err, ErrGameSameTeams)
}

func TestCreateGame_StartTimeRequired(t *testing.T) {
	f := newGameFixture()

	_, err := f.service.CreateGame(context.Background(), GameInput{
		RoundID: 1, HomeTeamID: 1, AwayTeamID: 2,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGetGame_EnrichesTeamsAndToleratesMissingResult(t *testing.T) {
	f := newGameFixture()
	f.games.put(&models.Game{ID: 7, RoundID: 1, HomeTeamID: 1, AwayTeamID: 2, StartTime: time.Now()})

	game, err := f.service.GetGame(context.Background(), 7)
	require.NoError(t, err)

	require.NotNil(t, game.HomeTeam)
	require.NotNil(t, game.AwayTeam)
	assert.Equal(t, "Hawks", game.HomeTeam.Name)
	assert.Equal(t, "Bulls", game.AwayTeam.Name)
	assert.Nil(t, game.Result)
}

func TestUpdateGame_RescheduleWithPredictionsRejected(t *testing.T) {
	f := newGameFixture()
	start := time.Now().Add(48 * time.Hour)
	f.games.put(&models.Game{ID: 7, RoundID: 1, HomeTeamID: 1, AwayTeamID: 2, StartTime: start})
	require.NoError(t, f.predictions.Create(context.Background(), &models.Prediction{
		UserID: 1, GameID: 7, PredHomeScore: 100, PredAwayScore: 95,
	}))

	_, err := f.service.UpdateGame(context.Background(), 7, GameInput{
		RoundID: 1, HomeTeamID: 1, AwayTeamID: 2, StartTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrGameAlreadyPredicted)

	// Правка без переноса времени разрешена и при существующих прогнозах.
	updated, err := f.service.UpdateGame(context.Background(), 7, GameInput{
		RoundID: 2, HomeTeamID: 1, AwayTeamID: 2, StartTime: start,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.RoundID)
}

func TestUpdateGame_NotFound(t *testing.T) {
	f := newGameFixture()

	_, err := f.service.UpdateGame(context.Background(), 99, GameInput{
		RoundID: 1, HomeTeamID: 1, AwayTeamID: 2, StartTime: time.Now(),
	})
	assert.ErrorIs(t, err, ErrGameNotFound)
}
