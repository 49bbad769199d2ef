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

type resultFixture struct {
	games       *fakeGameRepo
	results     *fakeResultRepo
	notifier    *fakeNotifier
	broadcaster *fakeBroadcaster
	service     ResultService
}

func newResultFixture() *resultFixture {
	games := newFakeGameRepo()
	results := newFakeResultRepo()
	notifier := &fakeNotifier{}
	broadcaster := newFakeBroadcaster()
	games.put(&models.Game{ID: 1, RoundID: 1, StartTime: time.Now()})
	return &resultFixture{
		games:       games,
		results:     results,
		notifier:    notifier,
		broadcaster: broadcaster,
		service:     NewResultService(results, games, notifier, broadcaster),
	}
}

func TestRecordResult_ProvisionalDoesNotNotify(t *testing.T) {
	f := newResultFixture()

	result, err := f.service.RecordResult(context.Background(), 1, ResultInput{
		HomeScore: intp(100), AwayScore: intp(95), IsFinal: false,
	})
	require.NoError(t, err)

	assert.False(t, result.IsFinal)
	assert.Empty(t, f.notifier.notified())
}

func TestRecordResult_FinalNotifies(t *testing.T) {
	f := newResultFixture()

	result, err := f.service.RecordResult(context.Background(), 1, ResultInput{
		HomeScore: intp(100), AwayScore: intp(95), IsFinal: true,
	})
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, []int{1}, f.notifier.notified())
}

func TestRecordResult_Duplicate(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(100), AwayScore: intp(95)})
	require.NoError(t, err)

	_, err = f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(90), AwayScore: intp(85)})
	assert.ErrorIs(t, err, ErrResultExists)
}

func TestRecordResult_MissingScores(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{AwayScore: intp(95)})
	assert.ErrorIs(t, err, ErrResultScoresNeeded)

	_, err = f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(100)})
	assert.ErrorIs(t, err, ErrResultScoresNeeded)
}

func TestRecordResult_NegativeScores(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(-2), AwayScore: intp(95)})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCorrectResult_FinalityCannotBeRevoked(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{
		HomeScore: intp(100), AwayScore: intp(95), IsFinal: true,
	})
	require.NoError(t, err)

	// Попытка снять финальность при исправлении счёта игнорируется.
	corrected, err := f.service.CorrectResult(context.Background(), 1, ResultInput{
		HomeScore: intp(98), AwayScore: intp(99), IsFinal: false,
	})
	require.NoError(t, err)

	assert.True(t, corrected.IsFinal)
	assert.Equal(t, 98, corrected.HomeScore)
	assert.Equal(t, 99, corrected.AwayScore)
	// Запись и исправление — два события пересчёта.
	assert.Equal(t, []int{1, 1}, f.notifier.notified())
}

func TestCorrectResult_ProvisionalStaysSilent(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(100), AwayScore: intp(95)})
	require.NoError(t, err)

	_, err = f.service.CorrectResult(context.Background(), 1, ResultInput{HomeScore: intp(90), AwayScore: intp(85)})
	require.NoError(t, err)

	assert.Empty(t, f.notifier.notified())
}

func TestFinalizeResult_IsIdempotent(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{HomeScore: intp(100), AwayScore: intp(95)})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := f.service.FinalizeResult(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, result.IsFinal)
	}

	// Каждая финализация публикует событие: пересчёт идемпотентен.
	assert.Equal(t, []int{1, 1}, f.notifier.notified())
}

func TestFinalizeResult_MissingResult(t *testing.T) {
	f := newResultFixture()

	_, err := f.service.FinalizeResult(context.Background(), 1)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultEventsAreBroadcastToRoundRoom(t *testing.T) {
	f := newResultFixture()
	room := realtime.RoundRoom(1)

	_, err := f.service.RecordResult(context.Background(), 1, ResultInput{
		HomeScore: intp(100), AwayScore: intp(95), IsFinal: true,
	})
	require.NoError(t, err)

	messages := f.broadcaster.roomMessages(room)
	require.Len(t, messages, 1)
	msg, ok := messages[0].(realtime.Message)
	require.True(t, ok)
	assert.Equal(t, realtime.MessageResultFinalized, msg.Type)

	_, err = f.service.CorrectResult(context.Background(), 1, ResultInput{
		HomeScore: intp(98), AwayScore: intp(95), IsFinal: true,
	})
	require.NoError(t, err)

	messages = f.broadcaster.roomMessages(room)
	require.Len(t, messages, 2)
	msg, ok = messages[1].(realtime.Message)
	require.True(t, ok)
	assert.Equal(t, realtime.MessageResultCorrected, msg.Type)
}
