package scoring

import (
	"testing"

	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prediction(home, away int) *models.Prediction {
	return &models.Prediction{PredHomeScore: home, PredAwayScore: away}
}

func result(home, away int) *models.Result {
	return &models.Result{HomeScore: home, AwayScore: away}
}

func TestComputePoints_WorkedExample(t *testing.T) {
	// Прогноз 81-88, результат 79-84: гости выиграли в обоих случаях.
	// predDiff=7, actualDiff=5, разрыв 2 -> 15; хозяева |81-79|=2 -> 8;
	// гости |88-84|=4 -> 6. Итого 5+15+8+6 = 34.
	b, err := ComputePoints(prediction(81, 88), result(79, 84))
	require.NoError(t, err)

	assert.Equal(t, 5, b.Winner)
	assert.Equal(t, 15, b.Diff)
	assert.Equal(t, 8, b.Home)
	assert.Equal(t, 6, b.Away)
	assert.Equal(t, 34, b.Total)
}

func TestComputePoints_PerfectPrediction(t *testing.T) {
	b, err := ComputePoints(prediction(101, 97), result(101, 97))
	require.NoError(t, err)

	assert.Equal(t, MaxPoints, b.Total)
	assert.Equal(t, 5, b.Winner)
	assert.Equal(t, 25, b.Diff)
	assert.Equal(t, 10, b.Home)
	assert.Equal(t, 10, b.Away)
}

func TestComputePoints_WrongWinnerZeroesEverything(t *testing.T) {
	// Прогноз на хозяев, выиграли гости: ноль по всем компонентам,
	// как бы близко ни был угадан счёт.
	b, err := ComputePoints(prediction(90, 80), result(78, 85))
	require.NoError(t, err)

	assert.Equal(t, PointsBreakdown{}, b)
}

func TestComputePoints_TieIsSeparateOutcome(t *testing.T) {
	// Прогноз ничьей против победы хозяев — исход не угадан.
	b, err := ComputePoints(prediction(80, 80), result(90, 85))
	require.NoError(t, err)
	assert.Equal(t, 0, b.Total)

	// Ничья против ничьей — исход угадан.
	b, err = ComputePoints(prediction(80, 80), result(95, 95))
	require.NoError(t, err)
	assert.Equal(t, 5, b.Winner)
}

func TestComputePoints_TableGapCutoffs(t *testing.T) {
	tests := []struct {
		name      string
		pred      *models.Prediction
		res       *models.Result
		wantDiff  int
		wantHome  int
		wantAway  int
		wantTotal int
	}{
		{
			name: "margin gap 10 and beyond earns nothing",
			// predDiff=20, actualDiff=10 -> разрыв 10.
			pred: prediction(100, 80), res: result(95, 85),
			wantDiff: 0, wantHome: 5, wantAway: 5, wantTotal: 15,
		},
		{
			name: "margin gap 9 earns the last point",
			// predDiff=19, actualDiff=10 -> разрыв 9.
			pred: prediction(100, 81), res: result(95, 85),
			wantDiff: 1, wantHome: 5, wantAway: 6, wantTotal: 17,
		},
		{
			name: "side gap 10 earns nothing",
			pred: prediction(100, 90), res: result(90, 80),
			wantDiff: 25, wantHome: 0, wantAway: 0, wantTotal: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ComputePoints(tt.pred, tt.res)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiff, b.Diff)
			assert.Equal(t, tt.wantHome, b.Home)
			assert.Equal(t, tt.wantAway, b.Away)
			assert.Equal(t, tt.wantTotal, b.Total)
		})
	}
}

func TestComputePoints_NegativeScoreRejected(t *testing.T) {
	_, err := ComputePoints(prediction(-1, 80), result(90, 85))
	assert.ErrorIs(t, err, ErrNegativeScore)

	_, err = ComputePoints(prediction(90, 80), result(-3, 85))
	assert.ErrorIs(t, err, ErrNegativeScore)
}

func TestComputePoints_Deterministic(t *testing.T) {
	first, err := ComputePoints(prediction(81, 88), result(79, 84))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := ComputePoints(prediction(81, 88), result(79, 84))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputePoints_NeverExceedsMax(t *testing.T) {
	for homePred := 0; homePred <= 5; homePred++ {
		for awayPred := 0; awayPred <= 5; awayPred++ {
			b, err := ComputePoints(prediction(homePred, awayPred), result(3, 2))
			require.NoError(t, err)
			assert.LessOrEqual(t, b.Total, MaxPoints)
			assert.GreaterOrEqual(t, b.Total, 0)
		}
	}
}
