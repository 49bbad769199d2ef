package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanSubmit(t *testing.T) {
	start := time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		now           time.Time
		hasPrediction bool
		resultFinal   bool
		want          bool
	}{
		{
			name: "well before cutoff",
			now:  start.Add(-3 * time.Hour),
			want: true,
		},
		{
			name: "30 minutes before start is past cutoff",
			now:  start.Add(-30 * time.Minute),
			want: false,
		},
		{
			name: "exactly at cutoff is closed",
			now:  start.Add(-SubmissionCutoff),
			want: false,
		},
		{
			name: "one second before cutoff is open",
			now:  start.Add(-SubmissionCutoff - time.Second),
			want: true,
		},
		{
			name: "after game start",
			now:  start.Add(time.Minute),
			want: false,
		},
		{
			name:          "existing prediction blocks resubmission",
			now:           start.Add(-3 * time.Hour),
			hasPrediction: true,
			want:          false,
		},
		{
			name:        "final result closes submissions regardless of clock",
			now:         start.Add(-3 * time.Hour),
			resultFinal: true,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanSubmit(tt.now, start, tt.hasPrediction, tt.resultFinal)
			assert.Equal(t, tt.want, got)
		})
	}
}
