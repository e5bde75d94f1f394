package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	completedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		plannedDuration int
		actualDuration  int
		wantStart       time.Time
		wantEfficiency  int
	}{
		{
			name:            "on plan",
			plannedDuration: 60,
			actualDuration:  60,
			wantStart:       time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC),
			wantEfficiency:  100,
		},
		{
			name:            "overran the plan",
			plannedDuration: 60,
			actualDuration:  90,
			wantStart:       time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
			wantEfficiency:  67,
		},
		{
			name:            "finished early caps at 100",
			plannedDuration: 60,
			actualDuration:  30,
			wantStart:       time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
			wantEfficiency:  100,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := New("user-1", "task-1", "math", tc.plannedDuration, tc.actualDuration, completedAt, nil, "")

			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "user-1", got.UserID)
			assert.Equal(t, "task-1", got.TaskID)
			assert.Equal(t, "math", got.Subject)
			assert.Equal(t, tc.wantStart, got.StartTime)
			assert.Equal(t, completedAt, got.EndTime)
			assert.Equal(t, tc.actualDuration, got.Duration)
			assert.Equal(t, tc.plannedDuration, got.PlannedDuration)
			assert.Equal(t, tc.wantEfficiency, got.Efficiency)
		})
	}
}

func TestNew_OptionalFields(t *testing.T) {
	completedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	rating := 4

	got := New("user-1", "task-1", "math", 30, 30, completedAt, &rating, "good focus")
	require.NotNil(t, got.FocusRating)
	assert.Equal(t, 4, *got.FocusRating)
	assert.Equal(t, "good focus", got.Notes)
}
