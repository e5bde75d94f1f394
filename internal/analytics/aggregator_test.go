package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/rollup"
	"github.com/mshibata/studyledger/internal/session"
)

type fakeRollupReader struct {
	rollups  []rollup.DailyRollup
	subjects []rollup.SubjectTime
}

func (f *fakeRollupReader) FindRange(ctx context.Context, userID string, from, to time.Time) ([]rollup.DailyRollup, error) {
	var out []rollup.DailyRollup
	for _, r := range f.rollups {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRollupReader) SumRange(ctx context.Context, userID string, from, to time.Time) (rollup.RangeTotals, error) {
	var totals rollup.RangeTotals
	rollups, _ := f.FindRange(ctx, userID, from, to)
	for _, r := range rollups {
		totals.TotalStudyTime += r.TotalStudyTime
		totals.TasksCompleted += r.TasksCompleted
		if r.StreakCount > totals.BestStreak {
			totals.BestStreak = r.StreakCount
		}
	}
	return totals, nil
}

func (f *fakeRollupReader) SubjectTotals(ctx context.Context, userID string, from, to time.Time, limit int) ([]rollup.SubjectTime, error) {
	if len(f.subjects) > limit {
		return f.subjects[:limit], nil
	}
	return f.subjects, nil
}

type fakeGoalReader struct {
	counts    goal.StatusCounts
	summaries []goal.Summary
}

func (f *fakeGoalReader) CountByStatus(ctx context.Context, userID string) (goal.StatusCounts, error) {
	return f.counts, nil
}

func (f *fakeGoalReader) RecentSummaries(ctx context.Context, userID string, limit int) ([]goal.Summary, error) {
	if len(f.summaries) > limit {
		return f.summaries[:limit], nil
	}
	return f.summaries, nil
}

type fakeSessionReader struct {
	avg      float64
	sessions []session.Session
}

func (f *fakeSessionReader) FindByRange(ctx context.Context, userID string, from, to time.Time) ([]session.Session, error) {
	var out []session.Session
	for _, s := range f.sessions {
		if !s.EndTime.Before(from) && !s.EndTime.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionReader) AverageEfficiency(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	return f.avg, nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func newTestAggregator(rollups *fakeRollupReader, goals *fakeGoalReader, sessions *fakeSessionReader, now time.Time) *Aggregator {
	a := NewAggregator(rollups, goals, sessions)
	a.now = func() time.Time { return now }
	return a
}

func TestAggregator_GetOverview(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("aggregates the week and compares against the previous one", func(t *testing.T) {
		rollups := &fakeRollupReader{rollups: []rollup.DailyRollup{
			{Date: day(2025, 3, 5), TotalStudyTime: 90, TasksCompleted: 1, StreakCount: 5},
			{Date: day(2025, 3, 10), TotalStudyTime: 120, TasksCompleted: 2, StreakCount: 3},
			{Date: day(2025, 3, 12), TotalStudyTime: 60, TasksCompleted: 1, StreakCount: 1},
		}}
		goals := &fakeGoalReader{counts: goal.StatusCounts{Total: 5, Completed: 2}}
		sessions := &fakeSessionReader{avg: 82.4}

		a := newTestAggregator(rollups, goals, sessions, now)
		overview, err := a.GetOverview(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)

		assert.Equal(t, RangeWeek, overview.TimeRange)
		assert.Equal(t, 180, overview.TotalStudyTime)
		assert.Equal(t, 3, overview.TasksCompleted)
		assert.Equal(t, 3, overview.BestStreak)
		// 180 this week against 90 the week before
		assert.Equal(t, 100, overview.StudyTimeChange)
		assert.Equal(t, 82, overview.AverageEfficiency)
		assert.Equal(t, 5, overview.TotalGoals)
		assert.Equal(t, 2, overview.CompletedGoals)
	})

	t.Run("no previous activity reports a full increase", func(t *testing.T) {
		rollups := &fakeRollupReader{rollups: []rollup.DailyRollup{
			{Date: day(2025, 3, 12), TotalStudyTime: 45, TasksCompleted: 1, StreakCount: 1},
		}}
		a := newTestAggregator(rollups, &fakeGoalReader{}, &fakeSessionReader{}, now)

		overview, err := a.GetOverview(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)
		assert.Equal(t, 100, overview.StudyTimeChange)
	})

	t.Run("no activity at all reports zero change", func(t *testing.T) {
		a := newTestAggregator(&fakeRollupReader{}, &fakeGoalReader{}, &fakeSessionReader{}, now)

		overview, err := a.GetOverview(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)
		assert.Equal(t, 0, overview.TotalStudyTime)
		assert.Equal(t, 0, overview.StudyTimeChange)
	})

	t.Run("study time dropped by half", func(t *testing.T) {
		rollups := &fakeRollupReader{rollups: []rollup.DailyRollup{
			{Date: day(2025, 3, 5), TotalStudyTime: 100, TasksCompleted: 2, StreakCount: 2},
			{Date: day(2025, 3, 12), TotalStudyTime: 50, TasksCompleted: 1, StreakCount: 1},
		}}
		a := newTestAggregator(rollups, &fakeGoalReader{}, &fakeSessionReader{}, now)

		overview, err := a.GetOverview(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)
		assert.Equal(t, -50, overview.StudyTimeChange)
	})
}

func TestAggregator_GetYearlyData(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	rollups := &fakeRollupReader{rollups: []rollup.DailyRollup{
		{Date: day(2025, 1, 1), TotalStudyTime: 30},
		{Date: day(2025, 3, 10), TotalStudyTime: 120},
	}}
	a := newTestAggregator(rollups, &fakeGoalReader{}, &fakeSessionReader{}, now)

	points, err := a.GetYearlyData(context.Background(), "user-1")
	require.NoError(t, err)

	// 2025 is not a leap year.
	require.Len(t, points, 365)
	assert.Equal(t, YearlyPoint{Date: "2025-01-01", StudyTime: 30}, points[0])
	assert.Equal(t, YearlyPoint{Date: "2025-01-02", StudyTime: 0}, points[1])
	assert.Equal(t, YearlyPoint{Date: "2025-12-31", StudyTime: 0}, points[364])

	found := false
	for _, p := range points {
		if p.Date == "2025-03-10" {
			assert.Equal(t, 120, p.StudyTime)
			found = true
		}
	}
	assert.True(t, found)
}

func TestAggregator_GetProductivityTrends(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	rollups := &fakeRollupReader{rollups: []rollup.DailyRollup{
		{
			Date:              day(2025, 3, 10),
			TotalStudyTime:    90,
			TasksCompleted:    1,
			TasksPlanned:      2,
			ProductivityScore: 55,
		},
		{
			Date:              day(2025, 3, 12),
			TotalStudyTime:    180,
			TasksCompleted:    2,
			TasksPlanned:      2,
			ProductivityScore: 100,
		},
	}}
	a := newTestAggregator(rollups, &fakeGoalReader{}, &fakeSessionReader{}, now)

	points, err := a.GetProductivityTrends(context.Background(), "user-1", RangeWeek)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2025-03-10", points[0].Date)
	assert.Equal(t, 55, points[0].Score)
	assert.Equal(t, 50, points[0].Factors.Completion)
	assert.Equal(t, 50, points[0].Factors.Volume)
	// (55 - 0.4*50 - 0.3*50) / 0.3
	assert.Equal(t, 67, points[0].Factors.Efficiency)

	assert.Equal(t, 100, points[1].Score)
	assert.Equal(t, 100, points[1].Factors.Completion)
	assert.Equal(t, 100, points[1].Factors.Volume)
	assert.Equal(t, 100, points[1].Factors.Efficiency)

	// Same stored rollup always derives the same factors.
	again, err := a.GetProductivityTrends(context.Background(), "user-1", RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, points, again)
}

func TestAggregator_GetRecentSessions(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("returns only sessions inside the window", func(t *testing.T) {
		sessions := &fakeSessionReader{sessions: []session.Session{
			{ID: "s-2", Subject: "math", EndTime: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), Duration: 60},
			{ID: "s-1", Subject: "physics", EndTime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), Duration: 30},
		}}
		a := newTestAggregator(&fakeRollupReader{}, &fakeGoalReader{}, sessions, now)

		got, err := a.GetRecentSessions(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "s-2", got[0].ID)
	})

	t.Run("caps the listing at ten", func(t *testing.T) {
		reader := &fakeSessionReader{}
		for i := 0; i < 12; i++ {
			reader.sessions = append(reader.sessions, session.Session{
				ID:      fmt.Sprintf("s-%d", i),
				EndTime: time.Date(2025, 3, 12, 8+i%4, 0, 0, 0, time.UTC),
			})
		}
		a := newTestAggregator(&fakeRollupReader{}, &fakeGoalReader{}, reader, now)

		got, err := a.GetRecentSessions(context.Background(), "user-1", RangeWeek)
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})
}

func TestAggregator_GetReport(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	targetDate := day(2025, 6, 1)

	rollups := &fakeRollupReader{
		rollups: []rollup.DailyRollup{
			{Date: day(2025, 3, 10), TotalStudyTime: 120, TasksCompleted: 2, TasksPlanned: 2, ProductivityScore: 87, StreakCount: 1},
		},
		subjects: []rollup.SubjectTime{{Subject: "math", TimeSpent: 120}},
	}
	goals := &fakeGoalReader{
		counts: goal.StatusCounts{Total: 2, Completed: 1},
		summaries: []goal.Summary{
			{ID: "goal-1", Title: "Pass the entrance exam", Status: goal.StatusActive, Progress: 50, TargetDate: &targetDate},
		},
	}
	sessions := &fakeSessionReader{avg: 95, sessions: []session.Session{
		{ID: "s-1", Subject: "math", EndTime: time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), Duration: 120},
	}}
	a := newTestAggregator(rollups, goals, sessions, now)

	report, err := a.GetReport(context.Background(), "user-1", RangeWeek)
	require.NoError(t, err)

	require.NotNil(t, report.Overview)
	assert.Equal(t, 120, report.Overview.TotalStudyTime)
	assert.Equal(t, 95, report.Overview.AverageEfficiency)
	assert.Len(t, report.YearlyData, 365)
	require.Len(t, report.GoalProgress, 1)
	assert.Equal(t, "Pass the entrance exam", report.GoalProgress[0].Title)
	require.Len(t, report.SubjectStats, 1)
	assert.Equal(t, "math", report.SubjectStats[0].Subject)
	require.Len(t, report.ProductivityTrends, 1)
	assert.Equal(t, 87, report.ProductivityTrends[0].Score)
	require.Len(t, report.RecentSessions, 1)
	assert.Equal(t, "s-1", report.RecentSessions[0].ID)
}
