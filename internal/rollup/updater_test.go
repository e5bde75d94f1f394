package rollup

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlannedCounter struct {
	counts map[string]int
}

func (f *fakePlannedCounter) CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error) {
	return f.counts[day.Format(time.DateOnly)], nil
}

type fakeRepository struct {
	Repository

	rollups  map[string]*DailyRollup
	subjects map[string]int
	nextID   int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		rollups:  map[string]*DailyRollup{},
		subjects: map[string]int{},
		nextID:   1,
	}
}

func (f *fakeRepository) key(userID string, day time.Time) string {
	return userID + "/" + day.Format(time.DateOnly)
}

func (f *fakeRepository) FindByDay(ctx context.Context, userID string, day time.Time) (*DailyRollup, error) {
	rollup, ok := f.rollups[f.key(userID, day)]
	if !ok {
		return nil, nil
	}
	copied := *rollup
	return &copied, nil
}

func (f *fakeRepository) ApplyCompletion(ctx context.Context, userID string, day time.Time, minutes int) error {
	key := f.key(userID, day)
	rollup, ok := f.rollups[key]
	if !ok {
		rollup = &DailyRollup{ID: f.nextID, UserID: userID, Date: day}
		f.nextID++
		f.rollups[key] = rollup
	}
	rollup.TotalStudyTime += minutes
	rollup.TasksCompleted++
	return nil
}

func (f *fakeRepository) AddSubjectTime(ctx context.Context, rollupID int64, subject string, minutes int) error {
	f.subjects[subject] += minutes
	return nil
}

func (f *fakeRepository) SubjectBreakdown(ctx context.Context, rollupID int64) ([]SubjectTime, error) {
	breakdown := make([]SubjectTime, 0, len(f.subjects))
	for subject, minutes := range f.subjects {
		breakdown = append(breakdown, SubjectTime{Subject: subject, TimeSpent: minutes})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].TimeSpent > breakdown[j].TimeSpent })
	return breakdown, nil
}

func (f *fakeRepository) UpsertPlanned(ctx context.Context, userID string, day time.Time, planned int) error {
	key := f.key(userID, day)
	rollup, ok := f.rollups[key]
	if !ok {
		rollup = &DailyRollup{ID: f.nextID, UserID: userID, Date: day}
		f.nextID++
		f.rollups[key] = rollup
	}
	rollup.TasksPlanned = planned
	return nil
}

func (f *fakeRepository) UpdatePlanned(ctx context.Context, userID string, day time.Time, planned int) error {
	if rollup, ok := f.rollups[f.key(userID, day)]; ok {
		rollup.TasksPlanned = planned
	}
	return nil
}

func (f *fakeRepository) UpdateDerived(ctx context.Context, userID string, day time.Time, planned, score, streak int) error {
	rollup, ok := f.rollups[f.key(userID, day)]
	if !ok {
		return nil
	}
	rollup.TasksPlanned = planned
	rollup.ProductivityScore = score
	rollup.StreakCount = streak
	return nil
}

func TestUpdater_TaskScheduled(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	repo := newFakeRepository()
	counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 3}}
	updater := NewUpdater(counter, repo, 180)

	require.NoError(t, updater.TaskScheduled(ctx, "user-1", day.Add(9*time.Hour)))

	rollup, err := repo.FindByDay(ctx, "user-1", day)
	require.NoError(t, err)
	require.NotNil(t, rollup)
	assert.Equal(t, 3, rollup.TasksPlanned)

	// A repeated recount converges instead of double counting.
	require.NoError(t, updater.TaskScheduled(ctx, "user-1", day))
	rollup, err = repo.FindByDay(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 3, rollup.TasksPlanned)
}

func TestUpdater_TaskDeleted(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("updates an existing rollup", func(t *testing.T) {
		repo := newFakeRepository()
		require.NoError(t, repo.UpsertPlanned(ctx, "user-1", day, 4))

		counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 3}}
		updater := NewUpdater(counter, repo, 180)
		require.NoError(t, updater.TaskDeleted(ctx, "user-1", day))

		rollup, err := repo.FindByDay(ctx, "user-1", day)
		require.NoError(t, err)
		assert.Equal(t, 3, rollup.TasksPlanned)
	})

	t.Run("does not create a rollup", func(t *testing.T) {
		repo := newFakeRepository()
		counter := &fakePlannedCounter{counts: map[string]int{}}
		updater := NewUpdater(counter, repo, 180)
		require.NoError(t, updater.TaskDeleted(ctx, "user-1", day))

		rollup, err := repo.FindByDay(ctx, "user-1", day)
		require.NoError(t, err)
		assert.Nil(t, rollup)
	})
}

func TestUpdater_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	completedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	day := DayKey(completedAt)

	t.Run("first completion of the day", func(t *testing.T) {
		repo := newFakeRepository()
		counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 2}}
		updater := NewUpdater(counter, repo, 180)

		rollup, err := updater.RecordCompletion(ctx, "user-1", "math", 60, 90, completedAt)
		require.NoError(t, err)
		require.NotNil(t, rollup)

		assert.Equal(t, 90, rollup.TotalStudyTime)
		assert.Equal(t, 1, rollup.TasksCompleted)
		assert.Equal(t, 2, rollup.TasksPlanned)
		assert.Equal(t, 1, rollup.StreakCount)
		// 0.4*50 + 0.3*67 + 0.3*50 = 55.1
		assert.Equal(t, 55, rollup.ProductivityScore)
		assert.Equal(t, 90, repo.subjects["math"])
		assert.Equal(t, []SubjectTime{{Subject: "math", TimeSpent: 90}}, rollup.SubjectBreakdown)
	})

	t.Run("second completion accumulates", func(t *testing.T) {
		repo := newFakeRepository()
		counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 2}}
		updater := NewUpdater(counter, repo, 180)

		_, err := updater.RecordCompletion(ctx, "user-1", "math", 60, 90, completedAt)
		require.NoError(t, err)
		rollup, err := updater.RecordCompletion(ctx, "user-1", "physics", 60, 60, completedAt)
		require.NoError(t, err)

		assert.Equal(t, 150, rollup.TotalStudyTime)
		assert.Equal(t, 2, rollup.TasksCompleted)
		// 0.4*100 + 0.3*100 + 0.3*(150/180*100) = 95
		assert.Equal(t, 95, rollup.ProductivityScore)
		assert.ElementsMatch(t, []SubjectTime{
			{Subject: "math", TimeSpent: 90},
			{Subject: "physics", TimeSpent: 60},
		}, rollup.SubjectBreakdown)
	})

	t.Run("continues yesterday's streak", func(t *testing.T) {
		repo := newFakeRepository()
		yesterday := day.AddDate(0, 0, -1)
		require.NoError(t, repo.ApplyCompletion(ctx, "user-1", yesterday, 30))
		repo.rollups[repo.key("user-1", yesterday)].StreakCount = 6

		counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 1}}
		updater := NewUpdater(counter, repo, 180)

		rollup, err := updater.RecordCompletion(ctx, "user-1", "math", 30, 30, completedAt)
		require.NoError(t, err)
		assert.Equal(t, 7, rollup.StreakCount)
	})

	t.Run("gap day restarts the streak", func(t *testing.T) {
		repo := newFakeRepository()
		twoDaysAgo := day.AddDate(0, 0, -2)
		require.NoError(t, repo.ApplyCompletion(ctx, "user-1", twoDaysAgo, 30))
		repo.rollups[repo.key("user-1", twoDaysAgo)].StreakCount = 9

		counter := &fakePlannedCounter{counts: map[string]int{"2025-03-10": 1}}
		updater := NewUpdater(counter, repo, 180)

		rollup, err := updater.RecordCompletion(ctx, "user-1", "math", 30, 30, completedAt)
		require.NoError(t, err)
		assert.Equal(t, 1, rollup.StreakCount)
	})
}
