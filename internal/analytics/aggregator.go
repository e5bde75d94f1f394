package analytics

import (
	"context"
	"math"
	"time"

	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/rollup"
	"github.com/mshibata/studyledger/internal/session"
)

const goalProgressLimit = 10

const subjectStatsLimit = 10

const recentSessionsLimit = 10

// RollupReader is the rollup access the aggregator needs.
type RollupReader interface {
	FindRange(ctx context.Context, userID string, from, to time.Time) ([]rollup.DailyRollup, error)
	SumRange(ctx context.Context, userID string, from, to time.Time) (rollup.RangeTotals, error)
	SubjectTotals(ctx context.Context, userID string, from, to time.Time, limit int) ([]rollup.SubjectTime, error)
}

// GoalReader is the goal access the aggregator needs.
type GoalReader interface {
	CountByStatus(ctx context.Context, userID string) (goal.StatusCounts, error)
	RecentSummaries(ctx context.Context, userID string, limit int) ([]goal.Summary, error)
}

// SessionReader is the session access the aggregator needs.
type SessionReader interface {
	FindByRange(ctx context.Context, userID string, from, to time.Time) ([]session.Session, error)
	AverageEfficiency(ctx context.Context, userID string, from, to time.Time) (float64, error)
}

// Aggregator answers read-only analytics queries. It never writes; all
// derived state is computed eagerly at completion time and only re-shaped
// here. A missing rollup for any day is a zero-value day, never an error.
type Aggregator struct {
	rollups  RollupReader
	goals    GoalReader
	sessions SessionReader
	now      func() time.Time
}

// NewAggregator creates a new Aggregator.
func NewAggregator(rollups RollupReader, goals GoalReader, sessions SessionReader) *Aggregator {
	return &Aggregator{
		rollups:  rollups,
		goals:    goals,
		sessions: sessions,
		now:      time.Now,
	}
}

// Overview summarizes a user's activity over a time range.
type Overview struct {
	TimeRange         TimeRange `json:"timeRange"`
	TotalStudyTime    int       `json:"totalStudyTime"`
	TasksCompleted    int       `json:"tasksCompleted"`
	BestStreak        int       `json:"bestStreak"`
	StudyTimeChange   int       `json:"studyTimeChange"`
	AverageEfficiency int       `json:"averageEfficiency"`
	TotalGoals        int       `json:"totalGoals"`
	CompletedGoals    int       `json:"completedGoals"`
}

// GetOverview aggregates the current window, compares study time against the
// symmetric previous window, and reports all-time goal counts regardless of
// the range.
func (a *Aggregator) GetOverview(ctx context.Context, userID string, timeRange TimeRange) (*Overview, error) {
	now := a.now()
	start, end := timeRange.Window(now)
	previousStart, previousEnd := timeRange.PreviousWindow(now)

	current, err := a.rollups.SumRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	previous, err := a.rollups.SumRange(ctx, userID, previousStart, previousEnd)
	if err != nil {
		return nil, err
	}
	goalCounts, err := a.goals.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	avgEfficiency, err := a.sessions.AverageEfficiency(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &Overview{
		TimeRange:         timeRange,
		TotalStudyTime:    current.TotalStudyTime,
		TasksCompleted:    current.TasksCompleted,
		BestStreak:        current.BestStreak,
		StudyTimeChange:   rollup.PercentageChange(current.TotalStudyTime, previous.TotalStudyTime),
		AverageEfficiency: int(math.Round(avgEfficiency)),
		TotalGoals:        goalCounts.Total,
		CompletedGoals:    goalCounts.Completed,
	}, nil
}

// YearlyPoint is one day of the dense yearly series.
type YearlyPoint struct {
	Date      string `json:"date"`
	StudyTime int    `json:"studyTime"`
}

// GetYearlyData returns one point per calendar day of the current year,
// zero-filled for days without a rollup.
func (a *Aggregator) GetYearlyData(ctx context.Context, userID string) ([]YearlyPoint, error) {
	year := a.now().UTC().Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	rollups, err := a.rollups.FindRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(rollups))
	for _, r := range rollups {
		byDay[r.Date.Format(time.DateOnly)] = r.TotalStudyTime
	}

	points := make([]YearlyPoint, 0, 366)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		points = append(points, YearlyPoint{Date: key, StudyTime: byDay[key]})
	}
	return points, nil
}

// GetGoalProgress returns up to 10 most-recently-updated active or completed
// goals as summaries.
func (a *Aggregator) GetGoalProgress(ctx context.Context, userID string) ([]goal.Summary, error) {
	return a.goals.RecentSummaries(ctx, userID, goalProgressLimit)
}

// GetSubjectStats flattens subject breakdowns across the range and returns
// the top 10 subjects by time spent.
func (a *Aggregator) GetSubjectStats(ctx context.Context, userID string, timeRange TimeRange) ([]rollup.SubjectTime, error) {
	start, end := timeRange.Window(a.now())
	return a.rollups.SubjectTotals(ctx, userID, start, end, subjectStatsLimit)
}

// GetRecentSessions returns the newest sessions ending within the range,
// capped at 10. Session end times carry a time of day, so the window extends
// one day past the last day key.
func (a *Aggregator) GetRecentSessions(ctx context.Context, userID string, timeRange TimeRange) ([]session.Session, error) {
	start, end := timeRange.Window(a.now())
	sessions, err := a.sessions.FindByRange(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(sessions) > recentSessionsLimit {
		sessions = sessions[:recentSessionsLimit]
	}
	return sessions, nil
}

// TrendFactors breaks a day's productivity score into its components. The
// values are derived from the stored rollup, so identical inputs always
// produce identical output.
type TrendFactors struct {
	Completion int `json:"completion"`
	Efficiency int `json:"efficiency"`
	Volume     int `json:"volume"`
}

// TrendPoint is one day of the productivity trend.
type TrendPoint struct {
	Date    string       `json:"date"`
	Score   int          `json:"score"`
	Factors TrendFactors `json:"factors"`
}

// GetProductivityTrends returns one point per rollup day in the range with
// the stored productivity score and its derived factor breakdown.
func (a *Aggregator) GetProductivityTrends(ctx context.Context, userID string, timeRange TimeRange) ([]TrendPoint, error) {
	start, end := timeRange.Window(a.now())
	rollups, err := a.rollups.FindRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(rollups))
	for _, r := range rollups {
		points = append(points, TrendPoint{
			Date:    r.Date.Format(time.DateOnly),
			Score:   r.ProductivityScore,
			Factors: deriveFactors(r),
		})
	}
	return points, nil
}

// deriveFactors reconstructs the score components from the persisted rollup.
// The completion and volume terms recompute directly; the efficiency term is
// solved from the score equation since the triggering task's durations are
// not stored on the rollup.
func deriveFactors(r rollup.DailyRollup) TrendFactors {
	completion := 100.0
	if r.TasksPlanned > 0 {
		completion = math.Min(100, float64(r.TasksCompleted)/float64(r.TasksPlanned)*100)
	}
	volume := math.Min(100, float64(r.TotalStudyTime)/float64(rollup.DefaultDailyTargetMinutes)*100)
	efficiency := (float64(r.ProductivityScore) - 0.4*completion - 0.3*volume) / 0.3

	return TrendFactors{
		Completion: int(math.Round(completion)),
		Efficiency: clampInt(int(math.Round(efficiency)), 0, 100),
		Volume:     int(math.Round(volume)),
	}
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// Report is the combined payload served by the analytics endpoint.
type Report struct {
	Overview           *Overview            `json:"overview"`
	YearlyData         []YearlyPoint        `json:"yearlyData"`
	GoalProgress       []goal.Summary       `json:"goalProgress"`
	SubjectStats       []rollup.SubjectTime `json:"subjectStats"`
	ProductivityTrends []TrendPoint         `json:"productivityTrends"`
	RecentSessions     []session.Session    `json:"recentSessions"`
}

// GetReport runs every aggregation for the range and bundles the results.
func (a *Aggregator) GetReport(ctx context.Context, userID string, timeRange TimeRange) (*Report, error) {
	overview, err := a.GetOverview(ctx, userID, timeRange)
	if err != nil {
		return nil, err
	}
	yearly, err := a.GetYearlyData(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := a.GetGoalProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	subjects, err := a.GetSubjectStats(ctx, userID, timeRange)
	if err != nil {
		return nil, err
	}
	trends, err := a.GetProductivityTrends(ctx, userID, timeRange)
	if err != nil {
		return nil, err
	}
	sessions, err := a.GetRecentSessions(ctx, userID, timeRange)
	if err != nil {
		return nil, err
	}

	return &Report{
		Overview:           overview,
		YearlyData:         yearly,
		GoalProgress:       goals,
		SubjectStats:       subjects,
		ProductivityTrends: trends,
		RecentSessions:     sessions,
	}, nil
}
