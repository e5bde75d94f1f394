package rollup

import (
	"math"
	"time"
)

// DefaultDailyTargetMinutes is the study time that earns a full volume score
// for a day.
const DefaultDailyTargetMinutes = 180

// DayKey truncates t to midnight UTC. Every place a rollup is keyed by date
// goes through this function so day boundaries cannot drift between call
// sites.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Efficiency is the planned-to-actual ratio of a single session as a
// percentage, capped at 100. A zero or negative actual duration counts as
// fully efficient.
func Efficiency(plannedMinutes, actualMinutes int) int {
	if actualMinutes <= 0 {
		return 100
	}
	ratio := int(math.Round(float64(plannedMinutes) / float64(actualMinutes) * 100))
	return min(100, ratio)
}

// ScoreInput carries the terms of a day's productivity score.
type ScoreInput struct {
	TasksCompleted int
	TasksPlanned   int
	// PlannedDuration and ActualDuration are the just-completed task's
	// durations. The efficiency term deliberately uses the triggering task
	// rather than a day-wide aggregate.
	PlannedDuration int
	ActualDuration  int
	TotalStudyTime  int
	TargetMinutes   int
}

// Score computes the day's productivity score: 40% completion rate, 30%
// single-task time efficiency, 30% study volume against the daily target.
// Unlike the historical behavior, the completion rate is capped at 100 so a
// task completed after being rescheduled away from its day cannot push the
// score out of range; the result is clamped to [0,100].
func Score(in ScoreInput) int {
	target := in.TargetMinutes
	if target <= 0 {
		target = DefaultDailyTargetMinutes
	}

	completionRate := 100.0
	if in.TasksPlanned > 0 {
		completionRate = math.Min(100, float64(in.TasksCompleted)/float64(in.TasksPlanned)*100)
	}
	timeEfficiency := float64(Efficiency(in.PlannedDuration, in.ActualDuration))
	studyTimeScore := math.Min(100, float64(in.TotalStudyTime)/float64(target)*100)

	score := int(math.Round(0.4*completionRate + 0.3*timeEfficiency + 0.3*studyTimeScore))
	return clamp(score, 0, 100)
}

// Streak returns the streak count for a day given yesterday's rollup. A
// missing yesterday restarts the chain at 1; streaks are never decremented
// for idle days.
func Streak(yesterday *DailyRollup) int {
	if yesterday == nil {
		return 1
	}
	return yesterday.StreakCount + 1
}

// PercentageChange reports the percentage change from previous to current,
// rounded to the nearest integer. A zero previous value maps to 100 when
// current is positive and 0 otherwise.
func PercentageChange(current, previous int) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
