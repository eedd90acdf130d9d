// Package savings computes contribution recommendations and schedule status
// for savings goals. Everything here is a pure function of a goal snapshot
// and a clock reading; nothing mutates the goal.
package savings

import (
	"time"

	"github.com/mholloway/tally/internal/models"
)

type ScheduleStatus string

const (
	StatusAhead     ScheduleStatus = "ahead"
	StatusOnTrack   ScheduleStatus = "on-track"
	StatusBehind    ScheduleStatus = "behind"
	StatusCompleted ScheduleStatus = "completed"
)

// Projection is the derived view of a goal's progress.
type Projection struct {
	MonthlyContribution int64          `json:"monthly_contribution"`
	Status              ScheduleStatus `json:"status"`
	ExpectedAmount      int64          `json:"expected_amount"`
	Difference          int64          `json:"difference"`
	MonthsRemaining     int            `json:"months_remaining"`
}

// ahead/behind tolerance as a fraction of the target
const tolerancePercent = 5

// Compute evaluates a goal as of now.
func Compute(goal *models.SavingsGoal, now time.Time) Projection {
	return Projection{
		MonthlyContribution: MonthlyContribution(goal, now),
		Status:              scheduleStatus(goal, now),
		ExpectedAmount:      expectedAmount(goal, now),
		Difference:          goal.CurrentAmount - expectedAmount(goal, now),
		MonthsRemaining:     monthsRemaining(goal, now),
	}
}

// MonthlyContribution is the amount to put aside each remaining month to hit
// the target, rounded up so the recommendation never undershoots.
func MonthlyContribution(goal *models.SavingsGoal, now time.Time) int64 {
	remaining := goal.TargetAmount - goal.CurrentAmount
	if remaining <= 0 {
		return 0
	}
	months := int64(monthsRemaining(goal, now))
	return (remaining + months - 1) / months
}

func scheduleStatus(goal *models.SavingsGoal, now time.Time) ScheduleStatus {
	if goal.CurrentAmount >= goal.TargetAmount {
		return StatusCompleted
	}

	difference := goal.CurrentAmount - expectedAmount(goal, now)
	tolerance := goal.TargetAmount * tolerancePercent / 100
	switch {
	case difference > tolerance:
		return StatusAhead
	case difference < -tolerance:
		return StatusBehind
	default:
		return StatusOnTrack
	}
}

// expectedAmount is where linear progress from creation to target date says
// the goal should be by now.
func expectedAmount(goal *models.SavingsGoal, now time.Time) int64 {
	if goal.CurrentAmount >= goal.TargetAmount {
		return goal.TargetAmount
	}

	totalMonths := max(1, calendarMonths(goal.CreatedAt, goal.TargetDate))
	elapsed := max(0, calendarMonths(goal.CreatedAt, now))

	// Round to nearest: (target / totalMonths) * elapsed.
	product := goal.TargetAmount * int64(elapsed)
	half := int64(totalMonths) / 2
	return (product + half) / int64(totalMonths)
}

func monthsRemaining(goal *models.SavingsGoal, now time.Time) int {
	if goal.CurrentAmount >= goal.TargetAmount {
		return 0
	}
	return max(1, calendarMonths(now, goal.TargetDate))
}

// calendarMonths counts whole calendar-month steps between two dates,
// ignoring the day of month.
func calendarMonths(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
