package models

import "time"

// SavingsGoal tracks progress toward a target amount by a target date.
// CurrentAmount only grows, via contributions; Completed is derived from
// CurrentAmount >= TargetAmount.
type SavingsGoal struct {
	ID            string    `json:"id"`
	FamilyID      string    `json:"family_id"`
	Name          string    `json:"name"`
	TargetAmount  int64     `json:"target_amount"`
	CurrentAmount int64     `json:"current_amount"`
	TargetDate    time.Time `json:"target_date"`
	Completed     bool      `json:"is_completed"`
	CreatedAt     time.Time `json:"created_at"`
}
