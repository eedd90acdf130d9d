package models

import "time"

// Family is the tenant scope. Every other entity carries its id.
type Family struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MonthlyBudget int64     `json:"monthly_budget"`
	CreatedAt     time.Time `json:"created_at"`
}
