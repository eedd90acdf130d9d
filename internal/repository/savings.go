package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type SavingsRepository struct {
	db *database.DB
}

func NewSavingsRepository(db *database.DB) *SavingsRepository {
	return &SavingsRepository{db: db}
}

func (r *SavingsRepository) CreateGoal(ctx context.Context, goal *models.SavingsGoal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	goal.Completed = goal.CurrentAmount >= goal.TargetAmount
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO savings_goal (id, family_id, name, target_amount, current_amount, target_date, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		goal.ID, goal.FamilyID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.Completed,
	).Scan(&goal.CreatedAt)
}

func (r *SavingsRepository) GetGoal(ctx context.Context, familyID, goalID string) (*models.SavingsGoal, error) {
	goal := &models.SavingsGoal{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, family_id, name, target_amount, current_amount, target_date, is_completed, created_at
		 FROM savings_goal WHERE id = $1 AND family_id = $2`,
		goalID, familyID,
	).Scan(&goal.ID, &goal.FamilyID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount,
		&goal.TargetDate, &goal.Completed, &goal.CreatedAt)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *SavingsRepository) ListGoals(ctx context.Context, familyID string) ([]*models.SavingsGoal, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, family_id, name, target_amount, current_amount, target_date, is_completed, created_at
		 FROM savings_goal WHERE family_id = $1
		 ORDER BY target_date, created_at`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*models.SavingsGoal
	for rows.Next() {
		goal := &models.SavingsGoal{}
		if err := rows.Scan(&goal.ID, &goal.FamilyID, &goal.Name, &goal.TargetAmount,
			&goal.CurrentAmount, &goal.TargetDate, &goal.Completed, &goal.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *SavingsRepository) DeleteGoal(ctx context.Context, familyID, goalID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM savings_goal WHERE id = $1 AND family_id = $2`,
		goalID, familyID,
	)
	return err
}

// Contribute adds to the goal's saved amount and rederives the completed
// flag, returning the updated goal. The amount only ever grows.
func (r *SavingsRepository) Contribute(ctx context.Context, familyID, goalID string, amount int64) (*models.SavingsGoal, error) {
	goal := &models.SavingsGoal{}
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE savings_goal
		 SET current_amount = current_amount + $1,
		     is_completed = current_amount + $1 >= target_amount
		 WHERE id = $2 AND family_id = $3
		 RETURNING id, family_id, name, target_amount, current_amount, target_date, is_completed, created_at`,
		amount, goalID, familyID,
	).Scan(&goal.ID, &goal.FamilyID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount,
		&goal.TargetDate, &goal.Completed, &goal.CreatedAt)
	if err != nil {
		return nil, err
	}
	return goal, nil
}
