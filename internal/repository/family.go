package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type FamilyRepository struct {
	db *database.DB
}

func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) Create(ctx context.Context, family *models.Family) error {
	if family.ID == "" {
		family.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO family (id, name, monthly_budget)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		family.ID, family.Name, family.MonthlyBudget,
	).Scan(&family.CreatedAt)
}

func (r *FamilyRepository) GetByID(ctx context.Context, familyID string) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, monthly_budget, created_at FROM family WHERE id = $1`,
		familyID,
	).Scan(&family.ID, &family.Name, &family.MonthlyBudget, &family.CreatedAt)
	if err != nil {
		return nil, err
	}
	return family, nil
}

// FirstFamily returns the oldest family. Webhook imports that carry no family
// header fall back to it.
func (r *FamilyRepository) FirstFamily(ctx context.Context) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, monthly_budget, created_at FROM family ORDER BY created_at LIMIT 1`,
	).Scan(&family.ID, &family.Name, &family.MonthlyBudget, &family.CreatedAt)
	if err != nil {
		return nil, err
	}
	return family, nil
}

func (r *FamilyRepository) FamilyBudget(ctx context.Context, familyID string) (int64, error) {
	var budget int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT monthly_budget FROM family WHERE id = $1`,
		familyID,
	).Scan(&budget)
	return budget, err
}

func (r *FamilyRepository) SetMonthlyBudget(ctx context.Context, familyID string, budget int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE family SET monthly_budget = $1 WHERE id = $2`,
		budget, familyID,
	)
	return err
}
