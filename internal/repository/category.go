package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, family_id, name, keywords, category_type, monthly_budget, event_id, created_at, updated_at`

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *models.MerchantCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO merchant_category (id, family_id, name, keywords, category_type, monthly_budget, event_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		category.ID, category.FamilyID, category.Name, category.Keywords, category.Type,
		category.MonthlyBudget, category.EventID,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, category *models.MerchantCategory) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE merchant_category SET name = $1, keywords = $2, category_type = $3,
		 monthly_budget = $4, event_id = $5, updated_at = NOW()
		 WHERE id = $6 AND family_id = $7`,
		category.Name, category.Keywords, category.Type, category.MonthlyBudget, category.EventID,
		category.ID, category.FamilyID,
	)
	return err
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, familyID, categoryID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM merchant_category WHERE id = $1 AND family_id = $2`,
		categoryID, familyID,
	)
	return err
}

func (r *CategoryRepository) GetCategory(ctx context.Context, familyID, categoryID string) (*models.MerchantCategory, error) {
	category := &models.MerchantCategory{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+categoryColumns+`
		 FROM merchant_category WHERE id = $1 AND family_id = $2`,
		categoryID, familyID,
	).Scan(&category.ID, &category.FamilyID, &category.Name, &category.Keywords, &category.Type,
		&category.MonthlyBudget, &category.EventID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context, familyID string) ([]*models.MerchantCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM merchant_category WHERE family_id = $1
		 ORDER BY name`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanCategories(rows)
}

func (r *CategoryRepository) ListBudgetCategories(ctx context.Context, familyID string) ([]*models.MerchantCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM merchant_category WHERE family_id = $1 AND category_type = 'budget'
		 ORDER BY name`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanCategories(rows)
}

func (r *CategoryRepository) CreateRule(ctx context.Context, rule *models.MerchantRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO merchant_rule (id, family_id, keyword, event_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		rule.ID, rule.FamilyID, rule.Keyword, rule.EventID,
	).Scan(&rule.CreatedAt)
}

func (r *CategoryRepository) DeleteRule(ctx context.Context, familyID, ruleID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM merchant_rule WHERE id = $1 AND family_id = $2`,
		ruleID, familyID,
	)
	return err
}

func (r *CategoryRepository) ListRules(ctx context.Context, familyID string) ([]*models.MerchantRule, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, family_id, keyword, event_id, created_at
		 FROM merchant_rule WHERE family_id = $1
		 ORDER BY created_at`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.MerchantRule
	for rows.Next() {
		rule := &models.MerchantRule{}
		if err := rows.Scan(&rule.ID, &rule.FamilyID, &rule.Keyword, &rule.EventID, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *CategoryRepository) scanCategories(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.MerchantCategory, error) {
	var categories []*models.MerchantCategory
	for rows.Next() {
		category := &models.MerchantCategory{}
		if err := rows.Scan(&category.ID, &category.FamilyID, &category.Name, &category.Keywords,
			&category.Type, &category.MonthlyBudget, &category.EventID,
			&category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
