package repository

import (
	"context"
	"time"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type TransactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, family_id, account_id, external_id, amount, name, merchant_name,
	 date, pending, is_hidden, category_id, linked_event_id, skip_auto_match, created_at`

func (r *TransactionRepository) InsertTransactions(ctx context.Context, txs []*models.Transaction) error {
	for _, tx := range txs {
		err := r.db.Pool.QueryRow(ctx,
			`INSERT INTO bank_transaction (id, family_id, account_id, external_id, amount, name,
			 merchant_name, date, pending, is_hidden, category_id, linked_event_id, skip_auto_match)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING created_at`,
			tx.ID, tx.FamilyID, tx.AccountID, tx.ExternalID, tx.Amount, tx.Name,
			tx.MerchantName, tx.Date, tx.Pending, tx.Hidden, tx.CategoryID, tx.LinkedEventID, tx.SkipAutoMatch,
		).Scan(&tx.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, familyID, transactionID string) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM bank_transaction WHERE id = $1 AND family_id = $2`,
		transactionID, familyID,
	).Scan(&tx.ID, &tx.FamilyID, &tx.AccountID, &tx.ExternalID, &tx.Amount, &tx.Name,
		&tx.MerchantName, &tx.Date, &tx.Pending, &tx.Hidden, &tx.CategoryID, &tx.LinkedEventID,
		&tx.SkipAutoMatch, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListFingerprints returns the dedup keys of every stored transaction for
// the family.
func (r *TransactionRepository) ListFingerprints(ctx context.Context, familyID string) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT amount, name, date FROM bank_transaction WHERE family_id = $1`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var amount int64
		var name string
		var date time.Time
		if err := rows.Scan(&amount, &name, &date); err != nil {
			return nil, err
		}
		seen[models.TransactionFingerprint(amount, name, date)] = struct{}{}
	}
	return seen, rows.Err()
}

// ListUnmatched returns the transactions the auto-match engine considers:
// not yet linked to an event, not hidden, not flagged to skip matching.
func (r *TransactionRepository) ListUnmatched(ctx context.Context, familyID string) ([]*models.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM bank_transaction
		 WHERE family_id = $1 AND linked_event_id IS NULL
		   AND is_hidden = FALSE AND skip_auto_match = FALSE
		 ORDER BY date DESC, created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *TransactionRepository) ListByDateRange(ctx context.Context, familyID string, start, end time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM bank_transaction
		 WHERE family_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date DESC, created_at DESC`,
		familyID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *TransactionRepository) ListLinkedEventIDs(ctx context.Context, familyID string) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT linked_event_id FROM bank_transaction
		 WHERE family_id = $1 AND linked_event_id IS NOT NULL`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	linked := make(map[string]struct{})
	for rows.Next() {
		var eventID string
		if err := rows.Scan(&eventID); err != nil {
			return nil, err
		}
		linked[eventID] = struct{}{}
	}
	return linked, rows.Err()
}

func (r *TransactionRepository) TagCategory(ctx context.Context, transactionID, categoryID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE bank_transaction SET category_id = $1 WHERE id = $2`,
		categoryID, transactionID,
	)
	return err
}

// LinkTransaction attaches the transaction to the event and completes the
// event with the transaction amount as its actual cost, atomically.
func (r *TransactionRepository) LinkTransaction(ctx context.Context, transactionID, eventID string, amount int64) error {
	dbtx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbtx.Rollback(ctx)

	if _, err := dbtx.Exec(ctx,
		`UPDATE bank_transaction SET linked_event_id = $1 WHERE id = $2`,
		eventID, transactionID,
	); err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx,
		`UPDATE event SET status = 'completed', actual_cost = $1 WHERE id = $2`,
		amount, eventID,
	); err != nil {
		return err
	}
	return dbtx.Commit(ctx)
}

func (r *TransactionRepository) UnlinkTransactions(ctx context.Context, familyID, eventID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE bank_transaction SET linked_event_id = NULL
		 WHERE family_id = $1 AND linked_event_id = $2`,
		familyID, eventID,
	)
	return err
}

func (r *TransactionRepository) SetHidden(ctx context.Context, familyID, transactionID string, hidden bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE bank_transaction SET is_hidden = $1 WHERE id = $2 AND family_id = $3`,
		hidden, transactionID, familyID,
	)
	return err
}

func (r *TransactionRepository) SetSkipAutoMatch(ctx context.Context, familyID, transactionID string, skip bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE bank_transaction SET skip_auto_match = $1 WHERE id = $2 AND family_id = $3`,
		skip, transactionID, familyID,
	)
	return err
}

// CategorySpent sums the range's tagged transaction amounts per category.
// Signed sum: tagged refunds reduce the total. Hidden transactions do not
// count.
func (r *TransactionRepository) CategorySpent(ctx context.Context, familyID string, start, end time.Time) (map[string]int64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT category_id, COALESCE(SUM(amount), 0)
		 FROM bank_transaction
		 WHERE family_id = $1 AND category_id IS NOT NULL
		   AND date >= $2 AND date <= $3
		   AND is_hidden = FALSE
		 GROUP BY category_id`,
		familyID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spent := make(map[string]int64)
	for rows.Next() {
		var categoryID string
		var total int64
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, err
		}
		spent[categoryID] = total
	}
	return spent, rows.Err()
}

func (r *TransactionRepository) scanTransactions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.FamilyID, &tx.AccountID, &tx.ExternalID, &tx.Amount,
			&tx.Name, &tx.MerchantName, &tx.Date, &tx.Pending, &tx.Hidden, &tx.CategoryID,
			&tx.LinkedEventID, &tx.SkipAutoMatch, &tx.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
