package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// EnsureVirtualAccount upserts the connection and account that hold imported
// transactions for one source tag. Concurrent imports for the same source
// land on the same row through the unique constraints.
func (r *AccountRepository) EnsureVirtualAccount(ctx context.Context, familyID, source, displayName, mask string) (string, error) {
	var connectionID string
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO bank_connection (id, family_id, external_item_id, institution_name, status)
		 VALUES ($1, $2, $3, $4, 'active')
		 ON CONFLICT (family_id, external_item_id)
		 DO UPDATE SET status = 'active'
		 RETURNING id`,
		uuid.NewString(), familyID, source, displayName,
	).Scan(&connectionID)
	if err != nil {
		return "", err
	}

	var maskValue *string
	if mask != "" {
		maskValue = &mask
	}
	var accountID string
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO bank_account (id, connection_id, family_id, external_account_id, name, mask)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (family_id, external_account_id)
		 DO UPDATE SET name = EXCLUDED.name,
		               mask = COALESCE(EXCLUDED.mask, bank_account.mask)
		 RETURNING id`,
		uuid.NewString(), connectionID, familyID, source, displayName, maskValue,
	).Scan(&accountID)
	if err != nil {
		return "", err
	}
	return accountID, nil
}

func (r *AccountRepository) TouchConnectionSync(ctx context.Context, familyID, source string, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE bank_connection SET last_synced_at = $1
		 WHERE family_id = $2 AND external_item_id = $3`,
		at, familyID, source,
	)
	return err
}

func (r *AccountRepository) ListConnections(ctx context.Context, familyID string) ([]*models.BankConnection, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, family_id, external_item_id, institution_name, status, last_synced_at, created_at
		 FROM bank_connection WHERE family_id = $1
		 ORDER BY created_at`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connections []*models.BankConnection
	for rows.Next() {
		c := &models.BankConnection{}
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.ExternalItemID, &c.InstitutionName,
			&c.Status, &c.LastSyncedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

// Disconnect removes a connection. Its accounts and their transactions go
// with it via the foreign key cascades.
func (r *AccountRepository) Disconnect(ctx context.Context, familyID, connectionID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM bank_connection WHERE id = $1 AND family_id = $2`,
		connectionID, familyID,
	)
	return err
}

func (r *AccountRepository) ListAccounts(ctx context.Context, familyID string) ([]*models.BankAccount, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, connection_id, family_id, external_account_id, name, type, subtype, mask, is_tracked, created_at
		 FROM bank_account WHERE family_id = $1
		 ORDER BY created_at`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.BankAccount
	for rows.Next() {
		a := &models.BankAccount{}
		if err := rows.Scan(&a.ID, &a.ConnectionID, &a.FamilyID, &a.ExternalAccountID,
			&a.Name, &a.Type, &a.Subtype, &a.Mask, &a.Tracked, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
