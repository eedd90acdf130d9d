// Package ingest persists normalized transactions behind a virtual account
// per import source, skipping duplicates by fingerprint.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/models"
	"github.com/mholloway/tally/internal/parse"
)

// Source tags identify where a batch came from. Each gets one virtual
// connection+account per family.
type Source string

const (
	SourceCSV   Source = "csv-import"
	SourceEmail Source = "email-import"
	SourceSheet Source = "google-sheet-import"
)

// DisplayName is the institution/account label shown for a source's virtual
// account.
func (s Source) DisplayName() string {
	switch s {
	case SourceCSV:
		return "CSV Import"
	case SourceEmail:
		return "Email Import"
	case SourceSheet:
		return "Spreadsheet Import"
	}
	return string(s)
}

// Store is the persistence surface ingestion needs. The virtual account
// lookup must be an upsert keyed on (family id, source tag) so concurrent
// first imports cannot race into duplicates.
type Store interface {
	EnsureVirtualAccount(ctx context.Context, familyID string, source string, displayName string, mask string) (accountID string, err error)
	ListFingerprints(ctx context.Context, familyID string) (map[string]struct{}, error)
	InsertTransactions(ctx context.Context, txs []*models.Transaction) error
	TouchConnectionSync(ctx context.Context, familyID string, source string, at time.Time) error
}

// Result reports what happened to a batch. Row-level parse errors ride along
// without failing the import.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

type Importer struct {
	store  Store
	logger *log.Logger
}

func New(store Store, logger *log.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import writes a batch of normalized transactions for one family and source.
// Duplicates (same amount, name, date as any stored transaction) are counted
// as skipped, never as failures. A storage insert failure aborts the whole
// batch.
func (im *Importer) Import(ctx context.Context, familyID string, source Source, batch []parse.ParsedTransaction, rowErrors []string) (*Result, error) {
	result := &Result{Total: len(batch), Errors: rowErrors}
	if len(batch) == 0 {
		return result, nil
	}

	accountID, err := im.store.EnsureVirtualAccount(ctx, familyID, string(source), source.DisplayName(), batchMask(batch))
	if err != nil {
		return nil, fmt.Errorf("ensure virtual account: %w", err)
	}

	existing, err := im.store.ListFingerprints(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}

	var inserts []*models.Transaction
	for _, tx := range batch {
		fp := models.TransactionFingerprint(tx.AmountCents, tx.Merchant, tx.Date)
		if _, dup := existing[fp]; dup {
			result.Skipped++
			continue
		}
		// Guard against duplicates inside the batch itself.
		existing[fp] = struct{}{}

		merchant := tx.Merchant
		inserts = append(inserts, &models.Transaction{
			ID:           uuid.NewString(),
			FamilyID:     familyID,
			AccountID:    accountID,
			ExternalID:   externalID(source),
			Amount:       tx.AmountCents,
			Name:         tx.Merchant,
			MerchantName: &merchant,
			Date:         tx.Date,
		})
	}

	if len(inserts) > 0 {
		if err := im.store.InsertTransactions(ctx, inserts); err != nil {
			return nil, fmt.Errorf("insert transactions: %w", err)
		}
		result.Imported = len(inserts)
	}

	if err := im.store.TouchConnectionSync(ctx, familyID, string(source), time.Now().UTC()); err != nil {
		// Sync bookkeeping is advisory; the import itself succeeded.
		im.logger.Warn("failed to record sync time", "family", familyID, "source", source, "err", err)
	}

	im.logger.Info("import complete",
		"family", familyID, "source", source,
		"imported", result.Imported, "skipped", result.Skipped, "total", result.Total)
	return result, nil
}

// externalID builds a synthetic unique id so repeated imports never collide
// on the external-id column.
func externalID(source Source) string {
	return fmt.Sprintf("%s-%d-%s", source, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func batchMask(batch []parse.ParsedTransaction) string {
	for _, tx := range batch {
		if tx.CardLast4 != "" {
			return tx.CardLast4
		}
	}
	return ""
}
