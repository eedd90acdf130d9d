package ingest

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mholloway/tally/internal/models"
	"github.com/mholloway/tally/internal/parse"
)

type mockStore struct {
	EnsureVirtualAccountFunc func(ctx context.Context, familyID, source, displayName, mask string) (string, error)
	ListFingerprintsFunc     func(ctx context.Context, familyID string) (map[string]struct{}, error)
	InsertTransactionsFunc   func(ctx context.Context, txs []*models.Transaction) error
	TouchConnectionSyncFunc  func(ctx context.Context, familyID, source string, at time.Time) error
}

func (m *mockStore) EnsureVirtualAccount(ctx context.Context, familyID, source, displayName, mask string) (string, error) {
	return m.EnsureVirtualAccountFunc(ctx, familyID, source, displayName, mask)
}

func (m *mockStore) ListFingerprints(ctx context.Context, familyID string) (map[string]struct{}, error) {
	return m.ListFingerprintsFunc(ctx, familyID)
}

func (m *mockStore) InsertTransactions(ctx context.Context, txs []*models.Transaction) error {
	return m.InsertTransactionsFunc(ctx, txs)
}

func (m *mockStore) TouchConnectionSync(ctx context.Context, familyID, source string, at time.Time) error {
	if m.TouchConnectionSyncFunc == nil {
		return nil
	}
	return m.TouchConnectionSyncFunc(ctx, familyID, source, at)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestImportIdempotent(t *testing.T) {
	// Simulated storage: fingerprints accumulate across imports.
	stored := map[string]struct{}{}
	var inserted []*models.Transaction

	store := &mockStore{
		EnsureVirtualAccountFunc: func(_ context.Context, _, _, _, _ string) (string, error) {
			return "acct-1", nil
		},
		ListFingerprintsFunc: func(_ context.Context, _ string) (map[string]struct{}, error) {
			snapshot := make(map[string]struct{}, len(stored))
			for k := range stored {
				snapshot[k] = struct{}{}
			}
			return snapshot, nil
		},
		InsertTransactionsFunc: func(_ context.Context, txs []*models.Transaction) error {
			for _, tx := range txs {
				stored[tx.Fingerprint()] = struct{}{}
			}
			inserted = append(inserted, txs...)
			return nil
		},
	}

	im := New(store, testLogger())
	batch := []parse.ParsedTransaction{
		{AmountCents: 4567, Merchant: "Starbucks", Date: day(15)},
		{AmountCents: 1599, Merchant: "Netflix", Date: day(16)},
	}

	first, err := im.Import(context.Background(), "fam-1", SourceCSV, batch, nil)
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if first.Imported != 2 || first.Skipped != 0 || first.Total != 2 {
		t.Errorf("first import: got %+v", first)
	}

	second, err := im.Import(context.Background(), "fam-1", SourceCSV, batch, nil)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if second.Imported != 0 || second.Skipped != 2 {
		t.Errorf("second import should skip everything, got %+v", second)
	}
	if len(inserted) != 2 {
		t.Errorf("expected 2 rows total, got %d", len(inserted))
	}
}

func TestImportDedupCaseInsensitiveName(t *testing.T) {
	store := &mockStore{
		EnsureVirtualAccountFunc: func(_ context.Context, _, _, _, _ string) (string, error) {
			return "acct-1", nil
		},
		ListFingerprintsFunc: func(_ context.Context, _ string) (map[string]struct{}, error) {
			return map[string]struct{}{
				models.TransactionFingerprint(4567, "STARBUCKS", day(15)): {},
			}, nil
		},
		InsertTransactionsFunc: func(_ context.Context, txs []*models.Transaction) error {
			t.Errorf("unexpected insert of %d rows", len(txs))
			return nil
		},
	}

	im := New(store, testLogger())
	result, err := im.Import(context.Background(), "fam-1", SourceEmail,
		[]parse.ParsedTransaction{{AmountCents: 4567, Merchant: "starbucks", Date: day(15)}}, nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Skipped != 1 || result.Imported != 0 {
		t.Errorf("expected case-insensitive skip, got %+v", result)
	}
}

func TestImportDuplicatesWithinBatch(t *testing.T) {
	var inserted int
	store := &mockStore{
		EnsureVirtualAccountFunc: func(_ context.Context, _, _, _, _ string) (string, error) {
			return "acct-1", nil
		},
		ListFingerprintsFunc: func(_ context.Context, _ string) (map[string]struct{}, error) {
			return map[string]struct{}{}, nil
		},
		InsertTransactionsFunc: func(_ context.Context, txs []*models.Transaction) error {
			inserted = len(txs)
			return nil
		},
	}

	im := New(store, testLogger())
	tx := parse.ParsedTransaction{AmountCents: 100, Merchant: "Kiosk", Date: day(1)}
	result, err := im.Import(context.Background(), "fam-1", SourceSheet,
		[]parse.ParsedTransaction{tx, tx, tx}, nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if inserted != 1 || result.Imported != 1 || result.Skipped != 2 {
		t.Errorf("expected 1 insert and 2 skips, got inserted=%d result=%+v", inserted, result)
	}
}

func TestImportInsertFailureAbortsBatch(t *testing.T) {
	store := &mockStore{
		EnsureVirtualAccountFunc: func(_ context.Context, _, _, _, _ string) (string, error) {
			return "acct-1", nil
		},
		ListFingerprintsFunc: func(_ context.Context, _ string) (map[string]struct{}, error) {
			return map[string]struct{}{}, nil
		},
		InsertTransactionsFunc: func(_ context.Context, _ []*models.Transaction) error {
			return errors.New("connection reset")
		},
	}

	im := New(store, testLogger())
	_, err := im.Import(context.Background(), "fam-1", SourceCSV,
		[]parse.ParsedTransaction{{AmountCents: 100, Merchant: "X", Date: day(1)}}, nil)
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
}

func TestImportEmptyBatchKeepsRowErrors(t *testing.T) {
	im := New(&mockStore{}, testLogger())
	result, err := im.Import(context.Background(), "fam-1", SourceCSV, nil, []string{"row 2: invalid date"})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Total != 0 || len(result.Errors) != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestImportSetsAccountAndExternalID(t *testing.T) {
	var gotSource, gotName, gotMask string
	var rows []*models.Transaction

	store := &mockStore{
		EnsureVirtualAccountFunc: func(_ context.Context, _, source, displayName, mask string) (string, error) {
			gotSource, gotName, gotMask = source, displayName, mask
			return "acct-9", nil
		},
		ListFingerprintsFunc: func(_ context.Context, _ string) (map[string]struct{}, error) {
			return map[string]struct{}{}, nil
		},
		InsertTransactionsFunc: func(_ context.Context, txs []*models.Transaction) error {
			rows = txs
			return nil
		},
	}

	im := New(store, testLogger())
	_, err := im.Import(context.Background(), "fam-1", SourceEmail,
		[]parse.ParsedTransaction{{AmountCents: 4567, Merchant: "Starbucks", Date: day(15), CardLast4: "1234"}}, nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if gotSource != "email-import" || gotName != "Email Import" || gotMask != "1234" {
		t.Errorf("virtual account params wrong: %q %q %q", gotSource, gotName, gotMask)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.AccountID != "acct-9" || row.FamilyID != "fam-1" {
		t.Errorf("row scoping wrong: %+v", row)
	}
	if row.ExternalID == "" || row.ID == "" {
		t.Error("expected generated ids")
	}
}
