package parse

import (
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBankCSVSignConvention(t *testing.T) {
	content := `Transaction Date,Post Date,Description,Category,Type,Amount,Memo
06/15/2024,06/16/2024,NETFLIX.COM,Entertainment,Sale,-45.67,
06/20/2024,06/21/2024,PAYMENT THANK YOU,Payment,Payment,+100.00,`

	result, err := BankCSV(content)
	if err != nil {
		t.Fatalf("BankCSV failed: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(result.Transactions))
	}

	charge := result.Transactions[0]
	if charge.AmountCents != 4567 {
		t.Errorf("charge: expected +4567 cents, got %d", charge.AmountCents)
	}
	if charge.IsCredit {
		t.Error("charge: expected IsCredit=false")
	}
	if charge.Merchant != "NETFLIX.COM" {
		t.Errorf("charge: unexpected merchant %q", charge.Merchant)
	}
	if !charge.Date.Equal(date(2024, time.June, 15)) {
		t.Errorf("charge: unexpected date %v", charge.Date)
	}

	credit := result.Transactions[1]
	if credit.AmountCents != -10000 {
		t.Errorf("credit: expected -10000 cents, got %d", credit.AmountCents)
	}
	if !credit.IsCredit {
		t.Error("credit: expected IsCredit=true")
	}
}

func TestBankCSVPostingDateHeader(t *testing.T) {
	content := `Details,Posting Date,Description,Amount,Type,Balance
DEBIT,01/05/2024,TRADER JOES,-32.50,DEBIT,1000.00`

	result, err := BankCSV(content)
	if err != nil {
		t.Fatalf("BankCSV failed: %v", err)
	}
	if len(result.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(result.Transactions))
	}
	if result.Transactions[0].AmountCents != 3250 {
		t.Errorf("expected 3250, got %d", result.Transactions[0].AmountCents)
	}
}

func TestBankCSVCollectsRowErrors(t *testing.T) {
	content := `Transaction Date,Description,Amount
06/15/2024,GOOD ROW,-10.00
not-a-date,BAD DATE,-5.00
06/16/2024,BAD AMOUNT,abc`

	result, err := BankCSV(content)
	if err != nil {
		t.Fatalf("BankCSV failed: %v", err)
	}
	if len(result.Transactions) != 1 {
		t.Errorf("expected 1 parsed row, got %d", len(result.Transactions))
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestBankCSVRejectsUnknownHeader(t *testing.T) {
	if _, err := BankCSV("Foo,Bar\n1,2"); err == nil {
		t.Error("expected error for unrecognized header")
	}
	if _, err := BankCSV(""); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestBankCSVQuotedFields(t *testing.T) {
	content := `Transaction Date,Description,Amount
06/15/2024,"ACME, INC",-12.34`

	result, err := BankCSV(content)
	if err != nil {
		t.Fatalf("BankCSV failed: %v", err)
	}
	if result.Transactions[0].Merchant != "ACME, INC" {
		t.Errorf("unexpected merchant %q", result.Transactions[0].Merchant)
	}
}

func TestAlertEmail(t *testing.T) {
	tx, err := AlertEmail(
		"Your $45.67 transaction with STARBUCKS COFFEE",
		"Your debit card ending in 1234 was used on 06/15/2024.",
	)
	if err != nil {
		t.Fatalf("AlertEmail failed: %v", err)
	}
	if tx.AmountCents != 4567 {
		t.Errorf("expected 4567, got %d", tx.AmountCents)
	}
	if tx.Merchant != "STARBUCKS COFFEE" {
		t.Errorf("unexpected merchant %q", tx.Merchant)
	}
	if tx.CardLast4 != "1234" {
		t.Errorf("unexpected card suffix %q", tx.CardLast4)
	}
	if !tx.Date.Equal(date(2024, time.June, 15)) {
		t.Errorf("unexpected date %v", tx.Date)
	}
	if tx.IsCredit {
		t.Error("expected charge, got credit")
	}
}

func TestAlertEmailCredit(t *testing.T) {
	tx, err := AlertEmail("Your $20.00 refund transaction with AMAZON", "")
	if err != nil {
		t.Fatalf("AlertEmail failed: %v", err)
	}
	if tx.AmountCents != -2000 {
		t.Errorf("expected -2000 for refund, got %d", tx.AmountCents)
	}
	if !tx.IsCredit {
		t.Error("expected IsCredit=true")
	}
}

func TestAlertEmailLongDate(t *testing.T) {
	tx, err := AlertEmail(
		"Your $10.00 transaction with CHIPOTLE",
		"This purchase was made on June 3, 2024 at your local store.",
	)
	if err != nil {
		t.Fatalf("AlertEmail failed: %v", err)
	}
	if !tx.Date.Equal(date(2024, time.June, 3)) {
		t.Errorf("unexpected date %v", tx.Date)
	}
}

func TestAlertEmailMissingDateDefaultsToToday(t *testing.T) {
	tx, err := AlertEmail("Your $5.00 transaction with KIOSK", "no date here")
	if err != nil {
		t.Fatalf("AlertEmail failed: %v", err)
	}
	today := dateOnly(time.Now().UTC())
	if !tx.Date.Equal(today) {
		t.Errorf("expected today %v, got %v", today, tx.Date)
	}
}

func TestAlertEmailNoAmount(t *testing.T) {
	if _, err := AlertEmail("A charge happened", "somewhere"); err == nil {
		t.Error("expected error when no amount present")
	}
}

func TestSimple(t *testing.T) {
	tests := []struct {
		name      string
		input     SimpleInput
		wantCents int64
		wantErr   bool
	}{
		{"numeric amount", SimpleInput{Amount: 45.67, Merchant: "Starbucks"}, 4567, false},
		{"string amount", SimpleInput{Amount: "1,234.50", Merchant: "Rent"}, 123450, false},
		{"credit flips sign", SimpleInput{Amount: 30.0, Merchant: "Amazon", Type: "credit"}, -3000, false},
		{"missing merchant", SimpleInput{Amount: 10.0}, 0, true},
		{"missing amount", SimpleInput{Merchant: "X"}, 0, true},
		{"zero amount", SimpleInput{Amount: 0.0, Merchant: "X"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Simple(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Simple failed: %v", err)
			}
			if tx.AmountCents != tt.wantCents {
				t.Errorf("expected %d cents, got %d", tt.wantCents, tx.AmountCents)
			}
		})
	}
}

func TestSimpleExplicitDate(t *testing.T) {
	tx, err := Simple(SimpleInput{Amount: 9.99, Merchant: "Netflix", Date: "2024-06-15"})
	if err != nil {
		t.Fatalf("Simple failed: %v", err)
	}
	if !tx.Date.Equal(date(2024, time.June, 15)) {
		t.Errorf("unexpected date %v", tx.Date)
	}
}

func TestResolveWebhook(t *testing.T) {
	email, err := ResolveWebhook(map[string]any{"subject": "s", "body-plain": "b"})
	if err != nil {
		t.Fatalf("ResolveWebhook failed: %v", err)
	}
	if email.Email == nil || email.Email.Body != "b" {
		t.Errorf("expected email branch with body, got %+v", email)
	}

	simple, err := ResolveWebhook(map[string]any{"amount": 4.5, "merchant": "m"})
	if err != nil {
		t.Fatalf("ResolveWebhook failed: %v", err)
	}
	if simple.Simple == nil || simple.Simple.Merchant != "m" {
		t.Errorf("expected simple branch, got %+v", simple)
	}

	if _, err := ResolveWebhook(map[string]any{"foo": "bar"}); err == nil {
		t.Error("expected error for unrecognized payload")
	}
}

func TestSheetCSV(t *testing.T) {
	content := `Date,Merchant Name,Amount
06/15/2024,Grocery Store,82.14
2024-06-16,Paycheck,(1500.00)
bad row with,not enough
06/17/2024,,12.00
06/18/2024,Gas Station,-20.00`

	transactions, err := SheetCSV(content)
	if err != nil {
		t.Fatalf("SheetCSV failed: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(transactions))
	}

	if transactions[0].AmountCents != 8214 || transactions[0].IsCredit {
		t.Errorf("expense row wrong: %+v", transactions[0])
	}
	if transactions[1].AmountCents != -150000 || !transactions[1].IsCredit {
		t.Errorf("parenthesized credit row wrong: %+v", transactions[1])
	}
	if transactions[2].AmountCents != -2000 {
		t.Errorf("negative amount row wrong: %+v", transactions[2])
	}
}

func TestSheetCSVEmptyIsOK(t *testing.T) {
	transactions, err := SheetCSV("Date,Description,Amount")
	if err != nil {
		t.Fatalf("SheetCSV failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("expected no transactions, got %d", len(transactions))
	}
}

func TestSheetCSVMissingColumns(t *testing.T) {
	_, err := SheetCSV("Foo,Bar\n1,2")
	if err == nil || !strings.Contains(err.Error(), "columns") {
		t.Errorf("expected column error, got %v", err)
	}
}
