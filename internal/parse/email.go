package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	amountPattern   = regexp.MustCompile(`\$([0-9,]+\.?\d*)`)
	merchantPattern = regexp.MustCompile(`(?i)transaction with\s+(.+?)(?:\s+on\s|\s+has\s|\.|$)`)
	merchantNoise   = regexp.MustCompile(`(?i)transaction|with|at|from`)
	merchantClean   = regexp.MustCompile(`[^\w\s&'-]`)
	spaces          = regexp.MustCompile(`\s+`)
	cardPattern     = regexp.MustCompile(`(?i)(?:ending in|card.*?\()\s*(\d{4})`)
	creditPattern   = regexp.MustCompile(`(?i)credit|refund|returned`)

	slashDatePattern = regexp.MustCompile(`(?i)(?:on\s+)?(\d{1,2}/\d{1,2}/\d{2,4})`)
	longDatePattern  = regexp.MustCompile(`(?i)on\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s*(\d{4})`)
)

// AlertEmail parses a transaction alert email from its subject and body.
// A parsable amount is required; merchant, card suffix, and date degrade to
// fallbacks ("Unknown Merchant", empty, today).
func AlertEmail(subject, body string) (*ParsedTransaction, error) {
	amountMatch := amountPattern.FindStringSubmatch(subject)
	if amountMatch == nil {
		return nil, fmt.Errorf("%w in email", ErrNoAmount)
	}
	cents, err := amountCents(amountMatch[1])
	if err != nil || cents <= 0 {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrNoAmount, amountMatch[1])
	}

	merchant := extractMerchant(subject, amountMatch[0])

	cardLast4 := ""
	if m := cardPattern.FindStringSubmatch(body); m != nil {
		cardLast4 = m[1]
	}

	date := extractEmailDate(subject, body)

	isCredit := creditPattern.MatchString(subject) || creditPattern.MatchString(body)
	if isCredit {
		cents = -cents
	}

	return &ParsedTransaction{
		AmountCents: cents,
		Merchant:    merchant,
		Date:        date,
		CardLast4:   cardLast4,
		IsCredit:    isCredit,
	}, nil
}

func extractMerchant(subject, amountToken string) string {
	merchant := "Unknown Merchant"
	if m := merchantPattern.FindStringSubmatch(subject); m != nil {
		merchant = strings.TrimSpace(m[1])
	} else if _, after, ok := strings.Cut(subject, amountToken); ok {
		// Fallback: strip jargon tokens after the amount and keep what is
		// left of any trailing "on <date>" clause.
		words := strings.TrimSpace(merchantNoise.ReplaceAllString(after, ""))
		if words != "" {
			first, _, _ := strings.Cut(words, " on ")
			if s := strings.TrimSpace(first); s != "" {
				merchant = s
			}
		}
	}

	merchant = strings.TrimSpace(merchantClean.ReplaceAllString(spaces.ReplaceAllString(merchant, " "), ""))
	if len(merchant) > 100 {
		merchant = merchant[:100]
	}
	if merchant == "" || strings.EqualFold(merchant, "unknown") {
		merchant = "Unknown Merchant"
	}
	return merchant
}

// extractEmailDate scans body then subject for a recognizable date, falling
// back to today.
func extractEmailDate(subject, body string) time.Time {
	for _, text := range []string{body, subject} {
		if m := slashDatePattern.FindStringSubmatch(text); m != nil {
			if t, ok := parseDate(m[1]); ok {
				return t
			}
		}
		if m := longDatePattern.FindStringSubmatch(text); m != nil {
			month := monthByName(m[1])
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if month > 0 && day >= 1 && day <= 31 {
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			}
		}
	}
	return dateOnly(time.Now().UTC())
}

func monthByName(name string) int {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return int(m)
		}
	}
	return 0
}

// SimpleInput is the structured webhook payload used by relay integrations.
// Amount is dollars, either numeric or a string like "45.67".
type SimpleInput struct {
	Amount    any    `json:"amount"`
	Merchant  string `json:"merchant"`
	Date      string `json:"date"`
	CardLast4 string `json:"card_last4"`
	Type      string `json:"type"`
}

// Simple normalizes a SimpleInput. Type "credit" flips the sign to an inflow.
func Simple(in SimpleInput) (*ParsedTransaction, error) {
	var cents int64
	switch v := in.Amount.(type) {
	case string:
		c, err := amountCents(v)
		if err != nil {
			return nil, ErrNoAmount
		}
		cents = c
	case float64:
		cents = int64(v*100 + 0.5)
	case nil:
		return nil, ErrNoAmount
	default:
		return nil, ErrNoAmount
	}
	if cents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrNoAmount)
	}

	merchant := strings.TrimSpace(in.Merchant)
	if merchant == "" {
		return nil, ErrNoMerchant
	}

	date := dateOnly(time.Now().UTC())
	if in.Date != "" {
		if t, ok := parseDate(in.Date); ok {
			date = t
		}
	}

	isCredit := in.Type == "credit"
	if isCredit {
		cents = -cents
	}

	return &ParsedTransaction{
		AmountCents: cents,
		Merchant:    merchant,
		Date:        date,
		CardLast4:   in.CardLast4,
		IsCredit:    isCredit,
	}, nil
}

// WebhookPayload is the tagged union of shapes the webhook accepts: a simple
// structured payload, or an email-style one (subject/body). Exactly one
// branch is populated by ResolveWebhook.
type WebhookPayload struct {
	Simple *SimpleInput
	Email  *EmailInput
}

type EmailInput struct {
	Subject string
	Body    string
	From    string
}

// ResolveWebhook classifies a decoded payload map into one branch of the
// union. Email-style keys win so relay services that include both shapes
// parse the full message.
func ResolveWebhook(data map[string]any) (*WebhookPayload, error) {
	if hasAny(data, "subject", "body", "body-plain", "text") {
		return &WebhookPayload{Email: &EmailInput{
			Subject: stringField(data, "subject"),
			Body:    firstString(data, "body", "body-plain", "text"),
			From:    stringField(data, "from"),
		}}, nil
	}
	if hasAny(data, "amount", "merchant") {
		return &WebhookPayload{Simple: &SimpleInput{
			Amount:    data["amount"],
			Merchant:  stringField(data, "merchant"),
			Date:      stringField(data, "date"),
			CardLast4: stringField(data, "card_last4"),
			Type:      stringField(data, "type"),
		}}, nil
	}
	return nil, ErrBadPayload
}

// Normalize runs the populated branch through its parser.
func (p *WebhookPayload) Normalize() (*ParsedTransaction, error) {
	if p.Email != nil {
		return AlertEmail(p.Email.Subject, p.Email.Body)
	}
	if p.Simple != nil {
		return Simple(*p.Simple)
	}
	return nil, ErrBadPayload
}

func hasAny(data map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := data[k]; ok {
			return true
		}
	}
	return false
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func firstString(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := data[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
