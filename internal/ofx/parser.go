// Package ofx parses OFX/QFX credit card statement files into bill facts.
// This is the structured sibling of the SMS pipeline: the statement balance
// arrives machine-readable, so no extraction or grounding is needed before
// linking and reconciliation.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/due-process/internal/model"
)

// StatementBalance is one credit card statement balance read from an OFX
// file: account tail digits plus the ledger balance as of the statement.
type StatementBalance struct {
	AsOf      time.Time
	AccountID string
	CardTail  string
	Balance   float64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile reads an OFX/QFX file and returns the credit card statement
// balances it carries. Bank (non-card) statements are skipped.
func (p *Parser) ParseFile(reader io.Reader) ([]StatementBalance, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var balances []StatementBalance
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		bal, err := p.processStatement(stmt)
		if err != nil {
			slog.Warn("Failed to process credit card statement",
				"account", stmt.CCAcctFrom.AcctID,
				"error", err)
			continue
		}
		balances = append(balances, bal)
	}

	slog.Info("Parsed OFX file", "cc_statements", len(balances))

	return balances, nil
}

// processStatement extracts the ledger balance from a credit card
// statement.
func (p *Parser) processStatement(stmt *ofxgo.CCStatementResponse) (StatementBalance, error) {
	accountID := string(stmt.CCAcctFrom.AcctID)
	tail := tailDigits(accountID)
	if tail == "" {
		return StatementBalance{}, fmt.Errorf("account %q has no usable tail digits", accountID)
	}

	balance, _ := stmt.BalAmt.Float64()
	// OFX reports card debt as a negative ledger balance.
	if balance < 0 {
		balance = -balance
	}

	return StatementBalance{
		AccountID: accountID,
		CardTail:  tail,
		Balance:   balance,
		AsOf:      stmt.DtAsOf.Time,
	}, nil
}

// Fact converts a statement balance into a validated bill fact for the
// linker. OFX files carry no due date; the reconciler keys these undated
// bills by the source id below, so re-importing the same statement updates
// the earlier record instead of duplicating it.
func (b StatementBalance) Fact() model.ValidatedBillFact {
	return model.ValidatedBillFact{
		SMSID:    model.MessageID("ofx:" + b.AccountID + ":" + b.AsOf.Format("2006-01-02")),
		SMSBody:  fmt.Sprintf("OFX statement for account ending %s as of %s", b.CardTail, b.AsOf.Format("2006-01-02")),
		CardTail: b.CardTail,
		Amount:   b.Balance,
	}
}

var trailingDigitsRe = regexp.MustCompile(`(\d{2,4})\D*$`)

func tailDigits(accountID string) string {
	m := trailingDigitsRe.FindStringSubmatch(accountID)
	if m == nil {
		return ""
	}
	digits := m[1]
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}
