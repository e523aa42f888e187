package ofx

import (
	"strings"
	"testing"
)

const testCCStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240215120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>XXXXXXXXXXXX4521
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-125.00
<FITID>JAN01
<NAME>GROCERIES
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-1255.50
<DTASOF>20240201120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFileCreditCardBalance(t *testing.T) {
	p := NewParser()
	balances, err := p.ParseFile(strings.NewReader(testCCStatement))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 statement balance, got %d", len(balances))
	}

	bal := balances[0]
	if bal.CardTail != "4521" {
		t.Errorf("tail = %q, want 4521", bal.CardTail)
	}
	if bal.Balance != 1255.50 {
		t.Errorf("balance = %v, want 1255.50 (sign normalized)", bal.Balance)
	}
	if got := bal.AsOf.Format("2006-01-02"); got != "2024-02-01" {
		t.Errorf("as-of date = %s, want 2024-02-01", got)
	}
}

func TestStatementBalanceFact(t *testing.T) {
	bal := StatementBalance{
		AccountID: "XXXXXXXXXXXX4521",
		CardTail:  "4521",
		Balance:   1255.50,
	}

	fact := bal.Fact()
	if fact.CardTail != "4521" || fact.Amount != 1255.50 {
		t.Errorf("fact fields wrong: %+v", fact)
	}
	if fact.DueDate != nil {
		t.Error("OFX facts are undated")
	}
}

func TestTailDigits(t *testing.T) {
	tests := []struct {
		accountID string
		want      string
	}{
		{"XXXXXXXXXXXX4521", "4521"},
		{"4521990011224521", "4521"},
		{"acct-85", "85"},
		{"no-digits", ""},
	}

	for _, tt := range tests {
		if got := tailDigits(tt.accountID); got != tt.want {
			t.Errorf("tailDigits(%q) = %q, want %q", tt.accountID, got, tt.want)
		}
	}
}
