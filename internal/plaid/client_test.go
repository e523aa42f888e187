package plaid

import (
	"testing"
	"time"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		ClientID:    "client",
		Secret:      "secret",
		AccessToken: "token",
		Environment: "sandbox",
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Secret = ""
	assert.ErrorIs(t, missing.Validate(), common.ErrMissingConfig)

	missing = valid
	missing.AccessToken = ""
	assert.ErrorIs(t, missing.Validate(), common.ErrMissingConfig)

	bad := valid
	bad.Environment = "staging"
	assert.ErrorIs(t, bad.Validate(), common.ErrInvalidConfig)
}

func TestLiabilityFact(t *testing.T) {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	liability := CardLiability{
		AccountID:            "acct-1",
		CardTail:             "4521",
		LastStatementBalance: 8500,
		MinimumPayment:       425,
		DueDate:              &due,
	}

	fact := liability.Fact()
	assert.Equal(t, "plaid:acct-1", string(fact.SMSID))
	assert.Equal(t, "4521", fact.CardTail)
	assert.InDelta(t, 8500.0, fact.Amount, 0.001)
	assert.InDelta(t, 425.0, fact.MinDue, 0.001)
	assert.Equal(t, &due, fact.DueDate)
}
