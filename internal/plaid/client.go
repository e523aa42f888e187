// Package plaid fetches credit card liability data from the Plaid API as a
// structured bill source.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("%w: plaid environment must be sandbox or production, got %q", common.ErrInvalidConfig, c.Environment)
	}
	return nil
}

// CardLiability is one credit card's statement facts as reported by Plaid.
type CardLiability struct {
	DueDate              *time.Time
	AccountID            string
	CardTail             string
	LastStatementBalance float64
	MinimumPayment       float64
}

// Client fetches credit liabilities.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	accessToken string
	environment string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		environment: cfg.Environment,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetCardLiabilities fetches credit card liabilities: last statement
// balance, minimum payment, and next due date per card account.
func (c *Client) GetCardLiabilities(ctx context.Context) ([]CardLiability, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	c.logger.Info("Fetching credit liabilities from Plaid")

	var resp plaid.LiabilitiesGetResponse
	err := common.WithRetry(ctx, func() error {
		req := plaid.NewLiabilitiesGetRequest(c.accessToken)
		var reqErr error
		resp, _, reqErr = c.client.PlaidApi.LiabilitiesGet(ctx).
			LiabilitiesGetRequest(*req).Execute()
		if reqErr != nil {
			return c.wrapPlaidError(reqErr)
		}
		return nil
	}, *c.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liabilities: %w", err)
	}

	masks := make(map[string]string)
	for _, account := range resp.GetAccounts() {
		if mask, ok := account.GetMaskOk(); ok && mask != nil {
			masks[account.GetAccountId()] = *mask
		}
	}

	var liabilities []CardLiability
	for _, credit := range resp.GetLiabilities().Credit {
		accountID := credit.GetAccountId()
		tail := masks[accountID]
		if tail == "" {
			c.logger.Warn("Credit account has no mask, skipping", "account_id", accountID)
			continue
		}

		liability := CardLiability{
			AccountID:            accountID,
			CardTail:             tail,
			LastStatementBalance: credit.GetLastStatementBalance(),
			MinimumPayment:       credit.GetMinimumPaymentAmount(),
		}
		if due := credit.GetNextPaymentDueDate(); due != "" {
			if parsed, parseErr := time.Parse("2006-01-02", due); parseErr == nil {
				liability.DueDate = &parsed
			}
		}
		liabilities = append(liabilities, liability)
	}

	c.logger.Info("Fetched credit liabilities", "count", len(liabilities))

	return liabilities, nil
}

// wrapPlaidError converts Plaid API errors into our error taxonomy.
func (c *Client) wrapPlaidError(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return err
	}

	switch plaidErr.ErrorCode {
	case "RATE_LIMIT_EXCEEDED":
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage),
			Retryable: true,
		}
	default:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s: %s", common.ErrPlaidConnection, plaidErr.ErrorCode, plaidErr.ErrorMessage),
			Retryable: false,
		}
	}
}

// Fact converts a liability into a validated bill fact for the linker.
func (l CardLiability) Fact() model.ValidatedBillFact {
	return model.ValidatedBillFact{
		SMSID:    model.MessageID("plaid:" + l.AccountID),
		SMSBody:  fmt.Sprintf("Plaid liability for account ending %s", l.CardTail),
		CardTail: l.CardTail,
		Amount:   l.LastStatementBalance,
		MinDue:   l.MinimumPayment,
		DueDate:  l.DueDate,
	}
}
