package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"custodial-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentProvider against the Paystack REST API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a Paystack API client.
func NewClient(baseURL, secretKey string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: httpClient,
		log:        log,
	}
}

type initializeBody struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // minor units
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a pending charge with the provider and
// returns the hosted checkout URL.
func (c *Client) InitializeTransaction(ctx context.Context, req ports.InitializeRequest) (*ports.InitializeResponse, error) {
	body, err := json.Marshal(initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call paystack initialize: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("reference", req.Reference).
			Msg("Paystack initialize returned non-200")
		return nil, fmt.Errorf("paystack initialize status %d", resp.StatusCode)
	}

	var envelope initializeEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", envelope.Message)
	}

	return &ports.InitializeResponse{
		AuthorizationURL: envelope.Data.AuthorizationURL,
		AccessCode:       envelope.Data.AccessCode,
		Reference:        envelope.Data.Reference,
	}, nil
}
