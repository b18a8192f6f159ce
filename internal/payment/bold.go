package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// LinkRequest is the payload sent to the Bold payments API to obtain a hosted
// payment URL. Reference carries the compras_albumes id so the callback can
// find the purchase.
type LinkRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	CallbackURL string          `json:"callback_url"`
	Reference   string          `json:"reference"`
}

type linkResponse struct {
	PaymentURL string `json:"payment_url"`
}

// Client talks to the Bold payment gateway.
type Client struct {
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

// NewClient builds a gateway client from BOLD_API_URL and BOLD_CALLBACK_URL.
func NewClient() *Client {
	baseURL := os.Getenv("BOLD_API_URL")
	if baseURL == "" {
		baseURL = "https://api.bold.com"
	}

	return &Client{
		baseURL:     baseURL,
		callbackURL: os.Getenv("BOLD_CALLBACK_URL"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreatePaymentLink requests a hosted payment URL. Any non-200 answer is a
// gateway failure.
func (c *Client) CreatePaymentLink(ctx context.Context, req LinkRequest) (string, error) {
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var lr linkResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if lr.PaymentURL == "" {
		return "", fmt.Errorf("payment gateway returned no payment_url")
	}

	return lr.PaymentURL, nil
}
