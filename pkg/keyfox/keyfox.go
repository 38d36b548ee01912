// Package keyfox is the embeddable client for the KeyFox licensing and
// billing gateway. It wraps the Stripe SDK with canonical webhook event
// dispatch and a narrow set of account/subscription operations.
package keyfox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
)

// Config configures a Client. SecretKey is the provider secret
// credential (sk_...). LicenseKey and ValidateURL are optional: when
// both are set, New checks the embedding application's own license
// against the given validation endpoint before returning.
type Config struct {
	SecretKey   string
	LicenseKey  string
	ValidateURL string

	HTTPClient *http.Client
}

// Client is a configured gateway client. Handlers registered on
// Registry are invoked by HandleWebhook for verified events.
type Client struct {
	secretKey string
	Registry  *HandlerRegistry

	httpClient *http.Client
}

// New creates a Client and installs the provider credential. When a
// license key and validation endpoint are configured, the key is
// verified before the client is handed out.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("keyfox: provider secret key is required")
	}

	// Package-level Stripe bindings read the global key.
	stripe.Key = cfg.SecretKey

	c := &Client{
		secretKey:  cfg.SecretKey,
		Registry:   NewHandlerRegistry(),
		httpClient: cfg.HTTPClient,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	if strings.TrimSpace(cfg.LicenseKey) != "" && strings.TrimSpace(cfg.ValidateURL) != "" {
		if err := c.checkLicense(context.Background(), cfg.ValidateURL, cfg.LicenseKey); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// checkLicense posts the configured license key to the validation
// endpoint and fails when the endpoint reports it invalid.
func (c *Client) checkLicense(ctx context.Context, validateURL, licenseKey string) error {
	body, err := json.Marshal(map[string]string{"apiKey": licenseKey})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, validateURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("keyfox: license validation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("keyfox: license validation returned unreadable response (status=%d): %w", resp.StatusCode, err)
	}
	if !out.Valid {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("validation endpoint returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("keyfox: license key rejected: %s", msg)
	}
	return nil
}
