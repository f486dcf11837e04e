package capacity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/sandipan8609/fabric-migration-v1/internal/azauth"
)

const apiVersion = "2022-07-01-preview"

// ErrAlreadyInState is returned when the service reports the capacity
// cannot be updated, which in practice means it already is in the
// requested state.
var ErrAlreadyInState = errors.New("capacity may already be in the requested state")

// resourceIDPattern matches a Fabric capacity ARM resource id.
var resourceIDPattern = regexp.MustCompile(
	`(?i)^/subscriptions/[a-f0-9-]+/resourceGroups/[^/]+/providers/Microsoft\.Fabric/capacities/[^/]+$`)

// ValidSKUs lists the Fabric capacity SKUs, F2 through F2048.
var ValidSKUs = func() []string {
	skus := make([]string, 0, 11)
	for i := 1; i <= 11; i++ {
		skus = append(skus, fmt.Sprintf("F%d", 1<<i))
	}
	return skus
}()

// ValidateResourceID checks a capacity resource id's shape.
func ValidateResourceID(resourceID string) error {
	if !resourceIDPattern.MatchString(resourceID) {
		return fmt.Errorf("invalid resource id %q: expected /subscriptions/<sub>/resourceGroups/<rg>/providers/Microsoft.Fabric/capacities/<name>", resourceID)
	}
	return nil
}

// ValidateSKU checks a target SKU name.
func ValidateSKU(sku string) error {
	for _, valid := range ValidSKUs {
		if sku == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid SKU %q: valid options are %v", sku, ValidSKUs)
}

// Client manages Fabric capacity state through the Azure management API.
type Client struct {
	tokens  azauth.TokenProvider
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithBaseURL overrides the management endpoint in tests.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = u }
}

// NewClient creates a capacity management client.
func NewClient(tokens azauth.TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokens:  tokens,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
		baseURL: "https://management.azure.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suspend pauses a capacity.
func (c *Client) Suspend(ctx context.Context, resourceID string) error {
	return c.action(ctx, resourceID, "suspend")
}

// Resume starts a suspended capacity.
func (c *Client) Resume(ctx context.Context, resourceID string) error {
	return c.action(ctx, resourceID, "resume")
}

func (c *Client) action(ctx context.Context, resourceID, action string) error {
	if err := ValidateResourceID(resourceID); err != nil {
		return err
	}

	c.logger.Info("executing capacity action", "action", action, "resource_id", resourceID)
	url := fmt.Sprintf("%s%s/%s?api-version=%s", c.baseURL, resourceID, action, apiVersion)

	resp, err := c.do(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to %s capacity: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("capacity action accepted", "action", action)
		return nil
	}

	apiErr := parseAPIError(resp)
	if apiErr.Message == "Service is not ready to be updated" {
		c.logger.Warn("capacity not ready to be updated", "action", action)
		return fmt.Errorf("%s: %w", action, ErrAlreadyInState)
	}
	return fmt.Errorf("failed to %s capacity: %s: %s", action, resp.Status, apiErr.Message)
}

// Scale changes a capacity's SKU.
func (c *Client) Scale(ctx context.Context, resourceID, sku string) error {
	if err := ValidateResourceID(resourceID); err != nil {
		return err
	}
	if err := ValidateSKU(sku); err != nil {
		return err
	}

	c.logger.Info("scaling capacity", "resource_id", resourceID, "sku", sku)
	url := fmt.Sprintf("%s%s?api-version=%s", c.baseURL, resourceID, apiVersion)

	payload := map[string]any{
		"sku": map[string]any{"name": sku, "tier": "Fabric"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to scale capacity to %s: %w", sku, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("scale operation accepted", "sku", sku)
		return nil
	}
	apiErr := parseAPIError(resp)
	return fmt.Errorf("failed to scale capacity to %s: %s: %s", sku, resp.Status, apiErr.Message)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	token, err := c.tokens.Token(ctx, azauth.ScopeManagement)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.client.Do(req)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseAPIError(resp *http.Response) apiError {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiError{Message: "unknown error"}
	}

	var envelope struct {
		Error *apiError `json:"error"`
		apiError
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apiError{Message: string(raw)}
	}
	if envelope.Error != nil {
		return *envelope.Error
	}
	if envelope.Message != "" {
		return envelope.apiError
	}
	return apiError{Message: string(raw)}
}
