package azauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Scopes for the services the migration talks to.
const (
	ScopeManagement = "https://management.azure.com/"
	ScopeFabric     = "https://api.fabric.microsoft.com/.default"
	ScopeSQL        = "https://database.windows.net/.default"
)

// TokenProvider yields bearer tokens for a given scope.
type TokenProvider interface {
	Token(ctx context.Context, scope string) (string, error)
}

// ManagedIdentityProvider acquires tokens from the ambient managed
// identity endpoint available inside Azure compute.
type ManagedIdentityProvider struct {
	Endpoint string // IDENTITY_ENDPOINT
	Header   string // IDENTITY_HEADER
	Client   *http.Client
}

func (p *ManagedIdentityProvider) Token(ctx context.Context, scope string) (string, error) {
	if p.Endpoint == "" || p.Header == "" {
		return "", fmt.Errorf("managed identity endpoint not configured")
	}

	reqURL := fmt.Sprintf("%s?resource=%s", p.Endpoint, url.QueryEscape(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-IDENTITY-HEADER", p.Header)
	req.Header.Set("Metadata", "True")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to acquire token via managed identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("managed identity endpoint returned %s", resp.Status)
	}
	return decodeToken(resp)
}

func (p *ManagedIdentityProvider) httpClient() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// ClientCredentialsProvider acquires tokens for a service principal via
// the v2 token endpoint.
type ClientCredentialsProvider struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	// BaseURL overrides the login endpoint in tests.
	BaseURL string
}

func (p *ClientCredentialsProvider) Token(ctx context.Context, scope string) (string, error) {
	if p.TenantID == "" || p.ClientID == "" || p.ClientSecret == "" {
		return "", fmt.Errorf("service principal credentials not configured")
	}

	base := p.BaseURL
	if base == "" {
		base = "https://login.microsoftonline.com"
	}
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", base, p.TenantID)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)
	form.Set("scope", scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token acquisition failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}
	return decodeToken(resp)
}

// StaticProvider returns a fixed token, for tests and pre-acquired
// credentials.
type StaticProvider string

func (p StaticProvider) Token(context.Context, string) (string, error) {
	return string(p), nil
}

func decodeToken(resp *http.Response) (string, error) {
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token response did not contain access_token")
	}
	return body.AccessToken, nil
}
