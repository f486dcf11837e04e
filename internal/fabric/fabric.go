package fabric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sandipan8609/fabric-migration-v1/internal/azauth"
)

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F\-]{36}$`)

// ValidateGUID checks that a value looks like a GUID, naming the field in
// the error.
func ValidateGUID(name, value string) error {
	if !guidPattern.MatchString(value) {
		return fmt.Errorf("%s appears invalid: %q (expect GUID)", name, value)
	}
	return nil
}

// Terminal job statuses.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
	StatusTimeout   = "TIMEOUT"
	StatusUnknown   = "UNKNOWN"
)

// RunResult describes a pipeline job run after polling finished.
type RunResult struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Terminal reports whether the run reached a final state.
func (r RunResult) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Client triggers and polls Fabric pipeline job runs.
type Client struct {
	tokens  azauth.TokenProvider
	client  *http.Client
	logger  *slog.Logger
	baseURL string

	firstDelay time.Duration
	backoff    float64
	maxWait    time.Duration
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

// WithBaseURL overrides the API endpoint in tests.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = u }
}

// WithPolling tunes the status polling schedule.
func WithPolling(firstDelay time.Duration, backoff float64, maxWait time.Duration) Option {
	return func(cl *Client) {
		cl.firstDelay = firstDelay
		cl.backoff = backoff
		cl.maxWait = maxWait
	}
}

// NewClient creates a Fabric pipeline job client.
func NewClient(tokens azauth.TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
		baseURL:    "https://api.fabric.microsoft.com",
		firstDelay: 5 * time.Second,
		backoff:    1.5,
		maxWait:    600 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger starts a pipeline job run and returns the run instance id.
// Parameters end up under executionData.parameters in the job payload.
func (c *Client) Trigger(ctx context.Context, workspaceID, pipelineID string, parameters map[string]any) (string, error) {
	if err := ValidateGUID("workspace_id", workspaceID); err != nil {
		return "", err
	}
	if err := ValidateGUID("pipeline_id", pipelineID); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/workspaces/%s/items/%s/jobs/instances?jobType=Pipeline",
		c.baseURL, workspaceID, pipelineID)

	payload := map[string]any{}
	if len(parameters) > 0 {
		payload["executionData"] = map[string]any{"parameters": parameters}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	c.logger.Info("triggering pipeline run", "workspace_id", workspaceID, "pipeline_id", pipelineID)
	data, err := c.doJSON(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	runID, _ := data["id"].(string)
	if runID == "" {
		// Older API responses used jobInstanceId.
		runID, _ = data["jobInstanceId"].(string)
	}
	if runID == "" {
		return "", fmt.Errorf("trigger response missing run id")
	}
	return runID, nil
}

// Poll watches a job run until it reaches a terminal state or the maximum
// wait elapses, backing off between polls.
func (c *Client) Poll(ctx context.Context, workspaceID, pipelineID, runID string) (RunResult, error) {
	if err := ValidateGUID("workspace_id", workspaceID); err != nil {
		return RunResult{}, err
	}
	if err := ValidateGUID("pipeline_id", pipelineID); err != nil {
		return RunResult{}, err
	}

	url := fmt.Sprintf("%s/v1/workspaces/%s/items/%s/jobs/instances/%s",
		c.baseURL, workspaceID, pipelineID, runID)

	result := RunResult{RunID: runID, Status: StatusTimeout}
	delay := c.firstDelay

	for waited := time.Duration(0); waited <= c.maxWait; {
		data, err := c.doJSON(ctx, http.MethodGet, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			// Transient poll failures keep the loop alive until maxWait.
			result.Status = StatusUnknown
			result.Error = err.Error()
		} else {
			result = runResultFrom(runID, data)
		}

		c.logger.Info("pipeline run status", "run_id", runID, "status", result.Status, "waited", waited.String())
		if result.Terminal() {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
		waited += delay
		delay = time.Duration(float64(delay) * c.backoff)
	}

	if !result.Terminal() {
		result.Status = StatusTimeout
	}
	return result, nil
}

// Run triggers a pipeline job and polls it to completion.
func (c *Client) Run(ctx context.Context, workspaceID, pipelineID string, parameters map[string]any) (RunResult, error) {
	runID, err := c.Trigger(ctx, workspaceID, pipelineID, parameters)
	if err != nil {
		return RunResult{}, err
	}
	return c.Poll(ctx, workspaceID, pipelineID, runID)
}

func runResultFrom(runID string, data map[string]any) RunResult {
	status, _ := data["status"].(string)
	r := RunResult{RunID: runID, Status: normalizeStatus(status)}
	r.StartTime, _ = data["startTime"].(string)
	r.EndTime, _ = data["endTime"].(string)
	for _, key := range []string{"error", "message", "failureMessage"} {
		if msg, ok := data[key].(string); ok && msg != "" {
			r.Error = msg
			break
		}
	}
	return r
}

func normalizeStatus(status string) string {
	if status == "" {
		return StatusUnknown
	}
	return strings.ToUpper(status)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body io.Reader) (map[string]any, error) {
	token, err := c.tokens.Token(ctx, azauth.ScopeFabric)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s returned %s: %s", method, url, resp.Status, string(raw))
	}

	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return data, nil
}
