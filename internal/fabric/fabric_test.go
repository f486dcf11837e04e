package fabric

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandipan8609/fabric-migration-v1/internal/azauth"
	"github.com/sandipan8609/fabric-migration-v1/internal/logging"
)

const (
	testWorkspaceID = "95e132cd-cf5f-4e15-a9e1-7506994aa23c"
	testPipelineID  = "40dfe58b-19e1-47bf-bafb-2b38705dd06f"
)

func TestValidateGUID(t *testing.T) {
	assert.NoError(t, ValidateGUID("workspace_id", testWorkspaceID))
	assert.Error(t, ValidateGUID("workspace_id", "not-a-guid"))
	assert.Error(t, ValidateGUID("workspace_id", ""))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithLogger(logging.NewNop()),
		WithPolling(time.Millisecond, 1.5, 500*time.Millisecond),
	}, opts...)
	return NewClient(azauth.StaticProvider("fabric-token"), opts...)
}

func TestTrigger(t *testing.T) {
	var gotPayload map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/workspaces/"+testWorkspaceID+"/items/"+testPipelineID+"/jobs/instances", r.URL.Path)
		assert.Equal(t, "Pipeline", r.URL.Query().Get("jobType"))
		assert.Equal(t, "Bearer fabric-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{"id": "run-1"})
	})

	runID, err := c.Trigger(context.Background(), testWorkspaceID, testPipelineID, map[string]any{"entity_id": "sales"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	exec := gotPayload["executionData"].(map[string]any)
	assert.Equal(t, "sales", exec["parameters"].(map[string]any)["entity_id"])
}

func TestTriggerLegacyRunIDField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"jobInstanceId": "run-legacy"})
	})

	runID, err := c.Trigger(context.Background(), testWorkspaceID, testPipelineID, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-legacy", runID)
}

func TestTriggerMissingRunID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := c.Trigger(context.Background(), testWorkspaceID, testPipelineID, nil)
	assert.ErrorContains(t, err, "missing run id")
}

func TestTriggerRejectsInvalidGUIDs(t *testing.T) {
	c := NewClient(azauth.StaticProvider("t"), WithLogger(logging.NewNop()))
	_, err := c.Trigger(context.Background(), "bad", testPipelineID, nil)
	assert.Error(t, err)
}

func TestPollUntilTerminal(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		status := "InProgress"
		if calls.Add(1) >= 3 {
			status = "Succeeded"
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"startTime": "2026-08-30T10:00:00Z",
		})
	})

	result, err := c.Poll(context.Background(), testWorkspaceID, testPipelineID, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.True(t, result.Terminal())
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestPollFailureCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status":         "Failed",
			"failureMessage": "activity X failed",
		})
	})

	result, err := c.Poll(context.Background(), testWorkspaceID, testPipelineID, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "activity X failed", result.Error)
}

func TestPollTimesOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "InProgress"})
	})

	result, err := c.Poll(context.Background(), testWorkspaceID, testPipelineID, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, result.Status)
	assert.False(t, result.Terminal())
}

func TestRun(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "run-9"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "Succeeded"})
	})

	result, err := c.Run(context.Background(), testWorkspaceID, testPipelineID, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-9", result.RunID)
	assert.Equal(t, StatusSucceeded, result.Status)
}
