package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvals"
	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/server"
	"github.com/viant/approvals/service/approval"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *approvals.Service) {
	t.Helper()
	previous := clock.NowFunc
	clock.NowFunc = func() time.Time { return baseTime }
	t.Cleanup(func() { clock.NowFunc = previous })

	service, err := approvals.New()
	assert.NoError(t, err)
	httpServer := server.New(service, approvals.DefaultConfig().Server)
	testServer := httptest.NewServer(httpServer.Handler())
	t.Cleanup(testServer.Close)
	return testServer, service
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	assert.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestApprovalLifecycle(t *testing.T) {
	testServer, _ := newTestServer(t)

	// create
	resp := postJSON(t, testServer.URL+"/v1/approvals", &approval.NewRequest{
		WorkflowID:      "wf-1",
		AgentName:       "planner",
		TaskDescription: "rotate production credentials",
		ExpiresAt:       baseTime.Add(time.Hour),
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[*approval.Request](t, resp)
	assert.Equal(t, approval.StatusPending, created.Status)

	// pending listing includes it
	listResp, err := http.Get(testServer.URL + "/v1/approvals/pending")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	pending := decode[[]*approval.Request](t, listResp)
	assert.Len(t, pending, 1)

	// fetch by id
	getResp, err := http.Get(testServer.URL + "/v1/approvals/" + created.ID)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	// approve
	resp = postJSON(t, fmt.Sprintf("%s/v1/approvals/%s/decision", testServer.URL, created.ID),
		map[string]interface{}{"approved": true, "reason": "verified"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decided := decode[*approval.Request](t, resp)
	assert.Equal(t, approval.StatusApproved, decided.Status)

	// second decision conflicts
	resp = postJSON(t, fmt.Sprintf("%s/v1/approvals/%s/decision", testServer.URL, created.ID),
		map[string]interface{}{"approved": false})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestValidationAndNotFound(t *testing.T) {
	testServer, _ := newTestServer(t)

	// expiry not in the future
	resp := postJSON(t, testServer.URL+"/v1/approvals", &approval.NewRequest{
		WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// malformed JSON
	malformed, err := http.Post(testServer.URL+"/v1/approvals", "application/json", bytes.NewReader([]byte("{")))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, malformed.StatusCode)
	malformed.Body.Close()

	// unknown id
	getResp, err := http.Get(testServer.URL + "/v1/approvals/no-such-id")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	getResp.Body.Close()
}

func TestCancel(t *testing.T) {
	testServer, _ := newTestServer(t)

	resp := postJSON(t, testServer.URL+"/v1/approvals", &approval.NewRequest{
		WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Hour),
	})
	created := decode[*approval.Request](t, resp)

	cancelResp := postJSON(t, fmt.Sprintf("%s/v1/approvals/%s/cancel", testServer.URL, created.ID), map[string]string{})
	assert.Equal(t, http.StatusOK, cancelResp.StatusCode)
	canceled := decode[*approval.Request](t, cancelResp)
	assert.Equal(t, approval.StatusCanceled, canceled.Status)
}

func TestHealthAndMetrics(t *testing.T) {
	testServer, _ := newTestServer(t)

	health, err := http.Get(testServer.URL + "/healthz")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, health.StatusCode)
	health.Body.Close()

	metrics, err := http.Get(testServer.URL + "/metrics")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	metrics.Body.Close()
}
