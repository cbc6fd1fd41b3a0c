package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ellucian-developer/ethos-integration-sdk-go/internal/testutil"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/client"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/content"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/proxy"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, rows int) (*httptest.Server, *testutil.MockEthos) {
	t.Helper()

	mock := testutil.NewMockEthos()
	t.Cleanup(mock.Close)
	mock.SetResource("persons", rows)

	cfg := client.DefaultConfig(testutil.DefaultAPIKey)
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	server := httptest.NewServer(newMux(proxy.New(c, zerolog.Nop()), nil, 0))
	t.Cleanup(server.Close)
	return server, mock
}

func get(t *testing.T, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_WithoutRedis(t *testing.T) {
	w := httptest.NewRecorder()
	readyHandler(nil)(w, httptest.NewRequest("GET", "/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, 30)

	// One fetch so the paging and request vectors have children.
	get(t, server.URL+"/api/persons")

	resp, body := get(t, server.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	out := string(body)
	for _, name := range []string{"ethos_requests_total", "ethos_paging_plans_total", "ethos_token_refreshes_total"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected metrics output to contain %s", name)
		}
	}
}

func TestResourceHandler(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantRows  int
		wantFirst int
	}{
		{name: "all pages", query: "", wantRows: 60, wantFirst: 0},
		{name: "from offset", query: "?offset=10&pageSize=20", wantRows: 50, wantFirst: 10},
		{name: "to num pages", query: "?pageSize=10&numPages=2", wantRows: 20, wantFirst: 0},
		{name: "from offset to num rows", query: "?offset=7&numRows=30&pageSize=20", wantRows: 30, wantFirst: 7},
		{name: "criteria", query: "?criteria=" + url.QueryEscape(`{"names":[{"lastName":"Smith"}]}`), wantRows: 60, wantFirst: 0},
		{name: "offset beyond total", query: "?offset=500", wantRows: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, 60)

			resp, body := get(t, server.URL+"/api/persons"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("X-Total-Count"); got != "" && got != "60" {
				t.Errorf("X-Total-Count = %q, want 60", got)
			}

			var rows []struct {
				Index int `json:"index"`
			}
			if err := json.Unmarshal(body, &rows); err != nil {
				t.Fatalf("Failed to decode body %q: %v", body, err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("len(rows) = %d, want %d", len(rows), tt.wantRows)
			}
			for i, row := range rows {
				if row.Index != tt.wantFirst+i {
					t.Errorf("rows[%d].index = %d, want %d", i, row.Index, tt.wantFirst+i)
					break
				}
			}
		})
	}
}

func TestResourceHandler_TotalCountHeader(t *testing.T) {
	server, _ := newTestServer(t, 60)

	resp, _ := get(t, server.URL+"/api/persons?numRows=5")
	if got := resp.Header.Get("X-Total-Count"); got != "60" {
		t.Errorf("X-Total-Count = %q, want 60", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestResourceHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "non-integer offset", path: "/api/persons?offset=abc", status: http.StatusBadRequest},
		{name: "two filters", path: "/api/persons?criteria=%7B%7D&filter=a%3Db", status: http.StatusBadRequest},
		{name: "named query without value", path: "/api/persons?namedQuery=keywordSearch", status: http.StatusBadRequest},
		{name: "unknown resource", path: "/api/unknown", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, 60)

			resp, body := get(t, server.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, resp.StatusCode, body)
			}

			var payload map[string]string
			if err := json.Unmarshal(body, &payload); err != nil || payload["error"] == "" {
				t.Errorf("Expected JSON error body, got %q", body)
			}
		})
	}
}

func TestResourceHandler_UpstreamFailure(t *testing.T) {
	server, mock := newTestServer(t, 60)
	mock.FailRequest(2, http.StatusServiceUnavailable)

	resp, _ := get(t, server.URL+"/api/persons")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "missing resource", err: pagination.ErrMissingResource, status: http.StatusBadRequest},
		{name: "invalid filter", err: fmt.Errorf("x: %w", proxy.ErrInvalidFilter), status: http.StatusBadRequest},
		{name: "api error", err: fmt.Errorf("probe: %w", &client.APIError{StatusCode: 500}), status: http.StatusBadGateway},
		{name: "missing total count", err: pagination.ErrMissingTotalCount, status: http.StatusBadGateway},
		{name: "malformed body", err: content.ErrNotArray, status: http.StatusBadGateway},
		{name: "other", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.status {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "ethos-proxy dev") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	t.Setenv("ETHOS_API_KEY", "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--region", "mars"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Execute() should fail without an api key")
	}
	if !strings.Contains(err.Error(), "Config.API.Key") || !strings.Contains(err.Error(), "Config.API.Region") {
		t.Errorf("Execute() error = %v, want key and region violations", err)
	}
}
