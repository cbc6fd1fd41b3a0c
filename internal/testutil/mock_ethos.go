// Package testutil provides testing utilities for the integration API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Defaults served by a new MockEthos.
const (
	DefaultAPIKey      = "test-api-key"
	DefaultToken       = "test-token"
	DefaultPageSize    = 25
	DefaultMaxPageSize = 100
)

// RecordedQuery is one listing request seen by the mock.
type RecordedQuery struct {
	Resource string
	RawQuery string

	// Paged is false when the request carried no limit parameter.
	Paged  bool
	Offset int
	Limit  int

	Accept string
}

// MockEthos is a configurable mock integration API: a token exchange at
// /auth and paged listings at /api/{resource}.
type MockEthos struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	apiKey          string
	token           string
	resources       map[string]int
	defaultPageSize int
	maxPageSize     int
	authStatus      int
	failures        map[int]int
	delay           time.Duration

	// Tracking
	authCount         int
	apiCount          int
	queries           []RecordedQuery
	lastRequestHeader http.Header
}

// NewMockEthos starts a mock server with no resources.
func NewMockEthos() *MockEthos {
	mock := &MockEthos{
		handlers:        make(map[string]http.HandlerFunc),
		apiKey:          DefaultAPIKey,
		token:           DefaultToken,
		resources:       make(map[string]int),
		defaultPageSize: DefaultPageSize,
		maxPageSize:     DefaultMaxPageSize,
		failures:        make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch {
		case r.URL.Path == "/auth":
			mock.handleAuth(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/"):
			mock.handleList(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockEthos) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockEthos) Close() {
	m.server.Close()
}

// SetResource serves rows generated rows for resource.
func (m *MockEthos) SetResource(resource string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[resource] = rows
}

// SetPageSizes sets the page size used without a limit parameter and the
// advertised max page size.
func (m *MockEthos) SetPageSizes(defaultSize, maxSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPageSize = defaultSize
	m.maxPageSize = maxSize
}

// SetHandler overrides the handler for a specific path.
func (m *MockEthos) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetAuthStatus makes the token exchange answer with status. Zero restores normal behavior.
func (m *MockEthos) SetAuthStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authStatus = status
}

// RotateToken makes the server issue and accept only token from now on.
func (m *MockEthos) RotateToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// FailRequest makes the n-th listing request (1-based, counted since the last
// Reset) answer with status.
func (m *MockEthos) FailRequest(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[n] = status
}

// SetDelay delays every listing response.
func (m *MockEthos) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Reset clears tracking counters and injected failures.
func (m *MockEthos) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authCount = 0
	m.apiCount = 0
	m.queries = nil
	m.failures = make(map[int]int)
	m.lastRequestHeader = nil
}

// AuthCount returns the number of token exchanges.
func (m *MockEthos) AuthCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authCount
}

// APIRequestCount returns the number of listing requests.
func (m *MockEthos) APIRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.apiCount
}

// Queries returns a copy of the listing requests in arrival order.
func (m *MockEthos) Queries() []RecordedQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedQuery, len(m.queries))
	copy(out, m.queries)
	return out
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockEthos) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

func (m *MockEthos) handleAuth(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.authCount++
	status := m.authStatus
	apiKey := m.apiKey
	token := m.token
	m.mu.Unlock()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+apiKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(token))
}

func (m *MockEthos) handleList(w http.ResponseWriter, r *http.Request) {
	resource := strings.TrimPrefix(r.URL.Path, "/api/")
	query := r.URL.Query()

	recorded := RecordedQuery{
		Resource: resource,
		RawQuery: r.URL.RawQuery,
		Accept:   r.Header.Get("Accept"),
	}
	if raw := query.Get("limit"); raw != "" {
		recorded.Paged = true
		recorded.Limit, _ = strconv.Atoi(raw)
		recorded.Offset, _ = strconv.Atoi(query.Get("offset"))
	}

	m.mu.Lock()
	m.apiCount++
	m.queries = append(m.queries, recorded)
	failStatus := m.failures[m.apiCount]
	token := m.token
	total, known := m.resources[resource]
	defaultSize := m.defaultPageSize
	maxSize := m.maxPageSize
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if r.Header.Get("Authorization") != "Bearer "+token {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"code":"Global.UnauthorizedOperation"}]}`))
		return
	}
	if failStatus != 0 {
		w.WriteHeader(failStatus)
		w.Write([]byte(`{"errors":[{"code":"Global.Internal.Error"}]}`))
		return
	}
	if !known {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"code":"Global.SchemaNotFound"}]}`))
		return
	}

	offset, limit := 0, defaultSize
	if recorded.Paged {
		offset, limit = recorded.Offset, recorded.Limit
	}
	if limit > maxSize {
		limit = maxSize
	}

	contentType := recorded.Accept
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	w.Header().Set("X-Max-Page-Size", strconv.Itoa(maxSize))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RowsJSON(resource, offset, offset+limit, total)))
}

// RowsJSON renders rows [from, to) of a generated resource as a JSON array,
// clipped to total.
func RowsJSON(resource string, from, to, total int) string {
	if from < 0 {
		from = 0
	}
	if to > total {
		to = total
	}
	var b strings.Builder
	b.WriteByte('[')
	for i := from; i < to; i++ {
		if i > from {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":"%s-%d","index":%d}`, resource, i, i)
	}
	b.WriteByte(']')
	return b.String()
}
