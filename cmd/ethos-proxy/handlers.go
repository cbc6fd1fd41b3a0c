package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/client"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/content"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/logging"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/metrics"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/proxy"
	"github.com/redis/go-redis/v9"
)

// errBadQuery marks caller mistakes in the proxy's own query parameters.
var errBadQuery = errors.New("bad query")

func newMux(p *proxy.Client, redisClient *redis.Client, defaultPageSize int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/{resource}", resourceHandler(p, defaultPageSize))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports 503 while the token store is unreachable. Without
// Redis the proxy is always ready.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// resourceHandler serves GET /api/{resource} as one flat JSON array.
//
// Query parameters: version, pageSize, offset, numPages, numRows and at most
// one of criteria, namedQuery + query, or filter (an encoded filter map).
func resourceHandler(p *proxy.Client, defaultPageSize int) http.HandlerFunc {
	logger := logging.NewLogger("server")

	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseRequest(r, defaultPageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		pages, err := p.Pages(r.Context(), req)
		if err != nil {
			status := statusFor(err)
			logger.Warn().
				Err(err).
				Str("resource", req.Resource).
				Int("status", status).
				Msg("Resource request failed")
			writeError(w, status, err)
			return
		}

		rows, err := proxy.FlattenPages(pages)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		body, err := json.Marshal(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if len(pages) > 0 {
			if total, err := pages[0].TotalCount(); err == nil {
				w.Header().Set("X-Total-Count", strconv.Itoa(total))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func parseRequest(r *http.Request, defaultPageSize int) (pagination.Request, error) {
	q := r.URL.Query()
	req := pagination.NewRequest(r.PathValue("resource")).
		WithVersion(q.Get("version")).
		WithPageSize(defaultPageSize)

	ints := []struct {
		name string
		set  func(pagination.Request, int) pagination.Request
	}{
		{"pageSize", pagination.Request.WithPageSize},
		{"offset", pagination.Request.WithOffset},
		{"numPages", pagination.Request.WithNumPages},
		{"numRows", pagination.Request.WithNumRows},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be an integer, got %q", errBadQuery, p.name, raw)
		}
		req = p.set(req, n)
	}

	var filters []pagination.Filter
	if criteria := q.Get("criteria"); criteria != "" {
		filters = append(filters, pagination.Criteria(criteria))
	}
	if name := q.Get("namedQuery"); name != "" {
		value := q.Get("query")
		if value == "" {
			return req, fmt.Errorf("%w: namedQuery needs a query value", errBadQuery)
		}
		filters = append(filters, pagination.NamedQuery(name, value))
	}
	if filterMap := q.Get("filter"); filterMap != "" {
		filters = append(filters, pagination.FilterMapQuery(filterMap))
	}
	switch len(filters) {
	case 0:
	case 1:
		req = req.WithFilter(filters[0])
	default:
		return req, fmt.Errorf("%w: criteria, namedQuery and filter are mutually exclusive", errBadQuery)
	}

	if strings.TrimSpace(req.Resource) == "" {
		return req, pagination.ErrMissingResource
	}
	return req.Build(), nil
}

// statusFor maps a fetch error to the proxy's response status.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, pagination.ErrMissingResource), errors.Is(err, proxy.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.As(err, &apiErr),
		errors.Is(err, pagination.ErrMissingTotalCount),
		errors.Is(err, content.ErrNotArray):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
