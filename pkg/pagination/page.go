package pagination

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/content"
)

// Response headers carrying paging metadata.
const (
	HeaderTotalCount  = "X-Total-Count"
	HeaderMaxPageSize = "X-Max-Page-Size"
)

// DefaultMaxPageSize applies when a response carries no max page size header.
const DefaultMaxPageSize = 500

// Page is one fetched page.
type Page struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Offset and Limit are the cursor and size the page was requested with.
	// Both are zero for the probe fetch.
	Offset int
	Limit  int
}

// TotalCount parses the total row count header.
func (p *Page) TotalCount() (int, error) {
	raw := p.Header.Get(HeaderTotalCount)
	if raw == "" {
		return 0, fmt.Errorf("%w: header %s missing", ErrMissingTotalCount, HeaderTotalCount)
	}
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s %q: %v", ErrMissingTotalCount, HeaderTotalCount, raw, err)
	}
	return total, nil
}

// MaxPageSize returns the advertised max page size, or DefaultMaxPageSize when
// the header is absent or unusable.
func (p *Page) MaxPageSize() int {
	if n, err := strconv.Atoi(p.Header.Get(HeaderMaxPageSize)); err == nil && n > 0 {
		return n
	}
	return DefaultMaxPageSize
}

// Len counts the rows in the page body.
func (p *Page) Len() (int, error) {
	return content.Count(p.Body)
}

// withBody returns a copy of the page carrying a different body.
func (p *Page) withBody(body []byte) *Page {
	cp := *p
	cp.Header = p.Header.Clone()
	cp.Body = body
	return &cp
}

// PageQuery addresses one fetch. Limit <= 0 requests the server's default
// page with no offset or limit parameters.
type PageQuery struct {
	Resource string
	Version  string
	Filter   Filter
	Offset   int
	Limit    int
}

// PageFetcher is implemented by the transport that performs single page fetches.
type PageFetcher interface {
	FetchPage(ctx context.Context, q PageQuery) (*Page, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, q PageQuery) (*Page, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, q PageQuery) (*Page, error) {
	return f(ctx, q)
}
