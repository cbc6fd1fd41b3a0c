// Package proxy is the caller-facing API over the paging engine: one method per
// paging pattern, row flattening and typed decoding.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/content"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
	"github.com/rs/zerolog"
)

// ErrInvalidFilter is returned when a filter helper is given an empty filter.
var ErrInvalidFilter = errors.New("invalid filter")

// Client runs top-level fetches through a Pager.
type Client struct {
	pager  *pagination.Pager
	logger zerolog.Logger
}

// New creates a proxy client over fetcher. *client.Client is the usual fetcher.
func New(fetcher pagination.PageFetcher, logger zerolog.Logger) *Client {
	return &Client{
		pager:  pagination.NewPager(fetcher, logger),
		logger: logger.With().Str("component", "proxy").Logger(),
	}
}

// Pages plans and executes req.
func (c *Client) Pages(ctx context.Context, req pagination.Request) ([]*pagination.Page, error) {
	if strings.TrimSpace(req.Resource) == "" {
		return nil, pagination.ErrMissingResource
	}
	return c.pager.Fetch(ctx, req)
}

// TotalCount returns the row count the server reports for req, costing one fetch.
func (c *Client) TotalCount(ctx context.Context, req pagination.Request) (int, error) {
	if strings.TrimSpace(req.Resource) == "" {
		return 0, pagination.ErrMissingResource
	}
	plan, err := c.pager.Plan(ctx, req)
	if err != nil {
		return 0, err
	}
	return plan.TotalCount, nil
}

// GetAllPages fetches every row of resource.
func (c *Client) GetAllPages(ctx context.Context, resource, version string, pageSize int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		Build())
}

// GetPagesFromOffset fetches every row from offset on.
func (c *Client) GetPagesFromOffset(ctx context.Context, resource, version string, pageSize, offset int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithOffset(offset).
		Build())
}

// GetPagesToNumPages fetches at most numPages pages from the start.
func (c *Client) GetPagesToNumPages(ctx context.Context, resource, version string, pageSize, numPages int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithNumPages(numPages).
		Build())
}

// GetPagesFromOffsetToNumPages fetches at most numPages pages starting at offset.
func (c *Client) GetPagesFromOffsetToNumPages(ctx context.Context, resource, version string, pageSize, offset, numPages int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithOffset(offset).
		WithNumPages(numPages).
		Build())
}

// GetPagesToNumRows fetches the first numRows rows.
func (c *Client) GetPagesToNumRows(ctx context.Context, resource, version string, pageSize, numRows int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithNumRows(numRows).
		Build())
}

// GetPagesFromOffsetToNumRows fetches numRows rows starting at offset.
func (c *Client) GetPagesFromOffsetToNumRows(ctx context.Context, resource, version string, pageSize, offset, numRows int) ([]*pagination.Page, error) {
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithOffset(offset).
		WithNumRows(numRows).
		Build())
}

// GetPagesWithCriteria fetches every row matching a JSON criteria filter.
func (c *Client) GetPagesWithCriteria(ctx context.Context, resource, version, criteria string, pageSize int) ([]*pagination.Page, error) {
	if strings.TrimSpace(criteria) == "" {
		return nil, fmt.Errorf("%w: criteria for %s is empty", ErrInvalidFilter, resource)
	}
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithCriteria(criteria).
		Build())
}

// GetPagesWithNamedQuery fetches every row matching a named query.
func (c *Client) GetPagesWithNamedQuery(ctx context.Context, resource, version, name, query string, pageSize int) ([]*pagination.Page, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: named query for %s needs a name and a value", ErrInvalidFilter, resource)
	}
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithNamedQuery(name, query).
		Build())
}

// GetPagesWithFilterMap fetches every row matching an encoded filter map such as "lastName=Smith".
func (c *Client) GetPagesWithFilterMap(ctx context.Context, resource, version, filterMap string, pageSize int) ([]*pagination.Page, error) {
	if strings.TrimSpace(filterMap) == "" {
		return nil, fmt.Errorf("%w: filter map for %s is empty", ErrInvalidFilter, resource)
	}
	return c.Pages(ctx, pagination.NewRequest(resource).
		WithVersion(version).
		WithPageSize(pageSize).
		WithFilterMap(filterMap).
		Build())
}

// Rows fetches req and flattens every page into one row list in page order.
func (c *Client) Rows(ctx context.Context, req pagination.Request) ([]json.RawMessage, error) {
	pages, err := c.Pages(ctx, req)
	if err != nil {
		return nil, err
	}
	return FlattenPages(pages)
}

// FlattenPages concatenates the rows of pages in order.
func FlattenPages(pages []*pagination.Page) ([]json.RawMessage, error) {
	bodies := make([][]byte, 0, len(pages))
	for _, p := range pages {
		bodies = append(bodies, p.Body)
	}
	rows, err := content.Rows(bodies...)
	if err != nil {
		return nil, fmt.Errorf("flatten pages: %w", err)
	}
	return rows, nil
}

// DecodeRows fetches req and decodes each row into T.
func DecodeRows[T any](ctx context.Context, c *Client, req pagination.Request) ([]T, error) {
	rows, err := c.Rows(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", req.Resource, i, err)
		}
		out = append(out, v)
	}

	c.logger.Debug().
		Str("resource", req.Resource).
		Int("rows", len(out)).
		Msg("Decoded rows")

	return out, nil
}
