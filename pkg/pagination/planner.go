package pagination

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Pager plans and executes paged fetches against a PageFetcher.
// A Pager holds no per-call state and may be shared between goroutines
// as long as its PageFetcher can.
type Pager struct {
	fetcher PageFetcher
	logger  zerolog.Logger
}

// NewPager creates a pager over the given fetcher.
func NewPager(fetcher PageFetcher, logger zerolog.Logger) *Pager {
	if fetcher == nil {
		panic("page fetcher cannot be nil")
	}
	return &Pager{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "pagination").Logger(),
	}
}

// Plan is a request after the probe fetch: everything the executor needs.
type Plan struct {
	// Request is the normalized request (version and offset defaults applied).
	Request  Request
	Strategy Strategy

	TotalCount  int
	PageSize    int
	MaxPageSize int

	// Probe is the unparameterised first page, reused when no loop is needed.
	Probe *Page
}

// rowBound is the count ShouldPage compares the page size against.
func (p *Plan) rowBound() int {
	if p.Request.NumRows >= 1 {
		return p.Request.NumRows
	}
	return p.TotalCount
}

// ShouldPage reports whether the probe alone cannot satisfy the request.
func (p *Plan) ShouldPage() bool {
	return p.PageSize < p.rowBound()
}

// Plan validates req, performs the probe fetch and derives page size and total count.
func (p *Pager) Plan(ctx context.Context, req Request) (*Plan, error) {
	if strings.TrimSpace(req.Resource) == "" {
		PagingFailures.WithLabelValues("plan").Inc()
		return nil, ErrMissingResource
	}

	req = req.normalized()
	strategy := ResolveStrategy(req.Offset, req.NumPages, req.NumRows)

	probe, err := p.fetcher.FetchPage(ctx, PageQuery{
		Resource: req.Resource,
		Version:  req.Version,
		Filter:   req.Filter,
	})
	if err == nil && probe == nil {
		err = errors.New("fetcher returned no page")
	}
	if err != nil {
		PagingFailures.WithLabelValues("probe").Inc()
		return nil, fmt.Errorf("probe fetch %s: %w", req.Resource, err)
	}

	maxPageSize := probe.MaxPageSize()
	pageSize := req.PageSize
	if pageSize <= 0 {
		rows, err := probe.Len()
		if err != nil {
			PagingFailures.WithLabelValues("plan").Inc()
			return nil, fmt.Errorf("count probe rows for %s: %w", req.Resource, err)
		}
		pageSize = rows
		if pageSize == 0 {
			pageSize = maxPageSize
		}
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := probe.TotalCount()
	if err != nil {
		PagingFailures.WithLabelValues("plan").Inc()
		return nil, fmt.Errorf("plan %s: %w", req.Resource, err)
	}

	plan := &Plan{
		Request:     req,
		Strategy:    strategy,
		TotalCount:  total,
		PageSize:    pageSize,
		MaxPageSize: maxPageSize,
		Probe:       probe,
	}

	PlansTotal.WithLabelValues(strategy.String(), strconv.FormatBool(plan.ShouldPage())).Inc()

	p.logger.Debug().
		Str("resource", req.Resource).
		Str("version", req.Version).
		Str("filter", req.Filter.Kind().String()).
		Str("strategy", strategy.String()).
		Int("total_count", total).
		Int("page_size", pageSize).
		Int("max_page_size", maxPageSize).
		Bool("should_page", plan.ShouldPage()).
		Msg("Paging plan ready")

	return plan, nil
}
