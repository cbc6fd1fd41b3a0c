package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/content"
)

// Execute produces the ordered page list for a plan. When the probe already
// covers the request it is returned, trimmed as the strategy requires, and no
// further fetch is made. Otherwise one fetch is made per page in cursor order.
// Any fetch error aborts the loop and no pages are returned.
func (p *Pager) Execute(ctx context.Context, plan *Plan) ([]*Page, error) {
	if plan == nil || plan.Probe == nil {
		return nil, errors.New("execute: plan has no probe page")
	}
	if plan.PageSize <= 0 {
		return nil, fmt.Errorf("execute: invalid page size %d", plan.PageSize)
	}

	if !plan.ShouldPage() {
		page, err := serveProbe(plan)
		if err != nil {
			PagingFailures.WithLabelValues("plan").Inc()
			return nil, fmt.Errorf("trim probe for %s: %w", plan.Request.Resource, err)
		}
		return []*Page{page}, nil
	}

	w, ok := walks[plan.Strategy]
	if !ok {
		return nil, fmt.Errorf("execute: unknown strategy %d", plan.Strategy)
	}
	return p.walk(ctx, plan, w(plan))
}

// Fetch plans and executes req.
func (p *Pager) Fetch(ctx context.Context, req Request) ([]*Page, error) {
	plan, err := p.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, plan)
}

// serveProbe trims the probe body for the no-loop branch.
func serveProbe(plan *Plan) (*Page, error) {
	req := plan.Request
	probe := plan.Probe

	var (
		body []byte
		err  error
	)
	switch plan.Strategy {
	case AllPages, ToNumPages:
		return probe, nil
	case ToNumRows:
		body, err = content.TrimToFirstN(probe.Body, req.NumRows)
	case FromOffset, FromOffsetToNumPages:
		body, err = content.TrimFromOffset(probe.Body, req.Offset)
	case FromOffsetToNumRows:
		body, err = content.TrimFromOffsetForN(probe.Body, req.Offset, req.NumRows)
	default:
		return nil, fmt.Errorf("unknown strategy %d", plan.Strategy)
	}
	if err != nil {
		return nil, err
	}
	return probe.withBody(body), nil
}

// span bounds one paging loop.
type span struct {
	// start is the first cursor.
	start int
	// rowEnd is the exclusive row bound; the loop also stops at TotalCount.
	rowEnd int
	// maxPages caps the number of fetches. Zero means no cap.
	maxPages int
	// shrink limits the final fetch to rowEnd - cursor rows.
	shrink bool
}

// walks maps each strategy to the span it loops over.
var walks = map[Strategy]func(*Plan) span{
	AllPages: func(p *Plan) span {
		return span{start: 0, rowEnd: p.TotalCount}
	},
	ToNumPages: func(p *Plan) span {
		return span{start: 0, rowEnd: p.TotalCount, maxPages: p.Request.NumPages}
	},
	FromOffset: func(p *Plan) span {
		return span{start: p.Request.Offset, rowEnd: p.TotalCount}
	},
	FromOffsetToNumPages: func(p *Plan) span {
		return span{start: p.Request.Offset, rowEnd: p.TotalCount, maxPages: p.Request.NumPages}
	},
	ToNumRows: func(p *Plan) span {
		return span{start: 0, rowEnd: clampRows(p), shrink: true}
	},
	FromOffsetToNumRows: func(p *Plan) span {
		return span{start: p.Request.Offset, rowEnd: p.Request.Offset + clampRows(p), shrink: true}
	},
}

func clampRows(p *Plan) int {
	if p.Request.NumRows > p.TotalCount {
		return p.TotalCount
	}
	return p.Request.NumRows
}

// walk advances a cursor by PageSize from s.start, fetching one page per step.
// The fetch size is recomputed every step, so only the final fetch of a
// shrinking span is smaller than PageSize.
func (p *Pager) walk(ctx context.Context, plan *Plan, s span) ([]*Page, error) {
	req := plan.Request
	start := time.Now()
	strategy := plan.Strategy.String()

	var pages []*Page
	for cursor := s.start; cursor < plan.TotalCount && cursor < s.rowEnd; cursor += plan.PageSize {
		if s.maxPages > 0 && len(pages) >= s.maxPages {
			break
		}

		size := plan.PageSize
		if s.shrink {
			if remaining := s.rowEnd - cursor; remaining < size {
				size = remaining
			}
		}

		page, err := p.fetcher.FetchPage(ctx, PageQuery{
			Resource: req.Resource,
			Version:  req.Version,
			Filter:   req.Filter,
			Offset:   cursor,
			Limit:    size,
		})
		if err == nil && page == nil {
			err = errors.New("fetcher returned no page")
		}
		if err != nil {
			PagingFailures.WithLabelValues("loop").Inc()
			p.logger.Debug().
				Err(err).
				Str("resource", req.Resource).
				Int("offset", cursor).
				Int("fetched", len(pages)).
				Msg("Page fetch failed, discarding fetched pages")
			return nil, fmt.Errorf("fetch %s at offset %d: %w", req.Resource, cursor, err)
		}

		PagesFetched.WithLabelValues(strategy).Inc()
		p.logger.Debug().
			Str("resource", req.Resource).
			Int("offset", cursor).
			Int("limit", size).
			Msg("Fetched page")

		pages = append(pages, page)
	}

	p.logger.Info().
		Str("resource", req.Resource).
		Str("strategy", strategy).
		Int("pages", len(pages)).
		Int("total_count", plan.TotalCount).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	if pages == nil {
		pages = []*Page{}
	}
	return pages, nil
}
