package proxy

import (
	"context"
	"encoding/json"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
	"golang.org/x/sync/errgroup"
)

// Future is the pending result of one asynchronous fetch.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func goFuture[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done. Abandoning a
// Future does not stop the fetch; cancel the context passed to the call for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Async runs each call of a Client in its own goroutine. Calls share no
// mutable state; each one is a complete sequential fetch.
type Async struct {
	client *Client
}

// NewAsync wraps c.
func NewAsync(c *Client) *Async {
	return &Async{client: c}
}

// Pages starts Client.Pages.
func (a *Async) Pages(ctx context.Context, req pagination.Request) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.Pages(ctx, req)
	})
}

// GetAllPages starts Client.GetAllPages.
func (a *Async) GetAllPages(ctx context.Context, resource, version string, pageSize int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetAllPages(ctx, resource, version, pageSize)
	})
}

// GetPagesFromOffset starts Client.GetPagesFromOffset.
func (a *Async) GetPagesFromOffset(ctx context.Context, resource, version string, pageSize, offset int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesFromOffset(ctx, resource, version, pageSize, offset)
	})
}

// GetPagesToNumPages starts Client.GetPagesToNumPages.
func (a *Async) GetPagesToNumPages(ctx context.Context, resource, version string, pageSize, numPages int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesToNumPages(ctx, resource, version, pageSize, numPages)
	})
}

// GetPagesFromOffsetToNumPages starts Client.GetPagesFromOffsetToNumPages.
func (a *Async) GetPagesFromOffsetToNumPages(ctx context.Context, resource, version string, pageSize, offset, numPages int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesFromOffsetToNumPages(ctx, resource, version, pageSize, offset, numPages)
	})
}

// GetPagesToNumRows starts Client.GetPagesToNumRows.
func (a *Async) GetPagesToNumRows(ctx context.Context, resource, version string, pageSize, numRows int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesToNumRows(ctx, resource, version, pageSize, numRows)
	})
}

// GetPagesFromOffsetToNumRows starts Client.GetPagesFromOffsetToNumRows.
func (a *Async) GetPagesFromOffsetToNumRows(ctx context.Context, resource, version string, pageSize, offset, numRows int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesFromOffsetToNumRows(ctx, resource, version, pageSize, offset, numRows)
	})
}

// GetPagesWithCriteria starts Client.GetPagesWithCriteria.
func (a *Async) GetPagesWithCriteria(ctx context.Context, resource, version, criteria string, pageSize int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesWithCriteria(ctx, resource, version, criteria, pageSize)
	})
}

// GetPagesWithNamedQuery starts Client.GetPagesWithNamedQuery.
func (a *Async) GetPagesWithNamedQuery(ctx context.Context, resource, version, name, query string, pageSize int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesWithNamedQuery(ctx, resource, version, name, query, pageSize)
	})
}

// GetPagesWithFilterMap starts Client.GetPagesWithFilterMap.
func (a *Async) GetPagesWithFilterMap(ctx context.Context, resource, version, filterMap string, pageSize int) *Future[[]*pagination.Page] {
	return goFuture(func() ([]*pagination.Page, error) {
		return a.client.GetPagesWithFilterMap(ctx, resource, version, filterMap, pageSize)
	})
}

// Rows starts Client.Rows.
func (a *Async) Rows(ctx context.Context, req pagination.Request) *Future[[]json.RawMessage] {
	return goFuture(func() ([]json.RawMessage, error) {
		return a.client.Rows(ctx, req)
	})
}

// RowsAll fetches several independent requests concurrently and returns their
// rows in request order. The first failure cancels the others.
func (a *Async) RowsAll(ctx context.Context, reqs ...pagination.Request) ([][]json.RawMessage, error) {
	results := make([][]json.RawMessage, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			rows, err := a.client.Rows(gctx, req)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
