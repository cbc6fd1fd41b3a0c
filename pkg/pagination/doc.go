// Package pagination plans and executes offset/limit paging against a
// resource API that reports its size in response headers.
//
// The API returns X-Total-Count and X-Max-Page-Size headers and accepts
// offset and limit query parameters. A fetch runs in two steps:
//
//	pager := pagination.NewPager(ethosClient, logger)
//	plan, err := pager.Plan(ctx, pagination.NewRequest("persons").WithNumRows(120))
//	pages, err := pager.Execute(ctx, plan)
//
// Plan makes exactly one probe fetch without paging parameters, derives the
// page size (from the probe body length unless one was requested, clamped to
// the max page size) and reads the total count. Execute either serves the
// probe, trimmed for the requested offset and row bound, or walks the
// resource sequentially one page at a time.
//
// Strategies are chosen from which bounds are set:
//
//	offset  numPages  numRows   strategy
//	  -        -         -      ALL_PAGES
//	  -        x         ?      TO_NUM_PAGES
//	  x        -         -      FROM_OFFSET
//	  x        x         ?      FROM_OFFSET_TO_NUM_PAGES
//	  -        -         x      TO_NUM_ROWS
//	  x        -         x      FROM_OFFSET_TO_NUM_ROWS
//
// Bounds below 1 are treated as unset. Fetch failures are never retried and
// never yield a partial page list.
package pagination
