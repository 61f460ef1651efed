package pkg

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PageRequest holds the paging and ordering parameters of a list query.
// A zero Page means the first page; a zero PageSize means "no paging": the
// whole result set is returned as a single page.
type PageRequest struct {
	Page           int
	PageSize       int
	OrderColumn    string
	OrderAscending bool
}

// PagedResult is the paging envelope returned by list queries.
// PageSizeResult always equals len(Items).
type PagedResult[T any] struct {
	Page              int    `json:"page"`
	PagesAvailable    int    `json:"pages_available"`
	PageSizeRequested int    `json:"page_size_requested"`
	PageSizeResult    int    `json:"page_size_result"`
	ItemsAvailable    int    `json:"items_available"`
	OrderColumn       string `json:"order_column,omitempty"`
	OrderAscending    bool   `json:"order_ascending,omitempty"`
	Items             []T    `json:"items"`
}

// NewPagedResult assembles an envelope around the given items. Items may be
// nil; the envelope always carries a non-nil slice so it serializes as [].
func NewPagedResult[T any](page, pagesAvailable, pageSizeRequested, itemsAvailable int, items []T) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PagedResult[T]{
		Page:              page,
		PagesAvailable:    pagesAvailable,
		PageSizeRequested: pageSizeRequested,
		PageSizeResult:    len(items),
		ItemsAvailable:    itemsAvailable,
		Items:             items,
	}
}

// remap copies all paging metadata from p around a new item slice.
func remap[T, R any](p *PagedResult[T], items []R) *PagedResult[R] {
	out := NewPagedResult(p.Page, p.PagesAvailable, p.PageSizeRequested, p.ItemsAvailable, items)
	out.OrderColumn = p.OrderColumn
	out.OrderAscending = p.OrderAscending
	return out
}

// MapPage re-wraps every item under fn, preserving all paging metadata and
// item order. Used to turn a page of persisted entities into a page of
// response DTOs without re-querying.
func MapPage[T, R any](p *PagedResult[T], fn func(T) R) *PagedResult[R] {
	items := make([]R, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return remap(p, items)
}

// MapPageAsync is MapPage with a fallible, context-aware selector. Items are
// transformed sequentially in their original order; the first failure aborts.
func MapPageAsync[T, R any](ctx context.Context, p *PagedResult[T], fn func(context.Context, T) (R, error)) (*PagedResult[R], error) {
	items := make([]R, len(p.Items))
	for i, item := range p.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := fn(ctx, item)
		if err != nil {
			return nil, err
		}
		items[i] = r
	}
	return remap(p, items), nil
}

// MapPageParallel transforms all items concurrently. The result holds the
// same set of items; their order relative to the source page is not
// guaranteed. Use MapPage when ordering matters.
func MapPageParallel[T, R any](p *PagedResult[T], fn func(T) R) *PagedResult[R] {
	items := make([]R, len(p.Items))
	g := new(errgroup.Group)
	for i, item := range p.Items {
		g.Go(func() error {
			items[i] = fn(item)
			return nil
		})
	}
	g.Wait() // selectors cannot fail
	return remap(p, items)
}

// MapPageParallelAsync transforms all items concurrently with a fallible,
// context-aware selector. The first failure cancels the remaining work. The
// same relaxed ordering contract as MapPageParallel applies.
func MapPageParallelAsync[T, R any](ctx context.Context, p *PagedResult[T], fn func(context.Context, T) (R, error)) (*PagedResult[R], error) {
	items := make([]R, len(p.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range p.Items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			items[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return remap(p, items), nil
}
