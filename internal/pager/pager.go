// Package pager implements the generic cursor pager shared by the home feed,
// search, author listing and reader listing. One machine, four strategies.
package pager

import (
	"context"
	"log/slog"
)

// Context is an immutable snapshot of pagination cursor state. Each call to
// a Strategy consumes one Context and produces the next one; Offset and Page
// are monotonically non-decreasing within a browse session.
type Context struct {
	Endpoint string `json:"endpoint"`
	Query    string `json:"query,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Page     int    `json:"page"`
}

// Advance returns the context for the next page. The offset always moves by
// the configured limit, regardless of how many items survived filtering.
func (c Context) Advance() Context {
	c.Offset += c.Limit
	c.Page++
	return c
}

// Page is one strategy result: the items surfaced, the termination signal and
// the context to request the following page with.
type Page[T any] struct {
	Items   []T
	HasMore bool
	Next    Context
}

// Strategy fetches one page for a given context. Implementations are expected
// to recover listing-level failures themselves (empty page, HasMore=false);
// a returned error is treated the same way by the Pager.
type Strategy[T any] func(ctx context.Context, pc Context) (Page[T], error)

// HasMore is the shared termination heuristic: a page is assumed to be the
// last one when it returned strictly fewer raw items than requested. An exact
// multiple of the page size therefore costs one extra empty page.
func HasMore(returned, limit int) bool {
	return returned == limit
}

// Pager drives a Strategy page by page. Pages must be requested strictly in
// sequence; each page's context depends on the prior result.
type Pager[T any] struct {
	strategy Strategy[T]
	next     Context
	hasMore  bool
	started  bool
}

// New creates a pager positioned before the first page.
func New[T any](initial Context, strategy Strategy[T]) *Pager[T] {
	return &Pager[T]{strategy: strategy, next: initial, hasMore: true}
}

// HasMore reports whether another page is believed to be available. Before
// the first NextPage call it is always true.
func (p *Pager[T]) HasMore() bool {
	return !p.started || p.hasMore
}

// Cursor returns the context the next NextPage call will consume, for
// serializing a browse position across requests.
func (p *Pager[T]) Cursor() Context {
	return p.next
}

// NextPage fetches the next page. Browse operations never fail: a strategy
// error degrades to an empty page with HasMore=false.
func (p *Pager[T]) NextPage(ctx context.Context) []T {
	p.started = true
	page, err := p.strategy(ctx, p.next)
	if err != nil {
		slog.Warn("pager strategy failed, ending listing",
			"endpoint", p.next.Endpoint, "page", p.next.Page, "error", err)
		p.hasMore = false
		return nil
	}
	p.hasMore = page.HasMore
	p.next = page.Next
	return page.Items
}
