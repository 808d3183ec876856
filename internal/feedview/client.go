// Package feedview maintains a client-side view of one feed page and keeps
// it consistent as live events arrive. It is the reconciliation core behind
// the feedwatch command and is transport-agnostic: callers hand it decoded
// events or raw websocket frames.
package feedview

import (
	"context"
	"fmt"
	"sync"

	"livefeed/internal/notifications"
)

// pageSize mirrors the server's fixed feed page size.
const pageSize = 2

// State describes what the view currently holds.
type State int

const (
	// StateIdle means no page has been requested yet.
	StateIdle State = iota
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateReady means items reflect the last successful fetch plus any
	// events applied since.
	StateReady
)

// PageFetcher loads one page of the feed from the server.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (items []notifications.PostSnapshot, totalItems int, err error)
}

// Client holds one page of the feed and reconciles it against live events.
// All methods are safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	fetcher PageFetcher

	state      State
	page       int
	items      []notifications.PostSnapshot
	totalItems int
}

// NewClient creates an idle view over the given fetcher.
func NewClient(fetcher PageFetcher) *Client {
	return &Client{fetcher: fetcher, state: StateIdle, page: 1}
}

// Load fetches the given page and replaces the view's contents. A failed
// fetch leaves the previously shown items untouched.
func (c *Client) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx, page)
}

func (c *Client) loadLocked(ctx context.Context, page int) error {
	prevState := c.state
	c.state = StateLoading

	items, total, err := c.fetcher.FetchPage(ctx, page)
	if err != nil {
		c.state = prevState
		return fmt.Errorf("fetching feed page %d: %w", page, err)
	}

	c.page = page
	c.items = items
	c.totalItems = total
	c.state = StateReady
	return nil
}

// Apply reconciles one feed event into the view. Events arriving before the
// first load are counted but never touch the item list.
func (c *Client) Apply(ctx context.Context, ev notifications.FeedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Action {
	case notifications.ActionCreate:
		c.totalItems++
		if c.state != StateReady || ev.Post == nil {
			return nil
		}
		// Only the first page shows new arrivals, later pages just see
		// the total move.
		if c.page == 1 {
			if len(c.items) >= pageSize {
				c.items = c.items[:pageSize-1]
			}
			c.items = append([]notifications.PostSnapshot{*ev.Post}, c.items...)
		}
		return nil

	case notifications.ActionUpdate:
		if c.state != StateReady || ev.Post == nil {
			return nil
		}
		for i := range c.items {
			if c.items[i].ID == ev.Post.ID {
				c.items[i] = *ev.Post
				break
			}
		}
		return nil

	case notifications.ActionDelete:
		if c.state != StateReady {
			return nil
		}
		// The deleted post may live on another page, so the visible slice
		// can only be repaired by refetching the current page.
		return c.loadLocked(ctx, c.page)

	default:
		return fmt.Errorf("unknown feed action %q", ev.Action)
	}
}

// HandleMessage decodes a raw websocket frame and applies it. Non-feed
// frames are ignored.
func (c *Client) HandleMessage(ctx context.Context, raw []byte) error {
	ev, ok, err := notifications.DecodeFeedEvent(raw)
	if err != nil {
		return fmt.Errorf("decoding feed frame: %w", err)
	}
	if !ok {
		return nil
	}
	return c.Apply(ctx, ev)
}

// Items returns a copy of the currently shown posts.
func (c *Client) Items() []notifications.PostSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notifications.PostSnapshot, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems returns the feed-wide post count as of the last fetch plus
// applied events.
func (c *Client) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalItems
}

// Page returns the page the view currently shows.
func (c *Client) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// State returns the view's lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
