// Package search turns a sparse set of criteria into exactly one lookup.
//
// Criteria are not combined. When more than one kind of filter is given, or
// a date range is open on one side, the search falls back to listing active
// items rather than failing.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// Store is the persistence the engine reads from.
type Store interface {
	FindItemsByStatus(ctx context.Context, kind model.Kind, status string) ([]model.Item, error)
	FindItemsByLocation(ctx context.Context, kind model.Kind, substr string) ([]model.Item, error)
	FindItemsByKeyword(ctx context.Context, kind model.Kind, keyword string) ([]model.Item, error)
	FindItemsByDateRange(ctx context.Context, kind model.Kind, from, to time.Time) ([]model.Item, error)
}

// Criteria is a search request. Empty strings and nil times are absent.
type Criteria struct {
	Kind     model.Kind
	Keyword  string
	Location string
	From     *time.Time
	To       *time.Time
}

// Strategy is the single lookup a search runs.
type Strategy int

const (
	// ActiveOnly lists every active item.
	ActiveOnly Strategy = iota
	// ByLocation matches a location substring, ignoring case.
	ByLocation
	// ByKeyword matches a title or description substring, ignoring case.
	ByKeyword
	// ByDateRange matches the lost or found date within [From, To].
	ByDateRange
)

func (s Strategy) String() string {
	switch s {
	case ByLocation:
		return "location"
	case ByKeyword:
		return "keyword"
	case ByDateRange:
		return "date_range"
	}
	return "active"
}

// Resolve picks the strategy for c. It never fails.
func Resolve(c Criteria) Strategy {
	hasKeyword := c.Keyword != ""
	hasLocation := c.Location != ""
	hasFrom := c.From != nil
	hasTo := c.To != nil

	switch {
	case !hasKeyword && !hasLocation && !hasFrom && !hasTo:
		return ActiveOnly
	case hasLocation && !hasKeyword && !hasFrom && !hasTo:
		return ByLocation
	case hasKeyword && !hasLocation && !hasFrom && !hasTo:
		return ByKeyword
	case hasFrom && hasTo && !hasKeyword && !hasLocation:
		return ByDateRange
	}
	return ActiveOnly
}

// Engine runs searches against a store.
type Engine struct {
	store Store
}

// NewEngine returns a search engine.
func NewEngine(s Store) *Engine {
	return &Engine{store: s}
}

// Search resolves c and runs the chosen lookup for c.Kind.
func (e *Engine) Search(ctx context.Context, c Criteria) ([]model.Item, error) {
	if c.Kind != model.KindLost && c.Kind != model.KindFound {
		return nil, model.InvalidArgumentf("type must be 'lost' or 'found'")
	}

	strategy := Resolve(c)
	slog.Info("search", "kind", c.Kind, "strategy", strategy)

	var items []model.Item
	var err error
	switch strategy {
	case ByLocation:
		items, err = e.store.FindItemsByLocation(ctx, c.Kind, c.Location)
	case ByKeyword:
		items, err = e.store.FindItemsByKeyword(ctx, c.Kind, c.Keyword)
	case ByDateRange:
		items, err = e.store.FindItemsByDateRange(ctx, c.Kind, *c.From, *c.To)
	default:
		items, err = e.store.FindItemsByStatus(ctx, c.Kind, model.ItemStatusActive)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
