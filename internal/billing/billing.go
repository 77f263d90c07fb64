// Package billing marks reported events as billed on the remote service.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/gpc/timesheets/internal/model"
)

// Client is the slice of the API client the mutator needs.
type Client interface {
	UnbilledEvents(ctx context.Context, customerID, userID int64, from, to time.Time) ([]model.TimeEvent, error)
	MarkEventBilled(ctx context.Context, eventID int64) error
}

// Result holds counters for a mark-billed run.
type Result struct {
	Marked int
	Total  int
}

// MarkAllBilled re-fetches the unbilled events for the (customer, user) pair
// and marks each one billed, in sequence. The fetch is independent of the one
// that produced the report, so events added in between are picked up.
//
// There is no rollback: if an update fails, the events marked so far stay
// billed and the returned Result reports how far the run got.
func MarkAllBilled(ctx context.Context, c Client, customerID, userID int64, from, to time.Time) (Result, error) {
	events, err := c.UnbilledEvents(ctx, customerID, userID, from, to)
	if err != nil {
		return Result{}, err
	}

	res := Result{Total: len(events)}
	for _, event := range events {
		if err := c.MarkEventBilled(ctx, event.ID); err != nil {
			return res, fmt.Errorf("marking event %d billed: %w", event.ID, err)
		}
		res.Marked++
	}
	return res, nil
}
