// Package route delivers newly discovered jobs to the correct region
// channel in bounded batches and flips stored state to notified only
// after confirmed delivery.
package route

import (
	"context"
	"log/slog"
	"time"

	"jobwatch/monitor-service/internal/model"
	"jobwatch/monitor-service/internal/notify"
)

// Store is the subset of the record store the router mutates.
type Store interface {
	MarkNotified(ctx context.Context, hash string) (bool, error)
}

// Notifier delivers one batch to a region's channel. Failures are
// returned as errors, never raised.
type Notifier interface {
	SendBatch(ctx context.Context, region model.Region, jobs []model.Job, batch, totalBatches int) error
}

// Router batches and routes records for one region at a time.
type Router struct {
	store      Store
	notifier   Notifier
	batchSize  int
	batchDelay time.Duration
}

// New constructs a Router with the channel's payload limit and the
// inter-batch delay that respects its rate limit.
func New(store Store, notifier Notifier) *Router {
	return &Router{
		store:      store,
		notifier:   notifier,
		batchSize:  notify.MaxEmbedsPerMessage,
		batchDelay: 2 * time.Second,
	}
}

// Route sends a region's records in batches. It returns the count of
// records in batches whose delivery was confirmed, and whether every
// batch succeeded. A failed batch leaves its records unnotified for a
// later retry and does not abort the remaining batches.
//
// The notified flag is the single source of truth: records already
// marked notified are never sent again.
func (r *Router) Route(ctx context.Context, region model.Region, jobs []model.Job) (sent int, ok bool) {
	pending := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Notified {
			slog.Warn("refusing to re-route already notified job", "region", region, "hash", j.Hash)
			continue
		}
		pending = append(pending, j)
	}
	if len(pending) == 0 {
		return 0, true
	}

	batches := partition(pending, r.batchSize)
	ok = true

	for i, batch := range batches {
		if i > 0 && r.batchDelay > 0 {
			time.Sleep(r.batchDelay)
		}

		if err := r.notifier.SendBatch(ctx, region, batch, i+1, len(batches)); err != nil {
			slog.Warn("batch delivery failed, records stay unnotified",
				"region", region, "batch", i+1, "size", len(batch), "err", err)
			ok = false
			continue
		}

		for _, j := range batch {
			if _, err := r.store.MarkNotified(ctx, j.Hash); err != nil {
				slog.Error("mark notified failed", "hash", j.Hash, "err", err)
			}
		}
		sent += len(batch)
	}

	return sent, ok
}

func partition(jobs []model.Job, size int) [][]model.Job {
	var batches [][]model.Job
	for size < len(jobs) {
		jobs, batches = jobs[size:], append(batches, jobs[:size])
	}
	return append(batches, jobs)
}
