// Package pipeline runs the per-region discovery pass: extract raw
// candidates, filter for relevance, hash, and insert-or-touch in the
// store, collecting the subset that is newly inserted.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobwatch/monitor-service/internal/extract"
	"jobwatch/monitor-service/internal/filter"
	"jobwatch/monitor-service/internal/jobhash"
	"jobwatch/monitor-service/internal/model"
)

// Extractor is the external capability that turns a region's search
// page into raw candidates. It may legitimately return zero candidates
// when the upstream format shifts.
type Extractor interface {
	SearchURL(region model.Region) (string, error)
	Fetch(ctx context.Context, searchURL string) ([]model.RawCandidate, error)
}

// Store is the subset of the record store the pipeline mutates.
type Store interface {
	InsertOrTouch(ctx context.Context, job model.Job) (bool, error)
	LogSearch(ctx context.Context, attempt model.SearchAttempt) error
}

// Pipeline orchestrates discovery for one region at a time.
type Pipeline struct {
	store     Store
	extractor Extractor
}

// New constructs a Pipeline.
func New(store Store, extractor Extractor) *Pipeline {
	return &Pipeline{store: store, extractor: extractor}
}

// Run discovers new jobs for one region. A non-nil error means the
// region failed; an empty slice with nil error is a successful run that
// found nothing new. Errors never propagate as panics, and a failed
// extraction is recorded as an unsuccessful search attempt. An unknown
// region fails before any store mutation.
func (p *Pipeline) Run(ctx context.Context, region model.Region) ([]model.Job, error) {
	searchURL, err := p.extractor.SearchURL(region)
	if err != nil {
		return nil, err
	}

	// The logged attempt and the request share one resolved URL.
	candidates, err := p.extractor.Fetch(ctx, searchURL)
	if err != nil {
		errText := err.Error()
		if logErr := p.store.LogSearch(ctx, model.SearchAttempt{
			Region:    region,
			SearchURL: searchURL,
			Success:   false,
			ErrorText: &errText,
		}); logErr != nil {
			slog.Error("failed to log search attempt", "region", region, "err", logErr)
		}
		return nil, fmt.Errorf("extract %s: %w", region, err)
	}

	var newJobs []model.Job
	for _, c := range candidates {
		job, ok := p.admit(region, c)
		if !ok {
			continue
		}

		inserted, err := p.store.InsertOrTouch(ctx, job)
		if err != nil {
			// A storage error aborts only this write.
			slog.Error("job insert failed", "region", region, "title", job.Title, "err", err)
			continue
		}
		if inserted {
			slog.Info("new job found", "region", region, "title", job.Title, "company", job.Company)
			newJobs = append(newJobs, job)
		} else {
			slog.Debug("job already known", "region", region, "title", job.Title)
		}
	}

	if err := p.store.LogSearch(ctx, model.SearchAttempt{
		Region:    region,
		SearchURL: searchURL,
		JobsFound: len(newJobs),
		Success:   true,
	}); err != nil {
		slog.Error("failed to log search attempt", "region", region, "err", err)
	}

	return newJobs, nil
}

// admit applies the filtering rules to one candidate and, if it passes,
// converts it to a Job ready for insertion.
func (p *Pipeline) admit(region model.Region, c model.RawCandidate) (model.Job, bool) {
	// Insufficient identity: the hash needs at least title and company.
	if c.Title == "" || c.Company == "" {
		return model.Job{}, false
	}

	summary := ""
	if c.Summary != nil {
		summary = *c.Summary
	}
	if !filter.IsRelevant(c.Title, summary) {
		slog.Debug("skipping irrelevant job", "title", c.Title, "company", c.Company)
		return model.Job{}, false
	}

	job := buildJob(region, c)

	// Region-specific rule: a remote-only search keeps remote postings
	// only, applied before persistence so rejected candidates never
	// reach the store.
	if region == model.RegionRemote && job.LocationClass != model.LocationRemote {
		slog.Debug("skipping non-remote job in remote search",
			"title", job.Title, "locationClass", job.LocationClass)
		return model.Job{}, false
	}

	return job, true
}

// buildJob converts a raw candidate into a Job, deriving the identity
// hash, location class, salary fields and career search link.
func buildJob(region model.Region, c model.RawCandidate) model.Job {
	now := time.Now().UTC()
	job := model.Job{
		Title:         c.Title,
		Company:       c.Company,
		Location:      c.Location,
		Hash:          jobhash.Sum(c.Title, c.Company, c.Location),
		Region:        region,
		LocationClass: extract.ClassifyLocation(c.Location),
		PayPeriod:     model.PayYearly,
		PostedTime:    c.PostedTime,
		SourceURL:     c.SourceURL,
		SourceID:      c.SourceID,
		FirstSeen:     now,
		LastSeen:      now,
	}

	salaryText := ""
	if c.SalaryText != nil {
		salaryText = *c.SalaryText
	} else if c.Summary != nil {
		salaryText = extract.SalaryFromDescription(*c.Summary)
	}
	if salaryText != "" {
		job.PayRangeText = &salaryText
		job.PayRangeMin, job.PayRangeMax = extract.ParseSalaryRange(salaryText)
		job.PayPeriod = extract.DetectPayPeriod(salaryText)
	}

	if c.PostedTime != nil {
		job.PostedHoursAgo = extract.ParsePostedHours(*c.PostedTime)
	}

	careerURL := extract.CareerSearchURL(c.Company, c.Title)
	job.CareerPageURL = &careerURL

	return job
}
