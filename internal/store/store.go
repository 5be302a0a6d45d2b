// Package store owns the persisted job and search-attempt state.
//
// Every mutation (insert, mark-notified, prune) goes through this
// package; no other component caches notification state. Operations
// are single-row atomic — the service runs one cycle at a time, so the
// store needs no stronger isolation.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobwatch/monitor-service/internal/model"
)

// Store is the PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const jobColumns = `id, title, company, location, hash, region, location_class,
	pay_range_min, pay_range_max, pay_range_text, pay_period,
	posted_time, posted_hours_ago, source_url, source_id, career_page_url,
	first_seen, last_seen, notified`

func scanJob(row pgx.Row) (model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Hash, &j.Region, &j.LocationClass,
		&j.PayRangeMin, &j.PayRangeMax, &j.PayRangeText, &j.PayPeriod,
		&j.PostedTime, &j.PostedHoursAgo, &j.SourceURL, &j.SourceID, &j.CareerPageURL,
		&j.FirstSeen, &j.LastSeen, &j.Notified,
	)
	return j, err
}

// InsertOrTouch inserts a job if its hash is unseen and returns true.
// For a repeat sighting it refreshes last_seen only and returns false:
// the stored row is authoritative and is never field-merged with the
// fresh candidate.
func (s *Store) InsertOrTouch(ctx context.Context, job model.Job) (bool, error) {
	now := time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (
		   title, company, location, hash, region, location_class,
		   pay_range_min, pay_range_max, pay_range_text, pay_period,
		   posted_time, posted_hours_ago, source_url, source_id, career_page_url,
		   first_seen, last_seen, notified
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16, FALSE)
		 ON CONFLICT (hash) DO NOTHING`,
		job.Title, job.Company, job.Location, job.Hash, job.Region, job.LocationClass,
		job.PayRangeMin, job.PayRangeMax, job.PayRangeText, job.PayPeriod,
		job.PostedTime, job.PostedHoursAgo, job.SourceURL, job.SourceID, job.CareerPageURL,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE jobs SET last_seen = $1 WHERE hash = $2`, now, job.Hash,
	); err != nil {
		return false, fmt.Errorf("touch job: %w", err)
	}
	return false, nil
}

// GetByHash returns the job with the given identity hash, or
// pgx.ErrNoRows wrapped if it does not exist.
func (s *Store) GetByHash(ctx context.Context, hash string) (model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE hash = $1`, hash)
	j, err := scanJob(row)
	if err != nil {
		return model.Job{}, fmt.Errorf("get job by hash: %w", err)
	}
	return j, nil
}

// MarkNotified flips the notified flag for a job. Returns false when no
// row matched the hash.
func (s *Store) MarkNotified(ctx context.Context, hash string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET notified = TRUE WHERE hash = $1`, hash)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UnnotifiedByRegion returns jobs in a region whose notified flag is
// still false, newest first. This is the retry lookup: records whose
// delivery failed in an earlier cycle surface here.
func (s *Store) UnnotifiedByRegion(ctx context.Context, region model.Region) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE notified = FALSE AND region = $1
		 ORDER BY first_seen DESC`, region)
	if err != nil {
		return nil, fmt.Errorf("unnotified query: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("unnotified scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UnnotifiedRegions returns the distinct regions that currently hold at
// least one unnotified job.
func (s *Store) UnnotifiedRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT region FROM jobs WHERE notified = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("unnotified regions query: %w", err)
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("unnotified regions scan: %w", err)
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// LogSearch appends one attempt row to search_history.
func (s *Store) LogSearch(ctx context.Context, attempt model.SearchAttempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_history (region, search_url, jobs_found, success, error_text)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.Region, attempt.SearchURL, attempt.JobsFound, attempt.Success, attempt.ErrorText,
	)
	if err != nil {
		return fmt.Errorf("log search: %w", err)
	}
	return nil
}

// Stats returns the aggregate snapshot for the status verb, the status
// endpoint and the daily summary.
func (s *Store) Stats(ctx context.Context) (model.StoreStats, error) {
	var st model.StoreStats
	today := time.Now().UTC().Truncate(24 * time.Hour)

	err := s.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*),
		   COUNT(*) FILTER (WHERE first_seen >= $1),
		   COUNT(*) FILTER (WHERE notified = FALSE),
		   COUNT(*) FILTER (WHERE location_class = 'Remote'),
		   COUNT(*) FILTER (WHERE location_class = 'Hybrid'),
		   COUNT(*) FILTER (WHERE location_class = 'On-site'),
		   COUNT(*) FILTER (WHERE pay_range_text IS NOT NULL OR pay_range_min IS NOT NULL)
		 FROM jobs`, today,
	).Scan(
		&st.TotalJobs, &st.JobsToday, &st.UnnotifiedJobs,
		&st.RemoteJobs, &st.HybridJobs, &st.OnSiteJobs, &st.JobsWithSalary,
	)
	if err != nil {
		return model.StoreStats{}, fmt.Errorf("job stats: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE timestamp >= $1 AND success = TRUE)
		 FROM search_history`, today,
	).Scan(&st.TotalSearches, &st.SuccessSearchesToday)
	if err != nil {
		return model.StoreStats{}, fmt.Errorf("search stats: %w", err)
	}

	return st, nil
}

// Prune deletes jobs whose first_seen is older than the horizon and
// search_history rows older than the same horizon. Age is measured from
// first sighting, independent of notified state. Returns the number of
// jobs removed.
func (s *Store) Prune(ctx context.Context, horizon time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-horizon)

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM jobs WHERE first_seen < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	deleted := tag.RowsAffected()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM search_history WHERE timestamp < $1`, cutoff); err != nil {
		return deleted, fmt.Errorf("prune search_history: %w", err)
	}

	return deleted, nil
}
