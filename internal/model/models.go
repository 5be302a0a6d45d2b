// Package model defines shared data structures for the monitor service.
package model

import "time"

// Region is a named search scope with its own notification channel.
// Values mirror the REGIONS environment variable (e.g. "NYC,LA,SF,SD,REMOTE").
type Region string

const (
	RegionNYC    Region = "NYC"
	RegionLA     Region = "LA"
	RegionSF     Region = "SF"
	RegionSD     Region = "SD"
	RegionRemote Region = "REMOTE"
)

// LocationClass classifies a posting's work arrangement, derived from the
// free-form location text.
type LocationClass string

const (
	LocationRemote  LocationClass = "Remote"
	LocationHybrid  LocationClass = "Hybrid"
	LocationOnSite  LocationClass = "On-site"
	LocationUnknown LocationClass = ""
)

// PayPeriod is the unit a salary range is quoted in.
type PayPeriod string

const (
	PayYearly  PayPeriod = "yearly"
	PayHourly  PayPeriod = "hourly"
	PayMonthly PayPeriod = "monthly"
)

// Job is a discovered posting as stored in the jobs table.
// Identity is the Hash column: lower-trimmed title|company|location digest,
// unique, never updated after insert.
type Job struct {
	ID       int64
	Title    string
	Company  string
	Location string
	Hash     string

	Region        Region
	LocationClass LocationClass

	// Optional fields use pointers so "absent" is distinguishable from
	// an empty or zero value.
	PayRangeMin    *int
	PayRangeMax    *int
	PayRangeText   *string
	PayPeriod      PayPeriod
	PostedTime     *string // source-original text, e.g. "2 hours ago"
	PostedHoursAgo *int
	SourceURL      *string
	SourceID       *string
	CareerPageURL  *string

	FirstSeen time.Time
	LastSeen  time.Time
	Notified  bool
}

// RawCandidate is an unfiltered record returned by an extractor before
// relevance filtering. Only Title, Company and Location are guaranteed to
// be attempted; every other field may be absent.
type RawCandidate struct {
	Title      string
	Company    string
	Location   string
	SalaryText *string
	Summary    *string
	PostedTime *string
	SourceURL  *string
	SourceID   *string
}

// SearchAttempt records one extraction attempt for one region.
// Rows are append-only and pruned with jobs on the same horizon.
type SearchAttempt struct {
	ID        int64
	Region    Region
	SearchURL string
	JobsFound int
	Success   bool
	ErrorText *string
	Timestamp time.Time
}

// RegionResult is the per-region outcome inside a CycleResult.
type RegionResult struct {
	Region  Region
	Success bool
	NewJobs []Job
}

// CycleResult aggregates one complete discovery + routing pass. It is
// ephemeral: nothing here is persisted beyond the store rows the cycle
// itself created.
type CycleResult struct {
	Regions    []RegionResult
	TotalNew   int
	TotalSent  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// StoreStats is the aggregate snapshot used by the status verb, the
// /status endpoint and the daily summary message.
type StoreStats struct {
	TotalJobs            int
	JobsToday            int
	UnnotifiedJobs       int
	TotalSearches        int
	SuccessSearchesToday int
	RemoteJobs           int
	HybridJobs           int
	OnSiteJobs           int
	JobsWithSalary       int
}
