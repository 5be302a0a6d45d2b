// Package monitor coordinates complete discovery + routing cycles
// across all configured regions. One Monitor is constructed per process
// and passed explicitly to every caller; there is no global state.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"jobwatch/monitor-service/internal/config"
	"jobwatch/monitor-service/internal/model"
	"jobwatch/monitor-service/internal/notify"
)

// regionDelay is the courtesy pause between region searches so the
// upstream source never sees burst traffic.
const regionDelay = 2 * time.Second

// triggerCooldown rate-limits manual triggers against the most recent
// cycle start.
const triggerCooldown = time.Minute

// ErrCycleInFlight is returned when a trigger fires while a previous
// cycle has not finished; the new trigger is skipped, never run
// concurrently.
var ErrCycleInFlight = fmt.Errorf("a cycle is already in flight")

// ErrTriggerTooSoon is returned when a manual trigger arrives inside
// the cooldown window.
var ErrTriggerTooSoon = fmt.Errorf("last cycle started too recently")

// DiscoveryPipeline runs discovery for one region.
type DiscoveryPipeline interface {
	Run(ctx context.Context, region model.Region) ([]model.Job, error)
}

// NotificationRouter delivers a region's records and reports how many
// were confirmed sent.
type NotificationRouter interface {
	Route(ctx context.Context, region model.Region, jobs []model.Job) (sent int, ok bool)
}

// Store is the subset of the record store the coordinator reads for
// summaries, retries and pruning.
type Store interface {
	Stats(ctx context.Context) (model.StoreStats, error)
	Prune(ctx context.Context, horizon time.Duration) (int64, error)
	UnnotifiedRegions(ctx context.Context) ([]model.Region, error)
	UnnotifiedByRegion(ctx context.Context, region model.Region) ([]model.Job, error)
}

// StatusNotifier posts operational notices and the daily summary to the
// default channel.
type StatusNotifier interface {
	SendStatus(ctx context.Context, title, message string, severity notify.Severity) error
	SendDailySummary(ctx context.Context, stats model.StoreStats) error
}

// Locker guards against two cycles running at once across process
// restarts or duplicate deployments.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// EventPublisher announces completed cycles to interested consumers.
// Publishing is best-effort; failures are logged and swallowed.
type EventPublisher interface {
	PublishCycle(ctx context.Context, result model.CycleResult) error
}

// Monitor is the per-process coordination session.
type Monitor struct {
	cfg      *config.Config
	store    Store
	pipeline DiscoveryPipeline
	router   NotificationRouter
	notifier StatusNotifier
	lock     Locker
	events   EventPublisher

	delay time.Duration

	mu        sync.Mutex
	running   bool
	lastStart time.Time
}

// New constructs a Monitor.
func New(
	cfg *config.Config,
	st Store,
	p DiscoveryPipeline,
	r NotificationRouter,
	n StatusNotifier,
	lock Locker,
	events EventPublisher,
) *Monitor {
	return &Monitor{
		cfg:      cfg,
		store:    st,
		pipeline: p,
		router:   r,
		notifier: n,
		lock:     lock,
		events:   events,
		delay:    regionDelay,
	}
}

// RunCycle executes one complete discovery + routing pass. Regions are
// processed strictly in configured order; a region's failure is
// isolated and never aborts the others. Returns the cycle result whose
// TotalSent counts only records in confirmed-delivered batches.
func (m *Monitor) RunCycle(ctx context.Context) (model.CycleResult, error) {
	if err := m.begin(); err != nil {
		return model.CycleResult{}, err
	}
	defer m.end()

	acquired, err := m.lock.Acquire(ctx)
	if err != nil {
		slog.Warn("cycle lock unavailable, proceeding with in-process guard only", "err", err)
	} else if !acquired {
		return model.CycleResult{}, ErrCycleInFlight
	} else {
		defer m.lock.Release(ctx)
	}

	result := model.CycleResult{StartedAt: time.Now().UTC()}

	for i, region := range m.cfg.Regions {
		if i > 0 && m.delay > 0 {
			time.Sleep(m.delay)
		}
		result.Regions = append(result.Regions, m.discoverRegion(ctx, region))
	}

	for _, rr := range result.Regions {
		result.TotalNew += len(rr.NewJobs)
	}

	for _, rr := range result.Regions {
		if len(rr.NewJobs) == 0 {
			continue
		}
		sent := m.routeRegion(ctx, rr.Region, rr.NewJobs)
		result.TotalSent += sent
	}

	result.FinishedAt = time.Now().UTC()
	slog.Info("cycle complete",
		"new", result.TotalNew, "sent", result.TotalSent,
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if m.events != nil {
		if err := m.events.PublishCycle(ctx, result); err != nil {
			slog.Warn("cycle event publish failed", "err", err)
		}
	}

	return result, nil
}

// discoverRegion runs one region's pipeline behind a panic barrier so a
// fault in one region cannot abort the rest of the cycle.
func (m *Monitor) discoverRegion(ctx context.Context, region model.Region) (rr model.RegionResult) {
	rr = model.RegionResult{Region: region}

	defer func() {
		if r := recover(); r != nil {
			rr.Success = false
			rr.NewJobs = nil
			m.reportFault(ctx, region, fmt.Errorf("panic: %v", r))
		}
	}()

	jobs, err := m.pipeline.Run(ctx, region)
	if err != nil {
		slog.Error("region discovery failed", "region", region, "err", err)
		return rr
	}

	rr.Success = true
	rr.NewJobs = jobs
	return rr
}

// routeRegion delivers one region's new records behind the same panic
// barrier as discovery.
func (m *Monitor) routeRegion(ctx context.Context, region model.Region, jobs []model.Job) (sent int) {
	defer func() {
		if r := recover(); r != nil {
			m.reportFault(ctx, region, fmt.Errorf("panic: %v", r))
		}
	}()

	sent, ok := m.router.Route(ctx, region, jobs)
	if !ok {
		slog.Warn("some batches failed to deliver", "region", region, "sent", sent, "of", len(jobs))
	}
	return sent
}

// reportFault logs an unclassified fault and forwards it to the
// operational channel. The notice itself is best-effort.
func (m *Monitor) reportFault(ctx context.Context, region model.Region, err error) {
	slog.Error("unexpected fault in region processing", "region", region, "err", err)
	if notifyErr := m.notifier.SendStatus(ctx,
		fmt.Sprintf("Search Error - %s", region),
		fmt.Sprintf("An error occurred during job search:\n```%v```", err),
		notify.SeverityError,
	); notifyErr != nil {
		slog.Error("failed to send error notice", "err", notifyErr)
	}
}

func (m *Monitor) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrCycleInFlight
	}
	m.running = true
	m.lastStart = time.Now().UTC()
	return nil
}

func (m *Monitor) end() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// Trigger runs an on-demand cycle, rejecting triggers that overlap a
// running cycle or arrive inside the cooldown window.
func (m *Monitor) Trigger(ctx context.Context) (model.CycleResult, error) {
	m.mu.Lock()
	tooSoon := !m.lastStart.IsZero() && !m.running && time.Since(m.lastStart) < triggerCooldown
	m.mu.Unlock()
	if tooSoon {
		return model.CycleResult{}, ErrTriggerTooSoon
	}
	return m.RunCycle(ctx)
}

// LastStart reports when the most recent cycle began (zero if none ran
// yet) and whether one is running now.
func (m *Monitor) LastStart() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastStart, m.running
}

// SendDailySummary posts the aggregate summary and then sweeps
// lingering unnotified records per region back through the router, the
// retry opportunity for batches whose delivery failed earlier.
func (m *Monitor) SendDailySummary(ctx context.Context) error {
	stats, err := m.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("summary stats: %w", err)
	}
	if err := m.notifier.SendDailySummary(ctx, stats); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	m.retryUnnotified(ctx)
	return nil
}

func (m *Monitor) retryUnnotified(ctx context.Context) {
	regions, err := m.store.UnnotifiedRegions(ctx)
	if err != nil {
		slog.Error("unnotified region lookup failed", "err", err)
		return
	}
	for _, region := range regions {
		jobs, err := m.store.UnnotifiedByRegion(ctx, region)
		if err != nil {
			slog.Error("unnotified lookup failed", "region", region, "err", err)
			continue
		}
		if len(jobs) == 0 {
			continue
		}
		sent, ok := m.router.Route(ctx, region, jobs)
		slog.Info("retried unnotified jobs", "region", region, "sent", sent, "allDelivered", ok)
	}
}

// PruneOld removes records and search attempts older than the retention
// horizon. Idempotent; safe to skip a day.
func (m *Monitor) PruneOld(ctx context.Context) error {
	horizon := time.Duration(m.cfg.RetentionDays) * 24 * time.Hour
	deleted, err := m.store.Prune(ctx, horizon)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	if deleted > 0 {
		slog.Info("pruned old jobs", "deleted", deleted, "retentionDays", m.cfg.RetentionDays)
	}
	return nil
}

// NotifyStartup announces the monitored regions on the operational
// channel. Best-effort.
func (m *Monitor) NotifyStartup(ctx context.Context) {
	names := make([]string, len(m.cfg.Regions))
	for i, r := range m.cfg.Regions {
		names[i] = string(r)
	}
	msg := fmt.Sprintf("Started monitoring for **%s** positions in: **%s**",
		m.cfg.JobTitle, strings.Join(names, ", "))
	if err := m.notifier.SendStatus(ctx, "Job Monitor Started", msg, notify.SeverityInfo); err != nil {
		slog.Warn("startup notice failed", "err", err)
	}
}
