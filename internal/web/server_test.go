package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobwatch/monitor-service/internal/config"
	"jobwatch/monitor-service/internal/model"
	"jobwatch/monitor-service/internal/monitor"
	"jobwatch/monitor-service/internal/notify"
	"jobwatch/monitor-service/internal/web"
)

type stubPipeline struct{}

func (stubPipeline) Run(context.Context, model.Region) ([]model.Job, error) { return nil, nil }

type stubRouter struct{}

func (stubRouter) Route(context.Context, model.Region, []model.Job) (int, bool) { return 0, true }

type stubStore struct{}

func (stubStore) Stats(context.Context) (model.StoreStats, error) {
	return model.StoreStats{TotalJobs: 5}, nil
}
func (stubStore) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }

func (stubStore) UnnotifiedRegions(context.Context) ([]model.Region, error) { return nil, nil }
func (stubStore) UnnotifiedByRegion(context.Context, model.Region) ([]model.Job, error) {
	return nil, nil
}

type stubNotifier struct{}

func (stubNotifier) SendStatus(context.Context, string, string, notify.Severity) error { return nil }

func (stubNotifier) SendDailySummary(context.Context, model.StoreStats) error { return nil }

type stubLock struct{}

func (stubLock) Acquire(context.Context) (bool, error) { return true, nil }

func (stubLock) Release(context.Context) {}

func newTestServer() *web.Server {
	cfg := &config.Config{Regions: []model.Region{model.RegionNYC}, RetentionDays: 7}
	m := monitor.New(cfg, stubStore{}, stubPipeline{}, stubRouter{}, stubNotifier{}, stubLock{}, nil)
	return web.NewServer(m, stubStore{}, "test")
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", resp.StatusCode)
	}
}

func TestStatusEndpointIncludesStats(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Stats model.StoreStats `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if body.Stats.TotalJobs != 5 {
		t.Errorf("status TotalJobs = %d, want 5", body.Stats.TotalJobs)
	}
}

func TestTriggerRateLimited(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	first, err := http.Post(srv.URL+"/trigger", "application/json", nil)
	if err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first trigger = %d, want 200", first.StatusCode)
	}

	// A second trigger inside the cooldown window must be rejected, not
	// run a concurrent cycle.
	second, err := http.Post(srv.URL+"/trigger", "application/json", nil)
	if err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second trigger = %d, want 429", second.StatusCode)
	}
}

func TestTriggerRejectsGet(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	// Trigger mutates state; a stray GET (browser prefetch, prober)
	// must not start a cycle.
	resp, err := http.Get(srv.URL + "/trigger")
	if err != nil {
		t.Fatalf("GET /trigger: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /trigger = %d, want 405", resp.StatusCode)
	}
}
