package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"jobwatch/monitor-service/internal/model"
	"jobwatch/monitor-service/internal/pipeline"
)

// fakeStore is an in-memory stand-in keyed by identity hash.
type fakeStore struct {
	jobs     map[string]model.Job
	attempts []model.SearchAttempt
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[string]model.Job)}
}

func (s *fakeStore) InsertOrTouch(_ context.Context, job model.Job) (bool, error) {
	if s.failNext {
		s.failNext = false
		return false, errors.New("constraint violation")
	}
	if _, ok := s.jobs[job.Hash]; ok {
		return false, nil
	}
	s.jobs[job.Hash] = job
	return true, nil
}

func (s *fakeStore) LogSearch(_ context.Context, attempt model.SearchAttempt) error {
	s.attempts = append(s.attempts, attempt)
	return nil
}

// fakeExtractor serves canned candidates or a canned error, recording
// the URL each fetch was asked for.
type fakeExtractor struct {
	candidates []model.RawCandidate
	err        error
	fetchedURL string
}

func (e *fakeExtractor) SearchURL(region model.Region) (string, error) {
	if region == "MARS" {
		return "", errors.New("unknown region \"MARS\"")
	}
	return "https://example.test/search?region=" + string(region), nil
}

func (e *fakeExtractor) Fetch(_ context.Context, searchURL string) ([]model.RawCandidate, error) {
	e.fetchedURL = searchURL
	return e.candidates, e.err
}

func candidate(title, company, location string) model.RawCandidate {
	return model.RawCandidate{Title: title, Company: company, Location: location}
}

func TestRun_FiltersAndStoresRelevantJobs(t *testing.T) {
	store := newFakeStore()
	p := pipeline.New(store, &fakeExtractor{candidates: []model.RawCandidate{
		candidate("Associate Product Manager", "Acme", "NYC"),
		candidate("Warehouse Associate", "Acme", "NYC"),
	}})

	newJobs, err := p.Run(context.Background(), model.RegionNYC)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(newJobs) != 1 {
		t.Fatalf("Run returned %d new jobs, want 1", len(newJobs))
	}
	if newJobs[0].Title != "Associate Product Manager" {
		t.Errorf("stored job title = %q", newJobs[0].Title)
	}
	if len(store.jobs) != 1 {
		t.Errorf("store holds %d jobs, want 1", len(store.jobs))
	}
	if len(store.attempts) != 1 || !store.attempts[0].Success || store.attempts[0].JobsFound != 1 {
		t.Errorf("search attempt = %+v, want success with 1 job", store.attempts)
	}
}

func TestRun_LogsTheURLItFetched(t *testing.T) {
	store := newFakeStore()
	ex := &fakeExtractor{}
	p := pipeline.New(store, ex)

	if _, err := p.Run(context.Background(), model.RegionLA); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(store.attempts))
	}
	if got := store.attempts[0].SearchURL; got != ex.fetchedURL || got == "" {
		t.Errorf("attempt logged URL %q but fetch used %q", got, ex.fetchedURL)
	}
}

func TestRun_RepeatSightingIsNotNew(t *testing.T) {
	store := newFakeStore()
	ex := &fakeExtractor{candidates: []model.RawCandidate{
		candidate("Product Manager", "Acme", "NYC"),
	}}
	p := pipeline.New(store, ex)

	first, err := p.Run(context.Background(), model.RegionNYC)
	if err != nil || len(first) != 1 {
		t.Fatalf("first run = %d jobs, err %v", len(first), err)
	}

	second, err := p.Run(context.Background(), model.RegionNYC)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run reported %d new jobs, want 0", len(second))
	}
	if len(store.jobs) != 1 {
		t.Errorf("store holds %d jobs after repeat sighting, want 1", len(store.jobs))
	}
}

func TestRun_SkipsCandidatesWithoutIdentity(t *testing.T) {
	store := newFakeStore()
	p := pipeline.New(store, &fakeExtractor{candidates: []model.RawCandidate{
		candidate("", "Acme", "NYC"),
		candidate("Product Manager", "", "NYC"),
	}})

	newJobs, err := p.Run(context.Background(), model.RegionNYC)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(newJobs) != 0 || len(store.jobs) != 0 {
		t.Errorf("candidates without title or company must be skipped, got %d new", len(newJobs))
	}
}

func TestRun_RemoteRegionKeepsRemoteOnly(t *testing.T) {
	store := newFakeStore()
	p := pipeline.New(store, &fakeExtractor{candidates: []model.RawCandidate{
		candidate("Product Manager", "Acme", "Remote"),
		candidate("Product Manager", "Globex", "New York, NY"),
	}})

	newJobs, err := p.Run(context.Background(), model.RegionRemote)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(newJobs) != 1 {
		t.Fatalf("remote run returned %d jobs, want 1", len(newJobs))
	}
	if newJobs[0].Company != "Acme" {
		t.Errorf("remote run kept %q, want the remote posting", newJobs[0].Company)
	}
}

func TestRun_ExtractorFailureLogsAttempt(t *testing.T) {
	store := newFakeStore()
	p := pipeline.New(store, &fakeExtractor{err: errors.New("HTTP 429")})

	newJobs, err := p.Run(context.Background(), model.RegionSF)
	if err == nil {
		t.Fatal("Run should fail when the extractor fails")
	}
	if len(newJobs) != 0 || len(store.jobs) != 0 {
		t.Error("a failed extraction must not produce jobs")
	}
	if len(store.attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(store.attempts))
	}
	a := store.attempts[0]
	if a.Success || a.ErrorText == nil || *a.ErrorText != "HTTP 429" {
		t.Errorf("failed attempt = %+v, want success=false with error text", a)
	}
}

func TestRun_UnknownRegionNoStoreMutation(t *testing.T) {
	store := newFakeStore()
	p := pipeline.New(store, &fakeExtractor{})

	if _, err := p.Run(context.Background(), model.Region("MARS")); err == nil {
		t.Fatal("Run should fail for an unknown region")
	}
	if len(store.attempts) != 0 || len(store.jobs) != 0 {
		t.Error("an unknown region must not touch the store")
	}
}

func TestRun_StorageErrorSkipsOnlyAffectedJob(t *testing.T) {
	store := newFakeStore()
	store.failNext = true
	p := pipeline.New(store, &fakeExtractor{candidates: []model.RawCandidate{
		candidate("Product Manager", "Acme", "NYC"),
		candidate("Senior Product Manager", "Globex", "NYC"),
	}})

	newJobs, err := p.Run(context.Background(), model.RegionNYC)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(newJobs) != 1 {
		t.Errorf("storage error should skip one write, got %d new jobs", len(newJobs))
	}
}
