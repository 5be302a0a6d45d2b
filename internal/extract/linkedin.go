// Package extract fetches raw job candidates from the LinkedIn guest
// search page. The page structure is not under our control: a markup
// change legitimately yields zero candidates, which callers must treat
// as an empty (not failed) extraction.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobwatch/monitor-service/internal/model"
)

const (
	searchBaseURL = "https://www.linkedin.com/jobs/search/"
	// f_TPR=r1800 limits results to postings from the last 30 minutes,
	// matching the check cadence.
	timeWindowParam = "r1800"
	httpTimeout     = 15 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrUnknownRegion is returned when a region has no geo ID mapping.
var ErrUnknownRegion = errors.New("unknown region")

// geoIDs maps regions to LinkedIn location IDs.
var geoIDs = map[model.Region]string{
	model.RegionNYC:    "90000070",
	model.RegionLA:     "90000049",
	model.RegionSF:     "90000084",
	model.RegionSD:     "90010472",
	model.RegionRemote: "90000072",
}

// LinkedInExtractor fetches candidates for a fixed job title.
type LinkedInExtractor struct {
	jobTitle string
	client   *http.Client
}

// NewLinkedInExtractor constructs an extractor with a shared HTTP client.
func NewLinkedInExtractor(jobTitle string) *LinkedInExtractor {
	return &LinkedInExtractor{
		jobTitle: jobTitle,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

// SearchURL builds the guest search URL for a region. Returns
// ErrUnknownRegion for regions without a geo ID.
func (e *LinkedInExtractor) SearchURL(region model.Region) (string, error) {
	geoID, ok := geoIDs[region]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	params := url.Values{}
	params.Set("f_TPR", timeWindowParam)
	params.Set("geoId", geoID)
	params.Set("keywords", strings.ToLower(e.jobTitle))
	params.Set("origin", "JOB_SEARCH_PAGE_LOCATION_AUTOCOMPLETE")
	params.Set("start", "0")

	return searchBaseURL + "?" + params.Encode(), nil
}

// Fetch retrieves and parses the search page at searchURL, which the
// caller resolves via SearchURL.
func (e *LinkedInExtractor) Fetch(ctx context.Context, searchURL string) ([]model.RawCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linkedin returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return ParseJobCards(doc), nil
}

// ParseJobCards extracts raw candidates from a parsed search page.
// Missing optional fields stay nil; cards without any usable text are
// dropped here, everything else is left to the relevance filter.
func ParseJobCards(doc *goquery.Document) []model.RawCandidate {
	var candidates []model.RawCandidate

	doc.Find("div.job-search-card").Each(func(_ int, card *goquery.Selection) {
		c := model.RawCandidate{
			Title:    strings.TrimSpace(card.Find("h3.base-search-card__title").First().Text()),
			Company:  strings.TrimSpace(card.Find("h4.base-search-card__subtitle").First().Text()),
			Location: strings.TrimSpace(card.Find("span.job-search-card__location").First().Text()),
		}

		if href, ok := card.Find("a.base-card__full-link").First().Attr("href"); ok && href != "" {
			c.SourceURL = &href
		}
		if urn, ok := card.Attr("data-entity-urn"); ok {
			if id := strings.TrimPrefix(urn, "urn:li:jobPosting:"); id != urn && id != "" {
				c.SourceID = &id
			}
		}
		if salary := strings.TrimSpace(card.Find("span.job-search-card__salary-info").First().Text()); salary != "" {
			c.SalaryText = &salary
		}
		if snippet := strings.TrimSpace(card.Find("p.job-search-card__snippet, div.job-search-card__snippet").First().Text()); snippet != "" {
			c.Summary = &snippet
		}
		if posted := strings.TrimSpace(card.Find("time").First().Text()); posted != "" {
			c.PostedTime = &posted
		}

		if c.Title == "" && c.Company == "" && c.Location == "" {
			return
		}
		candidates = append(candidates, c)
	})

	return candidates
}
