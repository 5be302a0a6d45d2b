package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	"jobwatch/monitor-service/internal/model"
)

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }

func TestSalaryLine(t *testing.T) {
	cases := []struct {
		name string
		job  model.Job
		want string
	}{
		{"source text wins", model.Job{PayRangeText: strp(" $90,000  -  $110,000 "), PayRangeMin: intp(1)}, "$90,000 - $110,000"},
		{"range formatted", model.Job{PayRangeMin: intp(80000), PayRangeMax: intp(120000), PayPeriod: model.PayYearly}, "$80,000 - $120,000"},
		{"hourly suffix", model.Job{PayRangeMin: intp(25), PayRangeMax: intp(35), PayPeriod: model.PayHourly}, "$25 - $35 hourly"},
		{"min only", model.Job{PayRangeMin: intp(95000), PayPeriod: model.PayYearly}, "$95,000+"},
		{"absent", model.Job{}, "Not disclosed"},
	}
	for _, c := range cases {
		if got := salaryLine(&c.job); got != c.want {
			t.Errorf("%s: salaryLine = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestLocationLine(t *testing.T) {
	remote := model.Job{Location: "Remote", LocationClass: model.LocationRemote}
	if got := locationLine(&remote); got != "🏠 Remote" {
		t.Errorf("remote locationLine = %q", got)
	}

	onsite := model.Job{Location: "New York, NY", LocationClass: model.LocationOnSite}
	if got := locationLine(&onsite); got != "On-site • New York, NY" {
		t.Errorf("onsite locationLine = %q", got)
	}

	unknown := model.Job{}
	if got := locationLine(&unknown); got != "Not specified" {
		t.Errorf("unknown locationLine = %q", got)
	}
}

func TestJobEmbed_HighPayColor(t *testing.T) {
	job := model.Job{Title: "Product Manager", Company: "Acme", PayRangeMin: intp(180000)}
	if e := jobEmbed(&job); e.Color != colorHighPay {
		t.Errorf("high-pay embed color = %#x, want %#x", e.Color, colorHighPay)
	}
}

func TestJobEmbed_SanitizesMarkdown(t *testing.T) {
	job := model.Job{Title: "PM *urgent*", Company: "Acme"}
	e := jobEmbed(&job)
	if !strings.Contains(e.Title, "\\*urgent\\*") {
		t.Errorf("embed title not sanitized: %q", e.Title)
	}
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 50)
	got := sanitize(long, 20)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("é", 17) + "..."; got != want {
		t.Errorf("sanitize = %q, want %q", got, want)
	}
	if got := sanitize("short", 20); got != "short" {
		t.Errorf("sanitize left short text alone = %q", got)
	}
}

func TestCompanyLogoURL(t *testing.T) {
	if got := companyLogoURL("Acme Inc."); got != "https://logo.clearbit.com/acme.com" {
		t.Errorf("companyLogoURL(Acme Inc.) = %q", got)
	}
	if got := companyLogoURL(""); got != fallbackLogoURL {
		t.Errorf("companyLogoURL(\"\") = %q", got)
	}
}

func TestFormatThousands(t *testing.T) {
	cases := map[int]string{999: "999", 1000: "1,000", 120000: "120,000", 1234567: "1,234,567"}
	for n, want := range cases {
		if got := formatThousands(n); got != want {
			t.Errorf("formatThousands(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWebhookFor(t *testing.T) {
	d := NewDiscord("https://discord.com/api/webhooks/1/default", map[model.Region]string{
		model.RegionNYC: "https://discord.com/api/webhooks/2/nyc",
		model.RegionLA:  "",
	})

	if url, known := d.WebhookFor(model.RegionNYC); !known || !strings.HasSuffix(url, "/nyc") {
		t.Errorf("WebhookFor(NYC) = %q, %v", url, known)
	}
	// Configured but empty falls back to the default channel.
	if url, known := d.WebhookFor(model.RegionLA); !known || !strings.HasSuffix(url, "/default") {
		t.Errorf("WebhookFor(LA) = %q, %v", url, known)
	}
	if url, known := d.WebhookFor(model.Region("MARS")); known || !strings.HasSuffix(url, "/default") {
		t.Errorf("WebhookFor(MARS) = %q, %v", url, known)
	}
}
