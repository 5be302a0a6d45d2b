// Package notify delivers job alerts and operational notices to Discord
// webhooks. Per-record batches go to region channels; status notices and
// the daily summary always go to the default channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobwatch/monitor-service/internal/model"
)

// MaxEmbedsPerMessage is Discord's hard limit on embeds in one webhook
// call; callers must batch accordingly.
const MaxEmbedsPerMessage = 10

const sendTimeout = 30 * time.Second

// Severity selects the embed color for status notices.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityColors = map[Severity]int{
	SeverityInfo:    0x0099ff,
	SeverityWarning: 0xffaa00,
	SeverityError:   0xff0000,
}

const (
	colorNewJob  = 0x00ff00
	colorHighPay = 0xffd700
	colorRemote  = 0x00ffff
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Color       int             `json:"color"`
	Timestamp   string          `json:"timestamp"`
	Thumbnail   *embedThumbnail `json:"thumbnail,omitempty"`
	Fields      []embedField    `json:"fields,omitempty"`
	Footer      *embedFooter    `json:"footer,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

// Discord sends webhook messages. defaultURL is the fallback and the
// operational channel; regionURLs override it per region.
type Discord struct {
	defaultURL string
	regionURLs map[model.Region]string
	client     *http.Client
}

// NewDiscord constructs a notifier. At least one webhook must be
// configured; config validation enforces that before we get here.
func NewDiscord(defaultURL string, regionURLs map[model.Region]string) *Discord {
	return &Discord{
		defaultURL: defaultURL,
		regionURLs: regionURLs,
		client:     &http.Client{Timeout: sendTimeout},
	}
}

// WebhookFor resolves the outbound webhook for a region: the
// region-specific URL when configured and non-empty, else the default.
// known is false when the region has no entry at all.
func (d *Discord) WebhookFor(region model.Region) (url string, known bool) {
	u, ok := d.regionURLs[region]
	if ok && u != "" {
		return u, true
	}
	return d.defaultURL, ok
}

// SendBatch delivers one batch of jobs (≤ MaxEmbedsPerMessage) to the
// region's channel in a single combined message.
func (d *Discord) SendBatch(ctx context.Context, region model.Region, jobs []model.Job, batch, totalBatches int) error {
	if len(jobs) == 0 {
		return nil
	}
	if len(jobs) > MaxEmbedsPerMessage {
		return fmt.Errorf("batch of %d exceeds %d embeds", len(jobs), MaxEmbedsPerMessage)
	}

	webhookURL, known := d.WebhookFor(region)
	if !known {
		slog.Warn("no webhook mapping for region, using default channel", "region", region)
	}

	plural := ""
	if len(jobs) > 1 {
		plural = "s"
	}
	content := fmt.Sprintf("🚨 **%d New Product Position%s Found in %s!**", len(jobs), plural, region)
	if totalBatches > 1 {
		content += fmt.Sprintf(" (Batch %d/%d)", batch, totalBatches)
	}

	embeds := make([]embed, 0, len(jobs))
	for i := range jobs {
		embeds = append(embeds, jobEmbed(&jobs[i]))
	}

	return d.post(ctx, webhookURL, webhookPayload{Content: content, Embeds: embeds})
}

// SendStatus posts an operational notice to the default channel.
func (d *Discord) SendStatus(ctx context.Context, title, message string, severity Severity) error {
	emoji := map[Severity]string{
		SeverityInfo:    "💻",
		SeverityWarning: "⚠️",
		SeverityError:   "❌",
	}[severity]

	color, ok := severityColors[severity]
	if !ok {
		color = severityColors[SeverityInfo]
	}

	e := embed{
		Title:       fmt.Sprintf("%s %s", emoji, title),
		Description: message,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      &embedFooter{Text: "jobwatch monitor"},
	}
	return d.post(ctx, d.defaultURL, webhookPayload{Embeds: []embed{e}})
}

// SendDailySummary posts the aggregate statistics breakdown to the
// default channel.
func (d *Discord) SendDailySummary(ctx context.Context, stats model.StoreStats) error {
	e := embed{
		Title:     "📊 Daily Job Search Summary",
		Color:     severityColors[SeverityInfo],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []embedField{
			{Name: "🆕 New Jobs Today", Value: fmt.Sprintf("**%d** new positions", stats.JobsToday), Inline: true},
			{Name: "📈 Total Tracked", Value: fmt.Sprintf("**%d** jobs", stats.TotalJobs), Inline: true},
			{Name: "🔍 Searches Today", Value: fmt.Sprintf("**%d** searches", stats.SuccessSearchesToday), Inline: true},
		},
		Footer: &embedFooter{Text: "jobwatch monitor — daily summary"},
	}

	if stats.JobsWithSalary > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:  "💰 Salary Data",
			Value: fmt.Sprintf("**%d** jobs with disclosed salary", stats.JobsWithSalary),
		})
	}
	if stats.RemoteJobs+stats.HybridJobs+stats.OnSiteJobs > 0 {
		e.Fields = append(e.Fields, embedField{
			Name: "📍 Location Types",
			Value: fmt.Sprintf("🏠 **%d** Remote • 🏢🏠 **%d** Hybrid • 🏢 **%d** On-site",
				stats.RemoteJobs, stats.HybridJobs, stats.OnSiteJobs),
		})
	}
	if stats.UnnotifiedJobs > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:   "🔔 Pending Notifications",
			Value:  fmt.Sprintf("**%d** jobs awaiting notification", stats.UnnotifiedJobs),
			Inline: true,
		})
	}

	switch {
	case stats.JobsToday > 0:
		e.Description = "🎯 **Great day for job hunting!** Apply quickly for the best results."
	case stats.SuccessSearchesToday > 0:
		e.Description = "🔍 **Monitoring active** — no new matches today, but we're watching."
	default:
		e.Description = "💤 **Quiet day** — no successful searches recorded yet."
	}

	return d.post(ctx, d.defaultURL, webhookPayload{
		Content: "📅 **Daily Summary Report**",
		Embeds:  []embed{e},
	})
}

func (d *Discord) post(ctx context.Context, webhookURL string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
