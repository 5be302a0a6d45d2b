package notify

import (
	"fmt"
	"strings"
	"time"

	"jobwatch/monitor-service/internal/model"
)

const fallbackLogoURL = "https://cdn-icons-png.flaticon.com/512/3135/3135715.png"

// jobEmbed builds the Discord embed for one posting.
func jobEmbed(job *model.Job) embed {
	color := colorNewJob
	if job.PayRangeMin != nil && *job.PayRangeMin >= 150000 {
		color = colorHighPay
	} else if job.LocationClass == model.LocationRemote {
		color = colorRemote
	}

	title := sanitize(job.Title, 200)
	if title == "" {
		title = "Unknown Position"
	}
	company := sanitize(job.Company, 100)
	if company == "" {
		company = "Unknown Company"
	}

	e := embed{
		Title:       title,
		Description: fmt.Sprintf("**%s**", company),
		Color:       color,
		Timestamp:   job.FirstSeen.UTC().Format(time.RFC3339),
		Thumbnail:   &embedThumbnail{URL: companyLogoURL(job.Company)},
		Footer:      &embedFooter{Text: "jobwatch monitor • Apply quickly for best results!"},
	}

	e.Fields = append(e.Fields,
		embedField{Name: "💰 Salary", Value: salaryLine(job), Inline: true},
		embedField{Name: "📍 Location", Value: locationLine(job), Inline: true},
		embedField{Name: "🕒 Posted", Value: postedLine(job), Inline: true},
	)

	if job.SourceURL != nil && strings.Contains(*job.SourceURL, "linkedin.com") {
		e.Fields = append(e.Fields, embedField{
			Name:  "​",
			Value: fmt.Sprintf("**[➤ APPLY ON LINKEDIN](%s)**", *job.SourceURL),
		})
	}
	if job.SourceID != nil {
		e.Fields = append(e.Fields, embedField{
			Name:   "🆔 Job ID",
			Value:  fmt.Sprintf("`%s`", *job.SourceID),
			Inline: true,
		})
	}

	return e
}

func salaryLine(job *model.Job) string {
	switch {
	case job.PayRangeText != nil && *job.PayRangeText != "":
		return sanitize(strings.Join(strings.Fields(*job.PayRangeText), " "), 100)
	case job.PayRangeMin != nil && job.PayRangeMax != nil:
		s := fmt.Sprintf("$%s - $%s", formatThousands(*job.PayRangeMin), formatThousands(*job.PayRangeMax))
		if job.PayPeriod != model.PayYearly && job.PayPeriod != "" {
			s += " " + string(job.PayPeriod)
		}
		return s
	case job.PayRangeMin != nil:
		s := fmt.Sprintf("$%s+", formatThousands(*job.PayRangeMin))
		if job.PayPeriod != model.PayYearly && job.PayPeriod != "" {
			s += " " + string(job.PayPeriod)
		}
		return s
	default:
		return "Not disclosed"
	}
}

func locationLine(job *model.Job) string {
	var prefix string
	switch job.LocationClass {
	case model.LocationRemote:
		prefix = "🏠 Remote"
	case model.LocationHybrid:
		prefix = "🏢🏠 Hybrid"
	case model.LocationOnSite:
		prefix = "On-site"
	}

	loc := sanitize(job.Location, 100)
	switch {
	case prefix == "" && loc == "":
		return "Not specified"
	case prefix == "":
		return loc
	case loc == "" || strings.Contains(job.Location, string(job.LocationClass)):
		return prefix
	default:
		return prefix + " • " + loc
	}
}

func postedLine(job *model.Job) string {
	if job.PostedTime == nil || *job.PostedTime == "" {
		return "Recently posted"
	}
	text := *job.PostedTime
	if job.PostedHoursAgo != nil {
		if *job.PostedHoursAgo < 1 {
			text += " ⚡ (Very Recent!)"
		} else if *job.PostedHoursAgo <= 24 {
			text += " 🔥 (Hot!)"
		}
	}
	return text
}

// companyLogoURL guesses a Clearbit logo URL from the company name,
// falling back to a generic icon.
func companyLogoURL(company string) string {
	if company == "" {
		return fallbackLogoURL
	}

	clean := strings.ToLower(company)
	for _, suffix := range []string{" inc.", " inc", " llc", " ltd", " corporation", " corp", " co.", " company"} {
		clean = strings.ReplaceAll(clean, suffix, "")
	}

	var b strings.Builder
	for _, r := range clean {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackLogoURL
	}
	return "https://logo.clearbit.com/" + b.String() + ".com"
}

// sanitize escapes markdown-significant characters and truncates to
// maxLen runes so upstream text cannot break the embed layout.
// Truncation works on runes, not bytes: scraped titles can carry
// multi-byte characters and a mid-rune cut would produce invalid UTF-8.
func sanitize(text string, maxLen int) string {
	s := strings.NewReplacer("`", "\\`", "*", "\\*", "_", "\\_").Replace(text)
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen-3]) + "..."
	}
	return s
}

func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}
