package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"jobwatch/monitor-service/internal/model"
)

var (
	dollarAmountRe = regexp.MustCompile(`\$([\d,]+)`)

	// Salary phrasings seen in description snippets, checked in order.
	descSalaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$[\d,]+\s*[-–—]\s*\$[\d,]+`),
		regexp.MustCompile(`(?i)\$[\d,]+k?\s*[-–—]\s*\$[\d,]+k?`),
		regexp.MustCompile(`(?i)[\d,]+k\s*[-–—]\s*[\d,]+k(?:\s*(?:per\s+year|annually|salary))?`),
		regexp.MustCompile(`(?i)(?:salary|compensation|pay):\s*\$[\d,]+`),
		regexp.MustCompile(`(?i)up\s+to\s+\$[\d,]+`),
		regexp.MustCompile(`(?i)starting\s+(?:at|from)\s+\$[\d,]+`),
		regexp.MustCompile(`(?i)\$[\d,]+\s*[-–—]\s*\$?[\d,]+\s*(?:/|\s+per\s+)hour`),
		regexp.MustCompile(`(?i)(?:hourly\s+rate|per\s+hour):\s*\$[\d,]+`),
	}

	hourlyRe = regexp.MustCompile(`(?i)(/\s*hour|per\s+hour|/\s*hr|hourly)`)
)

// ParseSalaryRange pulls the numeric bounds out of a salary text like
// "$80,000 - $120,000". A single amount yields only the minimum.
func ParseSalaryRange(text string) (min, max *int) {
	matches := dollarAmountRe.FindAllStringSubmatch(text, 2)
	for i, m := range matches {
		v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		switch i {
		case 0:
			min = &v
		case 1:
			max = &v
		}
	}
	return min, max
}

// SalaryFromDescription scans free text for a salary phrase and returns
// it normalised with a leading $, or "" when nothing matches.
func SalaryFromDescription(description string) string {
	for _, re := range descSalaryPatterns {
		if m := re.FindString(description); m != "" {
			m = strings.TrimSpace(m)
			if !strings.HasPrefix(m, "$") && m != "" && m[0] >= '0' && m[0] <= '9' {
				m = "$" + m
			}
			return m
		}
	}
	return ""
}

// DetectPayPeriod infers the pay period from salary text. Yearly is the
// default when nothing indicates otherwise.
func DetectPayPeriod(text string) model.PayPeriod {
	lower := strings.ToLower(text)
	switch {
	case hourlyRe.MatchString(lower):
		return model.PayHourly
	case strings.Contains(lower, "month"):
		return model.PayMonthly
	default:
		return model.PayYearly
	}
}

// ClassifyLocation derives the work arrangement from free-form location
// text. On-site is the default for any recognisable location.
func ClassifyLocation(location string) model.LocationClass {
	lower := strings.ToLower(location)
	switch {
	case strings.Contains(lower, "remote"):
		return model.LocationRemote
	case strings.Contains(lower, "hybrid"):
		return model.LocationHybrid
	case lower == "":
		return model.LocationUnknown
	default:
		return model.LocationOnSite
	}
}

// CareerSearchURL synthesizes a web search link for the company's own
// career page listing of the role.
func CareerSearchURL(company, title string) string {
	q := url.QueryEscape(fmt.Sprintf("%s %s careers", company, title))
	return "https://www.google.com/search?q=" + q
}

// ParsePostedHours converts posted-time text like "2 hours ago" or
// "30 minutes ago" to whole hours. Returns nil when unparseable.
func ParsePostedHours(postedTime string) *int {
	lower := strings.ToLower(postedTime)
	fields := strings.Fields(lower)
	if len(fields) < 2 {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}

	var hours int
	switch {
	case strings.HasPrefix(fields[1], "minute"):
		hours = 0
	case strings.HasPrefix(fields[1], "hour"):
		hours = n
	case strings.HasPrefix(fields[1], "day"):
		hours = n * 24
	case strings.HasPrefix(fields[1], "week"):
		hours = n * 24 * 7
	default:
		return nil
	}
	return &hours
}
