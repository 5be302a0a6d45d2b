// Package filter classifies raw candidates as in-scope or not using
// inclusion and exclusion keyword rules.
package filter

import (
	"log/slog"
	"strings"
)

// roleKeywords are the role-title terms a title must contain at least one of.
var roleKeywords = []string{
	"product manager",
	"associate product manager",
	"sr. product manager",
	"senior product manager",
	"principal product manager",
	"staff product manager",
	"product operations",
	"product ops",
	"apm",
	"spm",
}

// exclusionKeywords discard a candidate when any of them appears in the
// combined title + description text. Out-of-domain industries mostly.
var exclusionKeywords = []string{
	"clinical",
	"medical",
	"healthcare",
	"hospital",
	"patient",
	"nursing",
	"therapy",
	"pharmaceutical",
	"education",
	"academic",
	"school",
	"teaching",
	"instructor",
	"curriculum",
	"construction",
	"real estate",
	"property management",
	"facility",
	"maintenance",
	"janitorial",
	"security guard",
	"warehouse",
	"logistics coordinator",
	"driver",
	"delivery",
	"food service",
	"restaurant",
	"retail",
	"sales associate",
	"customer service rep",
}

// positiveSignals are logged for diagnostics only. They must never gate
// acceptance: the filter stays auditable with exactly two rules.
var positiveSignals = []string{
	"product strategy",
	"product roadmap",
	"user experience",
	"product development",
	"market research",
	"product launch",
	"feature",
	"agile",
	"scrum",
	"stakeholder",
	"kpi",
	"metrics",
	"a/b test",
	"user story",
	"mvp",
	"saas",
	"software",
	"tech",
	"startup",
}

// IsRelevant reports whether a posting is an in-scope product role.
// Rules: the title must contain a role keyword, and neither title nor
// description may contain an exclusion keyword.
func IsRelevant(title, description string) bool {
	if title == "" {
		return false
	}

	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	hasRole := containsAny(titleLower, roleKeywords)
	if !hasRole {
		return false
	}

	combined := titleLower + " " + descLower
	if containsAny(combined, exclusionKeywords) {
		return false
	}

	// Diagnostic only — does not affect the outcome.
	slog.Debug("relevance filter accepted",
		"title", title,
		"positiveSignal", containsAny(descLower, positiveSignals))

	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
