// Package filter composes the listing criteria (free text, categories,
// distance) into one pass over the catalog.
package filter

import (
	"fmt"
	"math"
	"strings"

	"locallift/internal/catalog"
)

// MaxDistance is the top of the distance slider. Thresholds at or above it
// leave the list untouched.
const MaxDistance = 10

// DefaultPostcode is used when the listing is opened without one.
const DefaultPostcode = "E1 6LP"

// Criteria is the listing state recomputed on every change.
type Criteria struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	Distance   int      `json:"distance"`
	Postcode   string   `json:"postcode"`
}

// Notice is the user-facing summary of a filter pass.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result is the visible subset plus its notice.
type Result struct {
	Resources []catalog.Resource `json:"resources"`
	Total     int                `json:"total"`
	Notice    Notice             `json:"notice"`
}

// Apply returns the resources matching every active criterion, in input order.
// It never modifies resources.
func Apply(resources []catalog.Resource, c Criteria) Result {
	query := strings.ToLower(c.Query)
	categories := normalizeCategories(c.Categories)

	matched := make([]catalog.Resource, 0, len(resources))
	for _, r := range resources {
		if !matchesQuery(r, query) || !matchesCategory(r, categories) {
			continue
		}
		matched = append(matched, r)
	}

	matched = truncateByDistance(matched, c.Distance)

	return Result{
		Resources: matched,
		Total:     len(resources),
		Notice: Notice{
			Title:       "Filters Applied",
			Description: fmt.Sprintf("Showing %d resources", len(matched)),
		},
	}
}

// MatchesQuery reports whether r contains query in its name, description or
// category, ignoring case. An empty query matches.
func MatchesQuery(r catalog.Resource, query string) bool {
	return matchesQuery(r, strings.ToLower(query))
}

func matchesQuery(r catalog.Resource, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), lowered) ||
		strings.Contains(strings.ToLower(r.Description), lowered) ||
		strings.Contains(strings.ToLower(r.Category), lowered)
}

// MatchesCategory reports whether r's category contains any of selected,
// ignoring case. An empty selection matches.
func MatchesCategory(r catalog.Resource, selected []string) bool {
	return matchesCategory(r, normalizeCategories(selected))
}

func matchesCategory(r catalog.Resource, lowered []string) bool {
	if len(lowered) == 0 {
		return true
	}
	category := strings.ToLower(r.Category)
	for _, s := range lowered {
		if strings.Contains(category, s) {
			return true
		}
	}
	return false
}

func normalizeCategories(selected []string) []string {
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if trimmed := strings.ToLower(strings.TrimSpace(s)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// truncateByDistance keeps ceil(len*distance/MaxDistance) entries when the
// threshold is inside (0, MaxDistance). There are no coordinates behind the
// resources, so this is a stand-in for real proximity filtering.
func truncateByDistance(resources []catalog.Resource, distance int) []catalog.Resource {
	if distance <= 0 || distance >= MaxDistance {
		return resources
	}
	keep := int(math.Ceil(float64(len(resources)) * float64(distance) / float64(MaxDistance)))
	if keep >= len(resources) {
		return resources
	}
	return resources[:keep]
}
