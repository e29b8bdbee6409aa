package matcher

import "strings"

// Component is a single entry from the upstream status feed.
//
// Only the name and status fields are meaningful to the matcher;
// any other fields in the feed are ignored upstream.
type Component struct {
	// Name is the component's display name (e.g., "Jakarta, Indonesia - (CGK)").
	Name string

	// Status is the component's current status string (e.g., "operational").
	// The set of values is open; unknown values are passed through as-is.
	Status string
}

// Match is the association of a target to the component record it matched.
type Match struct {
	// ComponentName is the raw name of the matched component.
	ComponentName string

	// Status is the matched component's current status.
	Status string
}

// Find maps each target to the first component whose lowercased name
// contains the target as a substring.
//
// Targets are expected to be pre-trimmed and lowercased. For each target,
// components are scanned in their given order and the first containing
// record wins; remaining records are not checked for that target. Targets
// with no containing record are omitted from the result — it is the
// caller's job to warn about them. Multiple targets may match the same
// component; no deduplication is performed.
func Find(components []Component, targets []string) map[string]Match {
	matches := make(map[string]Match, len(targets))

	for _, target := range targets {
		if target == "" {
			continue
		}
		for _, comp := range components {
			if strings.Contains(strings.ToLower(comp.Name), target) {
				matches[target] = Match{
					ComponentName: comp.Name,
					Status:        comp.Status,
				}
				break
			}
		}
	}

	return matches
}
