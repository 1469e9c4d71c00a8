package domain

import "strings"

// InterestProfile is a normalized set of category tokens used by the planner
// to score activities. The empty profile is valid and means "no preference".
type InterestProfile map[string]struct{}

// ParseInterests normalizes a raw comma-separated interest string into an
// InterestProfile: tokens are trimmed, lower-cased, and deduplicated; empty
// tokens are dropped. An empty or whitespace-only input yields an empty
// profile, not an error.
func ParseInterests(raw string) InterestProfile {
	profile := InterestProfile{}
	for _, token := range strings.Split(raw, ",") {
		t := strings.ToLower(strings.TrimSpace(token))
		if t == "" {
			continue
		}
		profile[t] = struct{}{}
	}
	return profile
}

// Contains reports whether the normalized category token is part of the profile.
func (p InterestProfile) Contains(category string) bool {
	_, ok := p[strings.ToLower(strings.TrimSpace(category))]
	return ok
}
