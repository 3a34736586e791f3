package domain

import "strings"

// RefreshRule marks request paths whose success changes quota usage.
type RefreshRule struct {
	PathPattern string
}

func DefaultRefreshRules() []RefreshRule {
	return []RefreshRule{
		{PathPattern: "/api/er/parse-sql"},
		{PathPattern: "/api/er/connect-jdbc"},
		{PathPattern: "/api/repository/create"},
		{PathPattern: "/api/diagram/create"},
		{PathPattern: "/api/project/create"},
	}
}

func (r RefreshRule) Matches(path string) bool {
	return r.PathPattern != "" && strings.Contains(path, r.PathPattern)
}

// MatchesAny reports whether path contains the pattern of any rule.
func MatchesAny(rules []RefreshRule, path string) bool {
	for _, rule := range rules {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}
