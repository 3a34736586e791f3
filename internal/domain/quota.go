package domain

import (
	"math"
	"sort"
	"time"
)

// UnlimitedQuota is the limit value the backend uses for uncapped quotas.
const UnlimitedQuota = -1

const (
	ResetDaily   = "daily"
	ResetMonthly = "monthly"
	ResetNever   = "never"
)

type Quota struct {
	Type        string
	Limit       int
	Used        int
	ResetCycle  string
	LastResetAt time.Time
}

func (q Quota) Unlimited() bool {
	return q.Limit == UnlimitedQuota
}

// UsedPercent is the rounded share of the limit consumed. Unlimited and
// zero-limit quotas report 0.
func (q Quota) UsedPercent() int {
	if q.Unlimited() || q.Limit <= 0 {
		return 0
	}
	return int(math.Round(float64(q.Used) / float64(q.Limit) * 100))
}

// Remaining is how many uses are left, or -1 when unlimited.
func (q Quota) Remaining() int {
	if q.Unlimited() {
		return UnlimitedQuota
	}
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// NextResetAt derives the next reset from the last one and the cycle. It is
// zero when the quota never resets or the last reset is unknown.
func (q Quota) NextResetAt() time.Time {
	if q.LastResetAt.IsZero() {
		return time.Time{}
	}
	switch q.ResetCycle {
	case ResetDaily:
		return q.LastResetAt.AddDate(0, 0, 1)
	case ResetMonthly:
		return q.LastResetAt.AddDate(0, 1, 0)
	default:
		return time.Time{}
	}
}

// QuotaBoard is the most recent quota snapshot for the logged-in principal.
type QuotaBoard struct {
	Quotas     map[string]Quota
	CapturedAt time.Time
}

func (b QuotaBoard) IsStale(now time.Time, maxAge time.Duration) bool {
	if b.CapturedAt.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return now.Sub(b.CapturedAt) > maxAge
}

// Sorted returns the quotas ordered by type.
func (b QuotaBoard) Sorted() []Quota {
	quotas := make([]Quota, 0, len(b.Quotas))
	for _, quota := range b.Quotas {
		quotas = append(quotas, quota)
	}
	sort.Slice(quotas, func(i, j int) bool {
		return quotas[i].Type < quotas[j].Type
	})
	return quotas
}
