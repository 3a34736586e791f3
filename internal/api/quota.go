package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

const (
	PathQuotaList           = "/api/quota/list"
	PathSubscriptionCurrent = "/api/subscription/current"
	PathSubscriptionPlans   = "/api/subscription/plans"
	PathSubscriptionFeature = "/api/subscription/check-feature"
)

// Layouts the backend has used for LocalDateTime fields.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type usageQuota struct {
	QuotaType     string `json:"quotaType"`
	QuotaLimit    *int   `json:"quotaLimit"`
	QuotaUsed     int    `json:"quotaUsed"`
	ResetCycle    string `json:"resetCycle"`
	LastResetTime string `json:"lastResetTime"`
}

func QuotaList() domain.Request {
	return domain.Get(PathQuotaList)
}

func CurrentSubscription() domain.Request {
	return domain.Get(PathSubscriptionCurrent)
}

func SubscriptionPlans() domain.Request {
	return domain.Get(PathSubscriptionPlans)
}

func CheckFeature(feature string) domain.Request {
	return domain.Get(PathSubscriptionFeature).WithQuery("feature", feature)
}

// DecodeQuotaBoard turns the quota list payload, a map keyed by quota type,
// into a board captured at capturedAt. A missing limit is treated as
// unlimited.
func DecodeQuotaBoard(data json.RawMessage, capturedAt time.Time) (domain.QuotaBoard, error) {
	var raw map[string]usageQuota
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.QuotaBoard{}, fmt.Errorf("decode quota list: %w", err)
	}

	board := domain.QuotaBoard{
		Quotas:     make(map[string]domain.Quota, len(raw)),
		CapturedAt: capturedAt,
	}
	for key, item := range raw {
		quotaType := strings.TrimSpace(item.QuotaType)
		if quotaType == "" {
			quotaType = key
		}

		limit := domain.UnlimitedQuota
		if item.QuotaLimit != nil {
			limit = *item.QuotaLimit
		}

		board.Quotas[quotaType] = domain.Quota{
			Type:        quotaType,
			Limit:       limit,
			Used:        item.QuotaUsed,
			ResetCycle:  item.ResetCycle,
			LastResetAt: parseTime(item.LastResetTime),
		}
	}

	return board, nil
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
