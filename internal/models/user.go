package models

import (
	"strings"
	"time"
)

// StatusActive is the panel's status value for an enabled account
const StatusActive = "ACTIVE"

// UserTraffic holds per-user traffic counters reported by the panel
type UserTraffic struct {
	UsedTrafficBytes int64   `json:"usedTrafficBytes"`
	OnlineAt         *string `json:"onlineAt"`
}

// User represents a panel user account. Timestamps stay in the panel's
// ISO-8601 wire format; parse on demand with ParseISO.
type User struct {
	UUID              string       `json:"uuid"`
	Username          string       `json:"username"`
	Status            string       `json:"status"`
	TrafficLimitBytes *int64       `json:"trafficLimitBytes"`
	UserTraffic       *UserTraffic `json:"userTraffic"`
	ExpireAt          *string      `json:"expireAt"`
	HwidDeviceLimit   *int         `json:"hwidDeviceLimit"`
	SubscriptionURL   string       `json:"subscriptionUrl"`
	SubLastOpenedAt   *string      `json:"subLastOpenedAt"`
	SubLastUserAgent  *string      `json:"subLastUserAgent"`
	CreatedAt         *string      `json:"createdAt"`
}

// IsActive reports whether the account is enabled on the panel
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// CreationDate returns the account creation instant, or the zero time when
// the panel did not report one (keeps sort-by-creation total).
func (u *User) CreationDate() time.Time {
	if t := ParseISO(u.CreatedAt); t != nil {
		return *t
	}
	return time.Time{}
}

// Squad represents an internal squad a user can be attached to
type Squad struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// ParseISO parses a panel ISO-8601 timestamp, tolerating the trailing "Z"
// form and returning nil for absent or malformed values.
func ParseISO(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	value := strings.Replace(*s, "Z", "+00:00", 1)
	t, err := time.Parse("2006-01-02T15:04:05.999999999-07:00", value)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05-07:00", value)
		if err != nil {
			return nil
		}
	}
	return &t
}

// FormatISO renders an instant the way the panel expects it: UTC with a
// trailing "Z".
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
