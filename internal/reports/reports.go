package reports

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/models"
)

// Builder turns panel data into operator-readable messages. All methods are
// pure: collaborator calls happen in the handlers, never here.
type Builder struct {
	locales *locales.Store
}

// NewBuilder creates a report builder
func NewBuilder(loc *locales.Store) *Builder {
	return &Builder{locales: loc}
}

// FormatBytes renders a byte count with binary units up to GB. Zero or
// absent counts mean "no limit" and render as the localized unlimited label.
func (b *Builder) FormatBytes(lang string, byteCount *int64) string {
	if byteCount == nil || *byteCount == 0 {
		return b.locales.T(lang, "unlimited")
	}

	labels := []string{" B", " KB", " MB", " GB"}
	value := float64(*byteCount)
	n := 0
	for value >= 1024 && n < 3 {
		value /= 1024
		n++
	}
	return fmt.Sprintf("%.2f%s", value, labels[n])
}

// RelativeTime renders how long ago an instant was, in coarse units
func (b *Builder) RelativeTime(lang string, t *time.Time, now time.Time) string {
	if t == nil {
		return b.locales.T(lang, "not_updated_yet")
	}

	seconds := int(now.Sub(*t).Seconds())
	if seconds < 60 {
		return b.locales.T(lang, "just_now")
	}
	minutes := seconds / 60
	if minutes < 60 {
		return b.locales.T(lang, "minutes_ago", "minutes", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return b.locales.T(lang, "hours_ago", "hours", hours)
	}
	return b.locales.T(lang, "days_ago", "days", hours/24)
}

// UserCard builds the user info card shown in the manage-user menu
func (b *Builder) UserCard(lang string, user *models.User, now time.Time) string {
	t := func(key string, args ...any) string { return b.locales.T(lang, key, args...) }

	username := user.Username
	if username == "" {
		username = "N/A"
	}
	safeUsername := html.EscapeString(username)

	clientApp := t("unknown")
	if user.SubLastUserAgent != nil && *user.SubLastUserAgent != "" {
		clientApp = html.EscapeString(*user.SubLastUserAgent)
	}
	subURL := t("not_found")
	if user.SubscriptionURL != "" {
		subURL = html.EscapeString(user.SubscriptionURL)
	}

	var usedBytes int64
	var onlineAt *time.Time
	if user.UserTraffic != nil {
		usedBytes = user.UserTraffic.UsedTrafficBytes
		onlineAt = models.ParseISO(user.UserTraffic.OnlineAt)
	}

	statusLabel := t("status_inactive")
	if user.IsActive() {
		statusLabel = t("status_active")
	}
	fullStatus := statusLabel + " / " + b.RelativeTime(lang, onlineAt, now)

	limitFormatted := b.FormatBytes(lang, user.TrafficLimitBytes)
	usageFormatted := "0.00 B"
	if usedBytes > 0 {
		usageFormatted = b.FormatBytes(lang, &usedBytes)
	}

	remainingFormatted := t("unlimited")
	if user.TrafficLimitBytes != nil && *user.TrafficLimitBytes > 0 {
		remaining := *user.TrafficLimitBytes - usedBytes
		remainingFormatted = b.FormatBytes(lang, &remaining)
	}

	expireDate, remainingTime := t("unlimited"), t("unlimited")
	if expireAt := models.ParseISO(user.ExpireAt); expireAt != nil {
		expireDate = expireAt.Format(constants.DateFormat)
		diff := expireAt.Sub(now)
		if diff > 0 {
			days := int(diff.Hours()) / 24
			hours := int(diff.Hours()) % 24
			remainingTime = fmt.Sprintf("%d %s %s %d %s",
				days, t("days_unit"), t("and_conjunction"), hours, t("hours_unit"))
		} else {
			remainingTime = t("expired")
		}
	}

	lastUpdate := b.RelativeTime(lang, models.ParseISO(user.SubLastOpenedAt), now)

	hwidStatus := t("disabled")
	if user.HwidDeviceLimit != nil && *user.HwidDeviceLimit > 0 {
		hwidStatus = t("hwid_limit_value", "limit", *user.HwidDeviceLimit)
	}

	return t("user_info_title", "username", safeUsername) + "\n\n" +
		t("status") + " " + fullStatus + "\n" +
		t("hwid_limit") + " " + hwidStatus + "\n\n" +
		t("total_limit") + " " + limitFormatted + "\n" +
		t("usage") + " " + usageFormatted + "\n" +
		t("remaining_volume") + " " + remainingFormatted + "\n\n" +
		t("expire_date") + " " + expireDate + "\n" +
		t("remaining_time") + " " + remainingTime + "\n\n" +
		t("client_software") + " <code>" + clientApp + "</code>\n" +
		t("last_update") + " " + lastUpdate + "\n\n" +
		t("subscription_link") + "\n" +
		"<code>" + subURL + "</code>"
}

// BannerCaption builds the caption for the created-user banner photo
func (b *Builder) BannerCaption(lang string, user *models.User, link string) string {
	expireDate := b.locales.T(lang, "unlimited")
	if expireAt := models.ParseISO(user.ExpireAt); expireAt != nil {
		expireDate = expireAt.Format(constants.DateFormat)
	}

	return b.locales.T(lang, "banner_caption_template",
		"username", html.EscapeString(user.Username),
		"limit", b.FormatBytes(lang, user.TrafficLimitBytes),
		"expire_date", expireDate,
		"link", html.EscapeString(link))
}

// SplitByActivity partitions usernames by whether the subscription was
// opened at or after the threshold. Users without a username are dropped.
// Both lists come back sorted.
func SplitByActivity(users []models.User, threshold time.Time) (updated, inactive []string) {
	for _, user := range users {
		if user.Username == "" {
			continue
		}
		if opened := models.ParseISO(user.SubLastOpenedAt); opened != nil && !opened.Before(threshold) {
			updated = append(updated, user.Username)
			continue
		}
		inactive = append(inactive, user.Username)
	}
	sort.Strings(updated)
	sort.Strings(inactive)
	return updated, inactive
}

// ActivityReportFile builds the text-file body of the activity report
func (b *Builder) ActivityReportFile(lang string, updated, inactive []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- %s (%d) ---\n", b.locales.T(lang, "updated_list_header"), len(updated)))
	if len(updated) > 0 {
		sb.WriteString(strings.Join(updated, "\n"))
	} else {
		sb.WriteString("-\n")
	}

	sb.WriteString(fmt.Sprintf("\n\n--- %s (%d) ---\n", b.locales.T(lang, "inactive_list_header"), len(inactive)))
	if len(inactive) > 0 {
		sb.WriteString(strings.Join(inactive, "\n"))
	} else {
		sb.WriteString("-\n")
	}

	return sb.String()
}

// ExpiringUser is one row of the expiring-users report
type ExpiringUser struct {
	Username string
	ExpireAt time.Time
}

// FilterExpiring selects users whose expiry falls inside the UTC day window
// daysOffset days from now (0 = the rest of today), sorted by expiry.
func FilterExpiring(users []models.User, now time.Time, daysOffset int) []ExpiringUser {
	now = now.UTC()
	var start, end time.Time
	if daysOffset == 0 {
		start = now
	} else {
		day := now.AddDate(0, 0, daysOffset)
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
	end = time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, 999999999, time.UTC)

	var expiring []ExpiringUser
	for _, user := range users {
		expireAt := models.ParseISO(user.ExpireAt)
		if expireAt == nil {
			continue
		}
		instant := expireAt.UTC()
		if !instant.Before(start) && !instant.After(end) {
			username := user.Username
			if username == "" {
				username = "N/A"
			}
			expiring = append(expiring, ExpiringUser{Username: username, ExpireAt: instant})
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		return expiring[i].ExpireAt.Before(expiring[j].ExpireAt)
	})
	return expiring
}

// ExpiringReportLines renders the chat form of the expiring-users report,
// with expiry instants shown in the configured display zone.
func (b *Builder) ExpiringReportLines(lang, period string, users []ExpiringUser, loc *time.Location) string {
	lines := []string{b.locales.T(lang, "expiring_users_report_title", "period", period)}
	for _, user := range users {
		local := user.ExpireAt.In(loc)
		lines = append(lines, fmt.Sprintf("👤 `%s` - ⏳ %s", user.Username, local.Format(constants.DateTimeFormat)))
	}
	return strings.Join(lines, "\n")
}

// ExpiringReportFile renders the document form of the expiring-users report
func ExpiringReportFile(users []ExpiringUser, loc *time.Location) string {
	lines := make([]string, 0, len(users))
	for _, user := range users {
		local := user.ExpireAt.In(loc)
		lines = append(lines, fmt.Sprintf("%s - %s", user.Username, local.Format("2006-01-02 15:04:05")))
	}
	return strings.Join(lines, "\n")
}
