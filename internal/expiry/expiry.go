package expiry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"remna-tg-admin/internal/constants"
)

// ruleRe matches the expiry-time rule grammar: GMT±H:MM/HH:MM, an UTC
// offset followed by the wall-clock anchor time.
var ruleRe = regexp.MustCompile(`^GMT([+-])(\d{1,2}):(\d{2})/(\d{2}):(\d{2})$`)

// Rule is a parsed expiry-time rule: all computed expiry instants are
// anchored to Hour:Minute wall-clock time in Location.
type Rule struct {
	Location *time.Location
	Hour     int
	Minute   int
}

// ParseRule parses a rule string, case-insensitively. It returns an error
// for anything outside the grammar or with out-of-range time components.
func ParseRule(s string) (*Rule, error) {
	m := ruleRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return nil, fmt.Errorf("invalid expire time rule: %q", s)
	}

	offsetHours, _ := strconv.Atoi(m[2])
	offsetMinutes, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if offsetHours > 23 || offsetMinutes > 59 {
		return nil, fmt.Errorf("invalid UTC offset in rule: %q", s)
	}
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("invalid anchor time in rule: %q", s)
	}

	offset := offsetHours*3600 + offsetMinutes*60
	if m[1] == "-" {
		offset = -offset
	}

	name := fmt.Sprintf("GMT%s%d:%02d", m[1], offsetHours, offsetMinutes)
	return &Rule{
		Location: time.FixedZone(name, offset),
		Hour:     hour,
		Minute:   minute,
	}, nil
}

// Compute derives the expiry instant for an N-day-out expiry: the date N
// days from now in the rule's offset, at the rule's anchor time, converted
// to UTC. Without a rule it falls back to now UTC + N days anchored at
// the legacy 18:30 UTC default.
func Compute(now time.Time, days int, rule *Rule) time.Time {
	if rule != nil {
		local := now.In(rule.Location).AddDate(0, 0, days)
		anchored := time.Date(local.Year(), local.Month(), local.Day(),
			rule.Hour, rule.Minute, 0, 0, rule.Location)
		return anchored.UTC()
	}

	utc := now.UTC().AddDate(0, 0, days)
	return time.Date(utc.Year(), utc.Month(), utc.Day(),
		constants.FallbackExpireHourUTC, constants.FallbackExpireMinuteUTC, 0, 0, time.UTC)
}
