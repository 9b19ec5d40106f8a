package xapi

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// FormatDuration renders d as an ISO-8601 duration (PT{h}H{m}M{s}S),
// omitting zero components. A zero duration is "PT0S".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	h := int64(d / time.Hour)
	m := int64(d % time.Hour / time.Minute)
	s := int64(d % time.Minute / time.Second)

	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}

// ParseDuration parses an ISO-8601 time duration into whole minutes.
// Seconds round up to the next minute, so "PT1H30M15S" is 91.
func ParseDuration(s string) (int, error) {
	match := durationPattern.FindStringSubmatch(s)
	if match == nil || s == "PT" {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	var minutes int
	if match[1] != "" {
		h, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, fmt.Errorf("hours in %q: %w", s, err)
		}
		minutes += h * 60
	}
	if match[2] != "" {
		m, err := strconv.Atoi(match[2])
		if err != nil {
			return 0, fmt.Errorf("minutes in %q: %w", s, err)
		}
		minutes += m
	}
	if match[3] != "" {
		sec, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			return 0, fmt.Errorf("seconds in %q: %w", s, err)
		}
		minutes += int(math.Ceil(sec / 60))
	}
	return minutes, nil
}

func minutesToDuration(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
