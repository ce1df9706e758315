// Package timefmt renders commit timestamps for annotations.
package timefmt

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RelativeLayout selects relative rendering ("2 days ago") in Format.
const RelativeLayout = "relative"

const day = 24 * time.Hour

// Relative describes how long ago then was, using the largest applicable
// unit. Timestamps at or after now render as "just now".
func Relative(now, then time.Time) string {
	d := now.Sub(then)
	if d <= 0 {
		return "just now"
	}
	days := d.Hours() / 24
	switch {
	case days > 365:
		return ago(int(days/365), "year")
	case days > 30:
		return ago(int(days/30), "month")
	case days > 7:
		return ago(int(days/7), "week")
	case days >= 1:
		return ago(int(days), "day")
	case d >= time.Hour:
		return ago(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return ago(int(d/time.Minute), "minute")
	}
	return "just now"
}

func ago(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// AgeDays returns the number of whole days between then and now, never
// negative.
func AgeDays(now, then time.Time) int {
	d := now.Sub(then)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(float64(d) / float64(day)))
}

// IsRelative reports whether layout selects relative rendering.
func IsRelative(layout string) bool {
	layout = strings.TrimSpace(layout)
	return layout == "" || strings.EqualFold(layout, RelativeLayout)
}

// Format renders then either relative to now or with a Go reference layout.
func Format(now, then time.Time, layout string) string {
	if IsRelative(layout) {
		return Relative(now, then)
	}
	return then.Format(layout)
}
