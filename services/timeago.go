package services

import (
	"fmt"
	"time"
)

// FormatTimeAgo renders a short relative age for display. The sub-day
// branches use elapsed time directly; everything from a day up uses the
// calendar-day difference.
func FormatTimeAgo(t, now time.Time) string {
	elapsed := now.Sub(t)

	if elapsed < time.Minute {
		return "Just now"
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(elapsed.Minutes()))
	}
	if elapsed < 24*time.Hour {
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := daysBetween(t, now)
	switch {
	case days <= 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := days / 365
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}
