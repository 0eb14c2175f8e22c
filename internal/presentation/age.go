package presentation

import (
	"fmt"
	"time"
)

// RelativeAge describes how long before now t was: "Just now", "5 mins ago",
// "1 hour ago", "3 days ago", or the date for anything a week or older.
func RelativeAge(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "min") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	default:
		return t.Local().Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
