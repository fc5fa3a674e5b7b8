package models

import "time"

// DateLayout is the calendar-date format used for table keys and API payloads.
const DateLayout = "2006-01-02"

// ImageRecord is the image selected for a single (group, date). Written once
// per day by the selector and kept forever for recency lookups.
type ImageRecord struct {
	Group               string `json:"group"`
	Date                string `json:"date"`
	ObjectKey           string `json:"object_key"`
	GetRecents          bool   `json:"get_recents"`
	DaysUntilGetRecents int    `json:"days_until_get_recents"`
}

// UserReaction is the per-user state for a single (group, date).
type UserReaction struct {
	Reaction      Reaction `json:"reaction"`
	FavoriteImage string   `json:"favorite_image"`
}

// FormatDate renders a time as the table's calendar-date key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar-date key back into a time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
