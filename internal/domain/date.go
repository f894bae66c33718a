package domain

import "time"

// DisplayDateLayout renders dates the way clients of this API expect them, e.g. "Sun Jan 01 2023".
const DisplayDateLayout = "Mon Jan 02 2006"

// CalendarDate truncates t to midnight UTC of its UTC calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t with DisplayDateLayout in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DisplayDateLayout)
}
