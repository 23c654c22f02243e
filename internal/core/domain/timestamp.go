package domain

import "time"

// TimestampLayout is the fixed rendering used wherever a time enters a hash.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// NormalizeTime drops sub-millisecond precision and converts to UTC.
// Every timestamp must pass through here before it is hashed or persisted.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// FormatTime renders t in TimestampLayout after normalizing it.
func FormatTime(t time.Time) string {
	return NormalizeTime(t).Format(TimestampLayout)
}
