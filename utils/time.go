// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowFormat returns the current UTC time formatted according to the given layout
func UTCNowFormat(layout string) string {
	return UTCNow().Format(layout)
}

// DisplayNow returns the current time in the configured display time zone.
// Falls back to UTC when the zone database is unavailable.
func DisplayNow() time.Time {
	loc, err := time.LoadLocation(DisplayTimeZone)
	if err != nil {
		return UTCNow()
	}
	return time.Now().In(loc)
}
