package utils

import (
	"time"
)

// Ingestion constants
const (
	// MissingFieldPlaceholder substitutes number/color fields absent from an
	// upstream candidate
	MissingFieldPlaceholder = "N/A"

	// DefaultFetchTimeout bounds one upstream API call
	DefaultFetchTimeout = 15 * time.Second

	// DefaultIngestionInterval is the delay between scheduled cycles
	DefaultIngestionInterval = 60 * time.Second
)

// Read view constants
const (
	// DefaultLatestLimit is the number of results shown on the page
	DefaultLatestLimit = 100

	// MaxLatestLimit caps the limit query parameter on the results API
	MaxLatestLimit = 100

	// DisplayTimeZone is the zone used for the last-updated stamp on the page
	DisplayTimeZone = "Asia/Kolkata"

	// DisplayTimeFormat renders timestamps for the page footer
	DisplayTimeFormat = "2006-01-02 15:04:05 MST"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
