package config

import "time"

// Committee Feed Constants
const (
	// HouseFeedURLFormat is the docs.house.gov RSS endpoint; %s is the committee code
	HouseFeedURLFormat = "https://docs.house.gov/Committee/RSS.ashx?Code=%s"

	// FullCommitteeCodeSuffix is appended to house_committee_id for full committees
	FullCommitteeCodeSuffix = "00"

	// DefaultFeedTimezone is the zone meeting dates in House feeds are written in
	DefaultFeedTimezone = "America/New_York"

	// DefaultCommitteesListURL is the @unitedstates current committee list
	DefaultCommitteesListURL = "https://theunitedstates.io/congress-legislators/committees-current.yaml"
)

// Video Catalog Constants
const (
	// VideoPageSize is the number of playlist items requested per page
	VideoPageSize = 50

	// MaxVideoPages caps how far back the uploads playlist is walked (15 x 50 = 750 videos)
	MaxVideoPages = 15

	// PresumedSearchWindow is the half-width of the published-date window around a meeting
	PresumedSearchWindow = 4 * 7 * 24 * time.Hour

	// PresumedSearchResults is the number of search hits requested per event
	PresumedSearchResults = 5
)

// Storage Constants
const (
	// DefaultRedisAddr is used when REDIS_ADDR is not set
	DefaultRedisAddr = "localhost:6379"

	// DefaultRedisPrefix namespaces every key written by the store
	DefaultRedisPrefix = "hearingwatch"
)

// Export Constants
const (
	// DefaultExportPath is where the CSV report is written locally
	DefaultExportPath = "tmp/export.csv"

	// ExportObjectName is the S3 object name under S3_PREFIX
	ExportObjectName = "export.csv"
)

// Runtime Constants
const (
	// DefaultHTTPTimeout bounds every outbound feed and document request
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultPort is the serve-mode listen port
	DefaultPort = "8080"

	// DefaultKafkaTopic receives committee and run notifications
	DefaultKafkaTopic = "hearingwatch-events"
)
