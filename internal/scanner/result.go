package scanner

import "github.com/olegrjumin/techprint/internal/detector"

// TimestampLayout is ISO-8601 UTC with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ScanMetadata describes what was fetched during a scan
type ScanMetadata struct {
	TargetURL              string   `json:"target_url"`               // URL as given by the caller
	ResolvedURL            string   `json:"resolved_url"`             // URL after redirects
	ScanTimestampUTC       string   `json:"scan_timestamp_utc"`       // When the scan started
	StatusCode             int      `json:"status_code"`              // Status of the page response
	ScriptSourcesAttempted []string `json:"script_sources_attempted"` // Resolved script URLs requested
	ScriptSourcesFetched   []string `json:"script_sources_fetched"`   // Subset that yielded content
}

// ScanResult is the report returned for one scan. It holds no references
// into fetch state.
type ScanResult struct {
	ScanMetadata         ScanMetadata         `json:"scan_metadata"`
	DetectedTechnologies []detector.Detection `json:"detected_technologies"`
}
