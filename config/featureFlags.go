package config

import (
	"os"
	"strings"
)

// OfficerNotificationsEnabled gates the email fan-out to wildlife officers on
// report creation. Report persistence never depends on this flag.
//
// Set via env:
// - NOTIFY_OFFICERS=true
func OfficerNotificationsEnabled() bool {
	return boolFromEnv("NOTIFY_OFFICERS")
}

// VisionEnabled gates the Gemini identification endpoint. When disabled the
// endpoint returns 503 so clients can fall back to manual species entry.
//
// Set via env:
// - VISION_ENABLED=true
func VisionEnabled() bool {
	return boolFromEnv("VISION_ENABLED")
}

// ReportEventsEnabled gates Pub/Sub publishing of report change events.
// Single-instance deployments can run without a topic; the in-process feed
// hub still sees local writes.
//
// Set via env:
// - REPORT_EVENTS_ENABLED=true
func ReportEventsEnabled() bool {
	return boolFromEnv("REPORT_EVENTS_ENABLED")
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
