// Package models defines the scanner-side data models kept in the local
// SQLite store.
package models

import "time"

// CachedRegistration is one registration pass as downloaded from the remote
// store. AttendanceMarked only ever goes from false to true on the device.
type CachedRegistration struct {
	QRSignature    string
	RegistrationID string
	OrbitID        string
	EventID        string

	Name    string
	Email   string
	College string

	AttendanceMarked bool
	MarkedAt         *time.Time
	MarkedBy         string
}

// CacheMetadata describes the snapshot of one event's roster.
type CacheMetadata struct {
	EventID     string
	EventName   string
	FetchedAt   time.Time
	RecordCount int
	ExpiresAt   time.Time
}

// IsValidAt reports whether the snapshot may still be scanned against.
func (m *CacheMetadata) IsValidAt(now time.Time) bool {
	return now.Before(m.ExpiresAt)
}
