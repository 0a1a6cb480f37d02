package models

import "time"

// SyncStatus is the lifecycle state of a queued attendance mutation.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
)

// SyncQueueEntry is one local check-in waiting to be pushed to the remote
// store. At most one entry per registration is pending at a time.
type SyncQueueEntry struct {
	ID             string
	RegistrationID string
	EventID        string
	MarkedAt       time.Time
	MarkedBy       string
	Status         SyncStatus
	Attempts       int
	LastError      string
	SyncedAt       *time.Time
}

// SyncReport summarises one drain of the queue.
type SyncReport struct {
	Synced int
	Failed int
}

// AttendanceUpdate is what the reconciler pushes for one entry.
type AttendanceUpdate struct {
	EventID        string
	RegistrationID string
	Attended       bool
	CheckInTime    time.Time
	CheckedInBy    string
}

// RemoteRegistration is a roster row as returned by the remote store.
type RemoteRegistration struct {
	RegistrationID string
	QRSignature    string
	OrbitID        string
	EventID        string
	Name           string
	Email          string
	College        string
}

// Roster is the result of one remote fetch.
type Roster struct {
	EventID       string
	EventName     string
	Registrations []RemoteRegistration
}
