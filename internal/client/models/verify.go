package models

import "time"

// VerifyStatus is the outcome shown to the door operator.
type VerifyStatus string

const (
	VerifyValid          VerifyStatus = "valid"
	VerifyAlreadyScanned VerifyStatus = "already_scanned"
	VerifyInvalid        VerifyStatus = "invalid"
)

// VerifyResult is returned for every scan. Reason is kept for logs only and
// must never be shown: it distinguishes an unknown pass from a pass for
// another event.
type VerifyResult struct {
	Status       VerifyStatus
	Message      string
	Registration *CachedRegistration
	MarkedAt     *time.Time
	Reason       error
}

// EventStats are the counts behind the door dashboard.
type EventStats struct {
	EventID      string
	Total        int
	Marked       int
	PendingQueue int
}
