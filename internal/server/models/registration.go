package models

import "time"

// Registration is the authoritative record of one attendee's pass. The random
// token behind QRSignature is never stored.
type Registration struct {
	ID          string
	EventID     string
	OrbitID     string
	Name        string
	Email       string
	College     string
	QRSignature string

	AttendanceStatus bool
	CheckInTime      *time.Time
	CheckedInBy      string

	CreatedAt time.Time
}

// NewRegistration is the admin input for registering an attendee. GovIDLast4
// only feeds the signature and is dropped afterwards.
type NewRegistration struct {
	OrbitID    string `json:"orbit_id" binding:"required"`
	GovIDLast4 string `json:"gov_id_last4" binding:"required,len=4"`
	FirstName  string `json:"first_name" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	College    string `json:"college"`
}

// CheckIn is the attendance write pushed by a door scanner.
type CheckIn struct {
	EventID        string
	RegistrationID string
	CheckInTime    time.Time
	CheckedInBy    string
}
