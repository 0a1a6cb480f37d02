// Package models defines server-side data models persisted in PostgreSQL.
package models

import "time"

type Event struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// EventStats are the dashboard counts for one event.
type EventStats struct {
	EventID   string `json:"event_id"`
	Total     int    `json:"total"`
	CheckedIn int    `json:"checked_in"`
}
