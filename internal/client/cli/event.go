package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
)

const timeLayout = "2006-01-02 15:04:05"

var errNoEvent = errors.New("no event selected, use 'use <eventID>'")

func (a *App) activeEvent() (string, error) {
	_, _, eventID := a.session()
	if eventID == "" {
		return "", errNoEvent
	}
	return eventID, nil
}

// Events lists the cached rosters and whether they can still be scanned.
func (a *App) Events(ctx context.Context) error {
	events, err := a.roster.Events(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		printlnFn("No rosters cached. Use 'download <eventID>'.")
		return nil
	}

	_, _, active := a.session()
	now := time.Now()
	for _, e := range events {
		state := "valid"
		if !e.IsValidAt(now) {
			state = "expired"
		}
		marker := " "
		if e.EventID == active {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %-12s %-30s %4d registrations, fetched %s, %s",
			marker, e.EventID, e.EventName, e.RecordCount, e.FetchedAt.Local().Format(timeLayout), state))
	}
	return nil
}

// Download replaces the cached roster of eventID with the server's copy and
// selects the event when none is selected yet.
func (a *App) Download(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("usage: download <eventID>")
	}

	n, err := a.roster.Download(ctx, eventID, "")
	if err != nil {
		if isUnavailable(err) {
			printlnFn("Server unavailable, the roster cannot be downloaded offline")
		}
		return err
	}
	printlnFn(fmt.Sprintf("Downloaded %d registrations for %s", n, eventID))

	if _, _, active := a.session(); active == "" {
		return a.Use(ctx, eventID)
	}
	return nil
}

// Use selects the event scans are checked against.
func (a *App) Use(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("usage: use <eventID>")
	}

	valid, err := a.roster.IsValid(ctx, eventID)
	if err != nil {
		return err
	}

	if err := a.meta.Set(ctx, metadata.KeyActiveEvent, []byte(eventID)); err != nil {
		return err
	}
	a.mu.Lock()
	a.eventID = eventID
	a.mu.Unlock()

	printlnFn("Active event:", eventID)
	if !valid {
		printlnFn(common.ErrStaleCache.Error())
	}
	return nil
}

// Roster prints the cached registrations of the active event.
func (a *App) Roster(ctx context.Context) error {
	eventID, err := a.activeEvent()
	if err != nil {
		return err
	}

	rows, err := a.roster.ListForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	for _, r := range rows {
		mark := "[ ]"
		if r.AttendanceMarked {
			mark = "[x]"
		}
		printlnFn(fmt.Sprintf("%s %-24s %-12s %s", mark, r.Name, r.OrbitID, r.College))
	}
	printlnFn(fmt.Sprintf("%d registrations", len(rows)))
	return nil
}

// Stats prints checked-in and total counts of the active event and when a
// sync last pushed anything.
func (a *App) Stats(ctx context.Context) error {
	eventID, err := a.activeEvent()
	if err != nil {
		return err
	}

	s, err := a.roster.Stats(ctx, eventID)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s: %d/%d checked in, %d waiting for sync", eventID, s.Marked, s.Total, s.PendingQueue))

	last, err := metadata.GetString(ctx, a.meta, metadata.KeyLastSyncAt)
	if err != nil {
		return err
	}
	if last == "" {
		last = "never"
	}
	printlnFn("Last sync: " + last)
	return nil
}
