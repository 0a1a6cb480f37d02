package cli

import (
	"context"
	"fmt"
)

// Sync pushes pending marks to the server now.
func (a *App) Sync(ctx context.Context) error {
	if !a.isOnline() {
		printlnFn("Offline, trying anyway...")
	}

	report, err := a.reconciler.SyncPending(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Synced %d, failed %d", report.Synced, report.Failed))
	return nil
}

// Cleanup drops expired rosters and old synced queue entries.
func (a *App) Cleanup(ctx context.Context) error {
	events, err := a.lifecycle.ClearExpiredCaches(ctx)
	if err != nil {
		return err
	}
	entries, err := a.lifecycle.ClearOldSyncedEntries(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Removed %d expired rosters and %d synced entries", events, entries))
	return nil
}
