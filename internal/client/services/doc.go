// Package services implements the scanner's check-in core on top of the local
// SQLite store and a client.RemoteStore:
//
//   - RosterService downloads an event roster into the local cache and
//     answers validity and listing questions about it.
//   - Verifier checks a scanned QR signature against the cache. It never
//     touches the network.
//   - AttendanceService marks a registration as attended and queues the
//     change for the remote store in one local transaction.
//   - Reconciler drains the queue to the remote store.
//   - LifecycleManager drops expired rosters and old synced queue entries.
//   - AuthService signs the door operator in, online or from the saved
//     session when the server is unreachable.
package services
