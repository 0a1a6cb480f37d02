// Package services contains the roster server's business logic: operator
// accounts and logins, events and registrations (with QR signature issue),
// attendance writes from door scanners, dashboard stats and CSV export.
//
// Services take a *sql.DB and a repomanager.RepositoryManager and build
// repositories per call, the same way inside or outside a transaction.
package services
