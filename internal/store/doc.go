// Package store defines the persistence contracts the engine consumes.
// Implementations live under internal/platform; the orchestrator and
// selection logic depend only on these interfaces, which keeps them
// testable with in-memory fakes.
//
// Every store exposes WithTx so a service can run several operations in one
// database transaction; see RunInTransaction.
package store
