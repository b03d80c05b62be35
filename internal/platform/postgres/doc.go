// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they run identically on a
// pooled connection or inside a transaction, and every implementation maps
// driver-level errors (no rows, unique violations) to the sentinel errors
// defined in internal/store.
package postgres
