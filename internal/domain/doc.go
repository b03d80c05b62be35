// Package domain contains the core entities of the assessment engine and
// their validation rules. Entities here are plain data with invariants;
// all I/O lives behind the store interfaces and all state transitions are
// computed by the adapt subpackage and applied by the orchestrator.
package domain
