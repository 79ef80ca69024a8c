// Package repository defines the data access interfaces for evalvault.
//
// This package provides the repository abstraction layer for persisting
// and retrieving domain entities. The actual implementation is in the
// sqlite subpackage.
//
// # Interfaces
//
// Users, Queries, Evaluations and Files each cover one table. Inspector
// covers the table-agnostic operations every repository shares: column
// introspection and row counting.
//
// # Error Taxonomy
//
// Every failing operation returns an *Error carrying one Kind: validation,
// conflict, not_found, storage_unavailable or integrity. Callers branch on
// the kind through the Is* predicates rather than matching message strings.
// Absent rows on single-row getters are not errors; those return (nil, nil).
//
// # SQLite Implementation
//
// The sqlite implementation provides a complete repository using SQLite
// with WAL mode for concurrency. It handles:
//
// - CRUD operations for all four entity tables
// - Enforcement of username uniqueness inside the insert transaction
// - The compound all-or-nothing evaluation+deliverables write
// - Existence checks for required references inside insert transactions
//
// # Testing
//
// The sqlite repository is extensively tested with in-memory databases
// to ensure data integrity and proper handling of edge cases.
package repository
