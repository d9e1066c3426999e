// Package repository defines the data access interfaces for l2domains.
//
// This package provides the repository abstraction layer for persisting
// analysis runs. The actual implementation is in the sqlite subpackage.
//
// # Repository Interface
//
// The Repository interface stores one row per analysis, the domain membership
// of every Layer-3 relevant interface, and the input snapshot so a run can be
// inspected or recomputed later.
//
// # SQLite Implementation
//
// The sqlite implementation uses the pure-Go modernc.org/sqlite driver with WAL
// mode for concurrency. It handles:
//
// - Transactional saves of an analysis and its memberships
// - JSON serialization of the input snapshot
// - Newest-first listings without loading memberships
//
// # Schema Migration
//
// The sqlite repository creates its schema on startup if it does not exist.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
