// Package service implements business logic for the l2domains application.
//
// This package coordinates between the HTTP handlers, the CLI and the
// repository layer: it validates snapshots, runs the broadcast-domain
// computation, stores the result and publishes events.
//
// # Services
//
// AnalysisService computes broadcast domains for a snapshot. Compute only
// computes; Analyze also persists the run under a fresh id. Stored runs can be
// listed, fetched, recomputed from their stored snapshot, and deleted.
//
// # Event System
//
// AnalysisService publishes events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE).
//
// # Design Principles
//
// - Services own business logic and validation
// - Repository pattern for data access
// - Event-driven for real-time updates
// - Context-aware for cancellation and timeouts
package service
