// Package handler implements HTTP request handlers for the l2domains API.
//
// # Handlers
//
// AnalysisHandler accepts snapshots, stores the computed broadcast domains and
// serves stored analyses. Middleware provides panic recovery, request logging,
// request metrics and a body size limit.
//
// # API Design
//
//	POST   /api/analyses                 upload a snapshot (YAML or JSON by Content-Type)
//	GET    /api/analyses                 list stored analyses
//	GET    /api/analyses/{id}            one analysis with its domains
//	DELETE /api/analyses/{id}            remove an analysis
//	GET    /api/analyses/{id}/domains    interface to domain map (?view=groups)
//	GET    /api/analyses/{id}/snapshot   the stored input
//	POST   /api/analyses/{id}/reanalyze  recompute from the stored input
//	GET    /api/events                   Server-Sent Events
//	GET    /metrics                      Prometheus exposition
//	GET    /healthz                      liveness
//
// # Response Format
//
// Analyses and snapshots are returned as JSON unless ?format=yaml or an
// Accept header asks for YAML. Error responses return JSON with
// {error, details}. Unknown analyses yield 404 and snapshots that fail
// validation yield 422.
package handler
