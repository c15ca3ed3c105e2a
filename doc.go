// Package approvals wires the human-in-the-loop approval lifecycle core: a
// request store (in-memory or Postgres), an expiry sweeper that reclaims
// overdue pending requests, and an event queue carrying cancellation signals
// to the workflow orchestrator.
package approvals
