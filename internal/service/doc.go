// Package service implements the application layer of Blockbase.
//
// Service wraps the storage interface and adds the one concern storage
// does not have: telling the rest of the process that something changed.
// Every successful mutation publishes an Event on the EventBus; the SSE
// hub forwards those to connected viewers so a browser replaying a
// build's history refreshes live as new commits arrive.
//
// Note that a resubmitted commit id is a successful no-op at the storage
// layer; the service still publishes commit_created for it, which is
// harmless since payloads carry ids only and consumers re-fetch.
package service
