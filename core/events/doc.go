// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - DispatchEvent: a vehicle was committed to a call
//   - QueuedEvent: a call entered or re-entered the backlog
//   - PromotedEvent: vehicles became available again
//   - RejectedEvent: a malformed call was refused at ingestion
package events
