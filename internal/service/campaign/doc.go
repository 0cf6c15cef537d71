// Package campaign implements campaign event tracking and metrics.
//
// The tracker records one event per (campaign, contact, event type) and
// bumps the matching counter only when the event is new, so replays from
// webhooks or the tracking queue are harmless. Metrics, the cross-campaign
// summary and the timeline are computed from those counters and events.
// Idempotence rests on the storage uniqueness constraint; this package
// takes no locks of its own.
//
// Repository implementations live in repository/postgres/.
package campaign
