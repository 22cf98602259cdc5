// Package events declares the topics and payloads exchanged over the event bus.
package events

import "time"

const (
	QueueEntriesAssignedV1   = "queue.entries.assigned.v1"
	QueueEntryMovedV1        = "queue.entry.moved.v1"
	QueueConsolidatedV1      = "queue.consolidated.v1"
	QueueRoundPromotedV1     = "queue.round.promoted.v1"
	QueueRoundClearedV1      = "queue.round.cleared.v1"
	QueueArchiveDeletedV1    = "queue.archive.deleted.v1"
	QueueArchivePurgedV1     = "queue.archive.purged.v1"
	AccountSettingsUpdatedV1 = "account.settings.updated.v1"
)

// EntriesAssignedPayloadV1 follows a committed batch submission or import.
type EntriesAssignedPayloadV1 struct {
	UserID     int64    `json:"user_id"`
	EntryIDs   []string `json:"entry_ids"`
	RoundCount int      `json:"round_count"`
	Source     string   `json:"source"`
}

// EntryMovedPayloadV1 follows a manual move.
type EntryMovedPayloadV1 struct {
	UserID       int64  `json:"user_id"`
	SourceRound  string `json:"source_round"`
	DestRound    string `json:"dest_round"`
	Consolidated bool   `json:"consolidated"`
}

// ConsolidatedPayloadV1 follows a repack of pending rounds.
type ConsolidatedPayloadV1 struct {
	UserID     int64  `json:"user_id"`
	RoundCount int    `json:"round_count"`
	Capacity   int    `json:"capacity"`
	Reason     string `json:"reason"`
}

// RoundPromotedPayloadV1 follows a promotion. DemotedRound is empty when no
// round was current before.
type RoundPromotedPayloadV1 struct {
	UserID       int64  `json:"user_id"`
	RoundID      string `json:"round_id"`
	DemotedRound string `json:"demoted_round,omitempty"`
}

// RoundClearedPayloadV1 follows archiving the current round.
type RoundClearedPayloadV1 struct {
	UserID     int64     `json:"user_id"`
	RoundID    string    `json:"round_id"`
	EntryCount int       `json:"entry_count"`
	ArchivedAt time.Time `json:"archived_at"`
}

// ArchiveDeletedPayloadV1 follows deleting one or all archived rounds.
type ArchiveDeletedPayloadV1 struct {
	UserID  int64  `json:"user_id"`
	RoundID string `json:"round_id,omitempty"`
	Deleted int64  `json:"deleted"`
}

// ArchivePurgedPayloadV1 follows a retention purge across all users.
type ArchivePurgedPayloadV1 struct {
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
}
