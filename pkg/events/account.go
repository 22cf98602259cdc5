package events

// SettingsUpdatedPayloadV1 follows a settings change. CapacityChanged tells
// the queue module to rebalance pending rounds.
type SettingsUpdatedPayloadV1 struct {
	UserID           int64 `json:"user_id"`
	Capacity         int   `json:"capacity"`
	CapacityChanged  bool  `json:"capacity_changed"`
	FastTrackEnabled bool  `json:"fast_track_enabled"`
}
