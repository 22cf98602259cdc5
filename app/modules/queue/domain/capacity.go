package queuedomain

// DefaultCapacity applies when a user never configured games per round.
const DefaultCapacity = 4

// Settings is the per-user configuration the engine depends on.
type Settings struct {
	GamesPerRound    *int
	FastTrackEnabled bool
}

// CapacityPolicy maps settings to a round capacity.
type CapacityPolicy struct {
	// Default replaces DefaultCapacity when positive.
	Default int
}

// Capacity returns the per-round limit, never below 1.
func (p CapacityPolicy) Capacity(s Settings) int {
	if s.GamesPerRound == nil {
		if p.Default > 0 {
			return p.Default
		}
		return DefaultCapacity
	}
	if *s.GamesPerRound <= 0 {
		return 1
	}
	return *s.GamesPerRound
}

// Capacity applies the default policy.
func Capacity(s Settings) int { return CapacityPolicy{}.Capacity(s) }

// ValidateCapacity rejects non-positive capacities before any mutation.
func ValidateCapacity(capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	return nil
}
