package domain

// StreakProtection is the per-user freeze inventory.
// Using a freeze decrements FreezesAvailable and increments FreezesUsed
// together — both or neither.
type StreakProtection struct {
	UserID           string `json:"user_id"`
	FreezesAvailable int    `json:"freezes_available"`
	FreezesUsed      int    `json:"freezes_used"`
}

// CanUseFreeze reports whether at least one freeze is in stock.
func (p StreakProtection) CanUseFreeze() bool {
	return p.FreezesAvailable > 0
}

// StreakStatus is the answer to "is this streak at risk".
// A streak is lost once 2+ full days pass with no activity and no freeze.
type StreakStatus struct {
	NeedsProtection bool `json:"needs_protection"`
	DaysUntilLoss   int  `json:"days_until_loss"`
	CanAutoProtect  bool `json:"can_auto_protect"`
}

// StreakUpdate is the result of recording a day of activity.
type StreakUpdate struct {
	CurrentStreak int  `json:"current_streak"`
	IsNewRecord   bool `json:"is_new_record"`
}
