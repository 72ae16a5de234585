package domain

// ChallengeDifficulty grades a daily challenge.
type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge is a daily task definition. Per-user, per-day completion state
// lives in ChallengeCompletion rows keyed by calendar date.
type Challenge struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	ChallengeType    ActionKind          `json:"challenge_type"`
	RequirementValue int                 `json:"requirement_value"`
	XPReward         int64               `json:"xp_reward"`
	IconName         string              `json:"icon_name"`
	Difficulty       ChallengeDifficulty `json:"difficulty"`
	Active           bool                `json:"active"`
}

// ChallengeCompletion tracks one user's progress on one challenge for one day.
// RewardClaimed flips false→true exactly once.
type ChallengeCompletion struct {
	UserID        string `json:"user_id"`
	ChallengeID   string `json:"challenge_id"`
	CompletedAt   string `json:"completed_at"` // calendar date
	Progress      int    `json:"progress"`     // clamped to RequirementValue
	IsCompleted   bool   `json:"is_completed"`
	RewardClaimed bool   `json:"reward_claimed"`
}

// ChallengeWithProgress joins a challenge with today's completion state.
type ChallengeWithProgress struct {
	Challenge
	Progress      int  `json:"progress"`
	IsCompleted   bool `json:"is_completed"`
	RewardClaimed bool `json:"reward_claimed"`
}

// ClaimResult is the outcome of a reward claim attempt.
type ClaimResult struct {
	Success   bool  `json:"success"`
	XPAwarded int64 `json:"xp_awarded"`
}
