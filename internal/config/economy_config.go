package config

import "time"

const (
	// Coins
	SignupGrant         = 100
	ReferralSignupBonus = 25
	ReferralReward      = 50
	LikeCost            = 10
	DailyBonus          = 25
	BoostCost           = 50
	ViewersCost         = 15

	// Windows
	DailyWindow   = 24 * time.Hour
	BoostDuration = 24 * time.Hour

	// Limits
	ViewersCap   = 20
	ViewersShown = 10
	MinAge       = 18
	MaxAge       = 99

	// Admin
	UsersPageSize = 5

	// Broadcast pacing, one send per interval to stay under rate limits.
	BroadcastInterval = 100 * time.Millisecond
)
