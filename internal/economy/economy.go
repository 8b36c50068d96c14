// Package economy implements the coin ledger: likes, matches, daily bonus,
// boosts, viewer unlocks, gifts, grants and referral payouts. Every
// operation mutates a document the caller obtained inside storage.Mutate,
// so each is atomic from the caller's perspective.
package economy

import (
	"errors"
	"time"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/models"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyLiked      = errors.New("already liked")
	ErrSelfLike          = errors.New("cannot like yourself")
	ErrBadAmount         = errors.New("amount must be a positive number")
	ErrSelfGift          = errors.New("cannot gift coins to yourself")
)

// LikeResult reports what a like produced.
type LikeResult struct {
	Matched bool
	Match   *models.Match
}

// Like charges the liker and registers the like. A reciprocal like creates
// exactly one match per unordered pair. No partial charge: any rejection
// leaves both users untouched.
func Like(doc *models.Document, likerID, targetID int64, now time.Time) (*LikeResult, error) {
	if likerID == targetID {
		return nil, ErrSelfLike
	}
	liker, ok := doc.User(likerID)
	if !ok {
		return nil, ErrNotFound
	}
	target, ok := doc.User(targetID)
	if !ok {
		return nil, ErrNotFound
	}
	if liker.HasLiked(targetID) {
		return nil, ErrAlreadyLiked
	}
	if liker.Coins < config.LikeCost {
		return nil, ErrInsufficientCoins
	}

	liker.Coins -= config.LikeCost
	liker.Likes = append(liker.Likes, targetID)

	if !target.HasLiked(likerID) {
		return &LikeResult{}, nil
	}

	// Mutual like. Guard against a duplicate record for the pair in case a
	// like slipped through twice historically.
	if m, ok := doc.MatchBetween(likerID, targetID); ok {
		return &LikeResult{Matched: true, Match: m}, nil
	}
	m := models.NewMatch(likerID, targetID, now)
	doc.Matches[m.ID] = m
	if !liker.MatchedWith(targetID) {
		liker.Matches = append(liker.Matches, targetID)
	}
	if !target.MatchedWith(likerID) {
		target.Matches = append(target.Matches, likerID)
	}
	return &LikeResult{Matched: true, Match: m}, nil
}

// DailyResult reports a bonus claim: Granted is the amount credited, Wait
// is the remaining time when the claim came too early.
type DailyResult struct {
	Granted int64
	Wait    time.Duration
}

// ClaimDaily grants the daily bonus once per rolling 24-hour window.
func ClaimDaily(doc *models.Document, userID int64, now time.Time) (*DailyResult, error) {
	u, ok := doc.User(userID)
	if !ok {
		return nil, ErrNotFound
	}
	if u.LastDailyAt != nil {
		next := u.LastDailyAt.Add(config.DailyWindow)
		if now.Before(next) {
			return &DailyResult{Wait: next.Sub(now)}, nil
		}
	}
	u.Coins += config.DailyBonus
	claimed := now
	u.LastDailyAt = &claimed
	return &DailyResult{Granted: config.DailyBonus}, nil
}

// Boost charges the boost cost and extends the boost expiry by the boost
// duration from whichever is later of now or the current expiry, so
// stacked boosts accumulate. Returns the new expiry.
func Boost(doc *models.Document, userID int64, now time.Time) (time.Time, error) {
	u, ok := doc.User(userID)
	if !ok {
		return time.Time{}, ErrNotFound
	}
	if u.Coins < config.BoostCost {
		return time.Time{}, ErrInsufficientCoins
	}
	u.Coins -= config.BoostCost

	base := now
	if u.BoostUntil != nil && u.BoostUntil.After(base) {
		base = *u.BoostUntil
	}
	until := base.Add(config.BoostDuration)
	u.BoostUntil = &until
	return until, nil
}

// UnlockViewers charges the unlock cost and returns up to the most recent
// viewer entries, most-recent-first. The charge applies even when the list
// is empty.
func UnlockViewers(doc *models.Document, userID int64) ([]models.Viewer, error) {
	u, ok := doc.User(userID)
	if !ok {
		return nil, ErrNotFound
	}
	if u.Coins < config.ViewersCost {
		return nil, ErrInsufficientCoins
	}
	u.Coins -= config.ViewersCost

	n := len(u.Viewers)
	if n > config.ViewersShown {
		n = config.ViewersShown
	}
	out := make([]models.Viewer, n)
	copy(out, u.Viewers[:n])
	return out, nil
}

// PayReferral pays the referrer reward on the referee's first completed
// profile. Paid at most once; returns the referrer id when a payout
// happened.
func PayReferral(doc *models.Document, refereeID int64) (int64, bool) {
	referee, ok := doc.User(refereeID)
	if !ok || referee.ReferrerID == 0 || referee.ReferralPaid {
		return 0, false
	}
	referrer, ok := doc.User(referee.ReferrerID)
	if !ok {
		return 0, false
	}
	referrer.Coins += config.ReferralReward
	referee.ReferralPaid = true
	return referrer.ID, true
}

// CheckGift validates a pending transfer at amount-entry time, before any
// confirmation prompt is shown.
func CheckGift(doc *models.Document, senderID, recipientID, amount int64) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	if senderID == recipientID {
		return ErrSelfGift
	}
	sender, ok := doc.User(senderID)
	if !ok {
		return ErrNotFound
	}
	if _, ok := doc.User(recipientID); !ok {
		return ErrNotFound
	}
	if sender.Coins < amount {
		return ErrInsufficientCoins
	}
	return nil
}

// Gift applies a confirmed transfer. Balances are re-read here, so a
// balance that dropped between confirmation and apply rejects the gift.
func Gift(doc *models.Document, senderID, recipientID, amount int64) error {
	if err := CheckGift(doc, senderID, recipientID, amount); err != nil {
		return err
	}
	sender, _ := doc.User(senderID)
	recipient, _ := doc.User(recipientID)
	sender.Coins -= amount
	recipient.Coins += amount
	return nil
}

// Grant credits coins unconditionally (admin operation, no balance check).
func Grant(doc *models.Document, targetID, amount int64) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	u, ok := doc.User(targetID)
	if !ok {
		return ErrNotFound
	}
	u.Coins += amount
	return nil
}
