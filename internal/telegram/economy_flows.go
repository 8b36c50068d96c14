package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/economy"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// claimDaily grants the daily bonus or reports the remaining wait.
func (s *BotService) claimDaily(chatID int64) {
	var res *economy.DailyResult
	var opErr error
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		res, opErr = economy.ClaimDaily(doc, chatID, s.now())
		return opErr
	})
	if opErr != nil {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if err != nil {
		s.log.Error("persist daily bonus", slog.Int64("user", chatID), sl.Err(err))
	}

	if res.Granted > 0 {
		s.replyMarkdown(chatID, fmt.Sprintf("🎁 Daily bonus claimed: `+%d` coins!", res.Granted))
		return
	}
	h := int(res.Wait.Hours())
	m := int(res.Wait.Minutes()) % 60
	s.reply(chatID, fmt.Sprintf("Come back in %dh %dm for your next bonus.", h, m))
}

// buyBoost purchases 24 hours of ranking priority; stacking accumulates.
func (s *BotService) buyBoost(chatID int64) {
	var until time.Time
	var opErr error
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		until, opErr = economy.Boost(doc, chatID, s.now())
		return opErr
	})
	if opErr != nil {
		if errors.Is(opErr, economy.ErrInsufficientCoins) {
			s.replyMarkdown(chatID, fmt.Sprintf("A boost costs `%d` coins. You don't have enough yet.", config.BoostCost))
			return
		}
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if err != nil {
		s.log.Error("persist boost", slog.Int64("user", chatID), sl.Err(err))
	}
	s.replyMarkdown(chatID, fmt.Sprintf("🚀 Boost active until *%s*. Boosted profiles show up first in search.",
		until.Format("Jan 2, 15:04")))
}

// showViewers charges the unlock fee and lists the most recent visitors.
func (s *BotService) showViewers(chatID int64) {
	var viewers []models.Viewer
	var opErr error
	var doc *models.Document
	err := s.store.Mutate([]int64{chatID}, func(d *models.Document) error {
		viewers, opErr = economy.UnlockViewers(d, chatID)
		doc = d
		return opErr
	})
	if opErr != nil {
		if errors.Is(opErr, economy.ErrInsufficientCoins) {
			s.replyMarkdown(chatID, fmt.Sprintf("Viewing your visitors costs `%d` coins.", config.ViewersCost))
			return
		}
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if err != nil {
		s.log.Error("persist viewers unlock", slog.Int64("user", chatID), sl.Err(err))
	}

	if len(viewers) == 0 {
		s.reply(chatID, "Nobody has viewed your profile yet.")
		return
	}
	var b strings.Builder
	b.WriteString("👀 *Recent visitors:*\n")
	for _, v := range viewers {
		name := "someone"
		if u, ok := doc.User(v.UserID); ok && u.Name != "" {
			name = u.Name
		}
		fmt.Fprintf(&b, "• %s, %s\n", name, v.SeenAt.Format("Jan 2 15:04"))
	}
	s.replyMarkdown(chatID, b.String())
}

// startGift opens the two-step transfer flow: recipient, then amount.
func (s *BotService) startGift(chatID int64) {
	s.sessions.Set(chatID, &session.Session{
		Kind: session.KindGift,
		Gift: &session.GiftState{Step: session.GiftStepRecipient},
	})
	s.reply(chatID, "Who do you want to gift coins to? Send their user ID.")
}

func (s *BotService) handleGiftMessage(msg *tgbotapi.Message, st *session.GiftState) {
	chatID := msg.Chat.ID
	switch st.Step {
	case session.GiftStepRecipient:
		id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			s.reply(chatID, "That doesn't look like a user ID. Try again.")
			return
		}
		doc := s.store.Load()
		if _, ok := doc.User(id); !ok {
			s.reply(chatID, "No user with that ID. Try again.")
			return
		}
		if id == chatID {
			s.reply(chatID, "You cannot gift coins to yourself.")
			return
		}
		st.RecipientID = id
		st.Step = session.GiftStepAmount
		s.reply(chatID, "How many coins?")

	case session.GiftStepAmount:
		amount, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil || amount <= 0 {
			s.reply(chatID, "Send a positive whole number of coins.")
			return
		}
		// All validation happens here, before any confirmation is shown.
		if err := economy.CheckGift(s.store.Load(), chatID, st.RecipientID, amount); err != nil {
			switch {
			case errors.Is(err, economy.ErrInsufficientCoins):
				s.reply(chatID, "You don't have that many coins. Send a smaller amount.")
			case errors.Is(err, economy.ErrNotFound):
				s.sessions.Clear(chatID)
				s.reply(chatID, "That user no longer exists. Gift cancelled.")
			default:
				s.reply(chatID, "Send a positive whole number of coins.")
			}
			return
		}
		st.Amount = amount
		st.Step = session.GiftStepConfirm
		text := fmt.Sprintf("Send `%d` coins to user `%d`?", amount, st.RecipientID)
		if _, err := s.sender.SendInline(chatID, text, giftConfirmKeyboard()); err != nil {
			s.log.Warn("send gift confirm", sl.Err(err))
		}

	case session.GiftStepConfirm:
		s.reply(chatID, "Use the Confirm or Cancel button above.")
	}
}

// confirmGift applies the transfer. Balances are re-read inside the
// mutation, so a meanwhile-spent balance rejects the gift.
func (s *BotService) confirmGift(chatID int64, messageID int) {
	sess, ok := s.sessions.Get(chatID)
	if !ok || sess.Kind != session.KindGift || sess.Gift.Step != session.GiftStepConfirm {
		return
	}
	st := sess.Gift
	s.sessions.Clear(chatID)
	// The confirmation prompt is stale once it is answered.
	if err := s.sender.DeleteMessage(chatID, messageID); err != nil {
		s.log.Warn("delete gift prompt", sl.Err(err))
	}

	var opErr error
	err := s.store.Mutate([]int64{chatID, st.RecipientID}, func(doc *models.Document) error {
		opErr = economy.Gift(doc, chatID, st.RecipientID, st.Amount)
		return opErr
	})
	if opErr != nil {
		if errors.Is(opErr, economy.ErrInsufficientCoins) {
			s.reply(chatID, "Your balance changed and no longer covers the gift. Nothing was sent.")
			return
		}
		s.reply(chatID, "The gift could not be applied.")
		return
	}
	if err != nil {
		s.log.Error("persist gift", slog.Int64("user", chatID), sl.Err(err))
	}

	s.replyMarkdown(chatID, fmt.Sprintf("💝 Sent `%d` coins to user `%d`.", st.Amount, st.RecipientID))
	go s.replyMarkdown(st.RecipientID, fmt.Sprintf("💝 You received `%d` coins as a gift!", st.Amount))
}

func (s *BotService) cancelGift(chatID int64, messageID int) {
	sess, ok := s.sessions.Get(chatID)
	if !ok || sess.Kind != session.KindGift {
		return
	}
	s.sessions.Clear(chatID)
	if err := s.sender.DeleteMessage(chatID, messageID); err != nil {
		s.log.Warn("delete gift prompt", sl.Err(err))
	}
	s.reply(chatID, "Gift cancelled.")
}

// showReferralLink shares the user's deep link and referral tally.
func (s *BotService) showReferralLink(chatID int64) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	referred := 0
	for _, other := range doc.Users {
		if other.ReferrerID == chatID {
			referred++
		}
	}
	link := fmt.Sprintf("https://t.me/%s?start=%s", s.botName, u.RefCode)
	s.replyMarkdown(chatID, fmt.Sprintf(
		"🔗 Your invite link:\n%s\n\nFriends joined so far: *%d*.\nYou earn `%d` coins for every friend who completes a profile; they start with `%d` bonus coins.",
		link, referred, config.ReferralReward, config.ReferralSignupBonus))
}

// showMatches renders one page of the user's matches.
func (s *BotService) showMatches(chatID int64, page int) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if len(u.Matches) == 0 {
		s.reply(chatID, "No matches yet. Keep searching!")
		return
	}

	size := config.UsersPageSize
	pages := (len(u.Matches) + size - 1) / size
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * size
	end := start + size
	if end > len(u.Matches) {
		end = len(u.Matches)
	}

	var b strings.Builder
	b.WriteString("❤️ *Your matches:*\n")
	for _, id := range u.Matches[start:end] {
		partner, ok := doc.User(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "• *%s*, %d, %s (ID `%d`)\n", partner.Name, partner.Age, partner.City, partner.ID)
	}
	if _, err := s.sender.SendInline(chatID, b.String(), pagerKeyboard(page, pages, matchesPageData)); err != nil {
		s.log.Warn("send matches", slog.Int64("user", chatID), sl.Err(err))
	}
}
