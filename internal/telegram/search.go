package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/economy"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/moderation"
	"github.com/SM-TRIBE/bot/internal/profile"
	"github.com/SM-TRIBE/bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startSearch opens the criteria-collection dialogue.
func (s *BotService) startSearch(chatID int64) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if !u.Complete {
		s.reply(chatID, "Finish your profile first.")
		s.startWizard(chatID)
		return
	}

	s.sessions.Set(chatID, &session.Session{
		Kind:   session.KindSearch,
		Search: &session.SearchState{Step: session.SearchStepGender},
	})
	if _, err := s.sender.SendInline(chatID, "Who are you looking for?", genderKeyboard()); err != nil {
		s.log.Warn("send search prompt", sl.Err(err))
	}
}

func (s *BotService) handleSearchGender(chatID int64, st *session.SearchState, gender string) {
	if st.Step != session.SearchStepGender {
		return
	}
	st.Criteria.Gender = gender
	st.Step = session.SearchStepAge
	if _, err := s.sender.SendInline(chatID, "Which age range?", ageBucketKeyboard()); err != nil {
		s.log.Warn("send age prompt", sl.Err(err))
	}
}

func (s *BotService) handleAgeBucketChoice(chatID int64, index int) {
	sess, ok := s.sessions.Get(chatID)
	if !ok || sess.Kind != session.KindSearch {
		return
	}
	st := sess.Search
	if st.Step != session.SearchStepAge {
		return
	}
	bucket, ok := discovery.BucketAt(index)
	if !ok {
		return
	}
	st.Criteria.Bucket = bucket
	st.Step = session.SearchStepInterests
	s.reply(chatID, "Any interests? Send them comma-separated, or \"-\" to skip.")
}

// handleSearchMessage takes the final, optional interests criterion and
// executes the search.
func (s *BotService) handleSearchMessage(msg *tgbotapi.Message, st *session.SearchState) {
	chatID := msg.Chat.ID
	if st.Step != session.SearchStepInterests {
		return
	}
	raw := strings.TrimSpace(msg.Text)
	if raw != "-" && raw != "" {
		st.Criteria.Interests = profile.SplitList(raw)
	}
	s.sessions.Clear(chatID)

	doc := s.store.Load()
	ids := discovery.Execute(doc, chatID, st.Criteria, s.now())
	s.disco.Put(chatID, ids)
	if len(ids) == 0 {
		s.reply(chatID, "Nobody matches your search right now. Try wider criteria later.")
		return
	}
	s.replyMarkdown(chatID, fmt.Sprintf("Found *%d* profiles.", len(ids)))
	s.showCandidate(chatID, ids[0])
}

// showCandidate renders one discovery card. Showing a profile records the
// searcher in the candidate's viewers list, independent of liking.
func (s *BotService) showCandidate(chatID, targetID int64) {
	var card string
	var photo string
	err := s.store.Mutate([]int64{targetID}, func(doc *models.Document) error {
		target, ok := doc.User(targetID)
		if !ok {
			return economy.ErrNotFound
		}
		target.RecordViewer(chatID, s.now(), config.ViewersCap)
		card = profile.Render(target, false, false)
		if len(target.Photos) > 0 {
			photo = target.Photos[0]
		}
		return nil
	})
	if err != nil {
		s.reply(chatID, "This profile is no longer available.")
		return
	}

	kb := candidateKeyboard(targetID)
	if photo != "" {
		if err := s.sender.SendPhoto(chatID, photo, card, &kb); err != nil {
			s.log.Warn("send candidate photo", slog.Int64("user", chatID), sl.Err(err))
		}
		return
	}
	if _, err := s.sender.SendInline(chatID, card, kb); err != nil {
		s.log.Warn("send candidate", slog.Int64("user", chatID), sl.Err(err))
	}
}

// handleNav moves the search cursor; both ends clamp with a boundary note.
func (s *BotService) handleNav(chatID int64, dir discovery.Direction) {
	id, err := s.disco.Advance(chatID, dir)
	switch {
	case errors.Is(err, discovery.ErrNoResults):
		s.reply(chatID, "No active search. Use 🔍 Search to start one.")
	case errors.Is(err, discovery.ErrBoundary):
		s.reply(chatID, "No more profiles in this direction.")
	default:
		s.showCandidate(chatID, id)
	}
}

// handleLike charges the like and detects a mutual match.
func (s *BotService) handleLike(chatID, targetID int64) {
	var res *economy.LikeResult
	var likeErr error
	err := s.store.Mutate([]int64{chatID, targetID}, func(doc *models.Document) error {
		res, likeErr = economy.Like(doc, chatID, targetID, s.now())
		return likeErr
	})
	if likeErr != nil {
		switch {
		case errors.Is(likeErr, economy.ErrAlreadyLiked):
			s.reply(chatID, "You already liked this profile.")
		case errors.Is(likeErr, economy.ErrInsufficientCoins):
			s.replyMarkdown(chatID, fmt.Sprintf("Not enough coins: a like costs `%d`. Claim your /daily bonus!", config.LikeCost))
		case errors.Is(likeErr, economy.ErrSelfLike):
			s.reply(chatID, "You cannot like yourself.")
		default:
			s.reply(chatID, "This profile is no longer available.")
		}
		return
	}
	if err != nil {
		s.log.Error("persist like", slog.Int64("user", chatID), sl.Err(err))
	}

	if !res.Matched {
		s.reply(chatID, "❤️ Like sent. If they like you back, it's a match!")
		return
	}

	doc := s.store.Load()
	liker, _ := doc.User(chatID)
	target, _ := doc.User(targetID)
	if target != nil {
		s.replyMarkdown(chatID, fmt.Sprintf("💘 It's a match with *%s*!", target.Name))
	}
	if liker != nil {
		s.replyMarkdown(targetID, fmt.Sprintf("💘 It's a match with *%s*!", liker.Name))
	}
}

// startReport collects a free-text reason for a report against targetID.
func (s *BotService) startReport(chatID, targetID int64) {
	s.sessions.Set(chatID, &session.Session{
		Kind:   session.KindReport,
		Report: &session.ReportState{TargetID: targetID},
	})
	s.reply(chatID, "Please describe the problem with this profile.")
}

func (s *BotService) handleReportReason(msg *tgbotapi.Message, st *session.ReportState) {
	chatID := msg.Chat.ID
	reason := strings.TrimSpace(msg.Text)
	if reason == "" {
		s.reply(chatID, "Please describe the problem in a few words.")
		return
	}

	err := s.store.Mutate([]int64{chatID, st.TargetID}, func(doc *models.Document) error {
		_, err := moderation.File(doc, chatID, st.TargetID, reason, s.now())
		return err
	})
	s.sessions.Clear(chatID)
	if err != nil {
		s.reply(chatID, "Could not file the report: the profile no longer exists.")
		return
	}
	s.reply(chatID, "Thank you, your report has been submitted.")
	go s.replyMarkdown(s.cfg.AdminID, fmt.Sprintf("🚩 New report against `%d`. Open the admin console to review.", st.TargetID))
}
