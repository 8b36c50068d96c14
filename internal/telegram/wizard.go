package telegram

import (
	"log/slog"

	"github.com/SM-TRIBE/bot/internal/economy"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/profile"
	"github.com/SM-TRIBE/bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// startWizard opens the guided profile dialogue. The wizard works on a
// draft copy; nothing is persisted until the terminal step completes.
func (s *BotService) startWizard(chatID int64) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start first.")
		return
	}

	draft := *u
	draft.Photos = append([]string{}, u.Photos...)
	s.sessions.Set(chatID, &session.Session{
		Kind:   session.KindWizard,
		Wizard: &session.WizardState{Step: session.StepName, Draft: &draft},
	})
	s.reply(chatID, "What's your name?")
}

// handleWizardMessage advances the wizard on free-text or photo input.
// Invalid input re-prompts without moving the cursor.
func (s *BotService) handleWizardMessage(msg *tgbotapi.Message, st *session.WizardState) {
	chatID := msg.Chat.ID

	switch st.Step {
	case session.StepName:
		s.wizardApply(chatID, st, profile.FieldName, msg.Text, session.StepAge, "How old are you?")
	case session.StepAge:
		s.wizardApply(chatID, st, profile.FieldAge, msg.Text, session.StepGender, "")
		if st.Step == session.StepGender {
			s.promptGender(chatID)
		}
	case session.StepGender:
		// Gender arrives via buttons, not text.
		s.promptGender(chatID)
	case session.StepCity:
		s.wizardApply(chatID, st, profile.FieldCity, msg.Text, session.StepInterests,
			"List your interests, separated by commas.")
	case session.StepInterests:
		s.wizardApply(chatID, st, profile.FieldInterests, msg.Text, session.StepPhotos, "")
		if st.Step == session.StepPhotos {
			s.promptPhotos(chatID, st)
		}
	case session.StepPhotos:
		s.handleWizardPhoto(msg, st)
	}
}

// wizardApply validates one step's input and advances on success.
func (s *BotService) wizardApply(chatID int64, st *session.WizardState, field, raw string, next session.WizardStep, nextPrompt string) {
	if err := profile.ApplyField(st.Draft, field, raw); err != nil {
		s.reply(chatID, err.Error()+" Try again.")
		return
	}
	st.Step = next
	if nextPrompt != "" {
		s.reply(chatID, nextPrompt)
	}
}

func (s *BotService) promptGender(chatID int64) {
	if _, err := s.sender.SendInline(chatID, "Pick your gender:", genderKeyboard()); err != nil {
		s.log.Warn("send gender prompt", sl.Err(err))
	}
}

func (s *BotService) promptPhotos(chatID int64, st *session.WizardState) {
	text := "Send me your photos (at least one). Press Done when finished."
	if len(st.Draft.Photos) > 0 {
		text = "Send more photos, or press Done."
	}
	if _, err := s.sender.SendInline(chatID, text, photosDoneKeyboard()); err != nil {
		s.log.Warn("send photos prompt", sl.Err(err))
	}
}

func (s *BotService) handleWizardGender(chatID int64, st *session.WizardState, gender string) {
	if st.Step != session.StepGender {
		return
	}
	if err := profile.ApplyField(st.Draft, profile.FieldGender, gender); err != nil {
		s.promptGender(chatID)
		return
	}
	st.Step = session.StepCity
	s.reply(chatID, "Which city do you live in?")
}

func (s *BotService) handleWizardPhoto(msg *tgbotapi.Message, st *session.WizardState) {
	chatID := msg.Chat.ID
	if msg.Photo == nil {
		s.promptPhotos(chatID, st)
		return
	}
	// Telegram sends several sizes; keep the largest.
	largest := msg.Photo[len(msg.Photo)-1]
	st.Draft.Photos = append(st.Draft.Photos, largest.FileID)
	s.promptPhotos(chatID, st)
}

// handlePhotosDone serves the Done button for both the wizard's terminal
// step and the photo re-collection edit.
func (s *BotService) handlePhotosDone(chatID int64) {
	sess, ok := s.sessions.Get(chatID)
	if !ok {
		return
	}
	switch sess.Kind {
	case session.KindWizard:
		s.finishWizard(chatID, sess.Wizard)
	case session.KindEditField:
		s.finishPhotoEdit(chatID, sess.Edit)
	}
}

// finishWizard validates the assembled draft, persists it, pays the
// referral and notifies the admin about the new profile.
func (s *BotService) finishWizard(chatID int64, st *session.WizardState) {
	if st.Step != session.StepPhotos {
		return
	}
	if len(st.Draft.Photos) == 0 {
		s.reply(chatID, "At least one photo is required.")
		return
	}
	if err := profile.Validate(st.Draft); err != nil {
		s.log.Warn("wizard draft invalid", slog.Int64("user", chatID), sl.Err(err))
		s.reply(chatID, "Something is off with your profile, let's start over. What's your name?")
		st.Step = session.StepName
		return
	}

	// The referrer's id is needed up front so their lock is held too.
	var referrerID int64
	if u, ok := s.store.Load().User(chatID); ok {
		referrerID = u.ReferrerID
	}

	keys := []int64{chatID}
	if referrerID != 0 {
		keys = append(keys, referrerID)
	}

	var paidReferrer int64
	var firstCompletion bool
	err := s.store.Mutate(keys, func(doc *models.Document) error {
		u, ok := doc.User(chatID)
		if !ok {
			return nil
		}
		u.Name = st.Draft.Name
		u.Age = st.Draft.Age
		u.Gender = st.Draft.Gender
		u.City = st.Draft.City
		u.Interests = st.Draft.Interests
		u.Photos = st.Draft.Photos
		firstCompletion = !u.Complete
		u.Complete = true

		if id, paid := economy.PayReferral(doc, chatID); paid {
			paidReferrer = id
		}
		return nil
	})
	if err != nil {
		s.log.Error("persist profile", slog.Int64("user", chatID), sl.Err(err))
	}
	s.sessions.Clear(chatID)

	doc := s.store.Load()
	u, _ := doc.User(chatID)
	if u == nil {
		return
	}
	s.replyMarkdown(chatID, "✅ Your profile is ready!\n\n"+profile.Render(u, true, false))

	// Referrer payout and admin heads-up are delivered out of band.
	if paidReferrer != 0 {
		go s.reply(paidReferrer, "🎉 Someone you invited completed their profile. You earned 50 coins!")
	}
	if firstCompletion && chatID != s.cfg.AdminID {
		go s.replyMarkdown(s.cfg.AdminID, "🆕 New profile:\n\n"+profile.Render(u, false, true))
	}
}

// startEditField opens a single-field edit. Photos re-enter a collection
// state; every other field takes one free-text (or button) input.
func (s *BotService) startEditField(chatID int64, field string) {
	if field == "photos" {
		s.sessions.Set(chatID, &session.Session{
			Kind: session.KindEditField,
			Edit: &session.EditState{Field: field, Photos: []string{}},
		})
		if _, err := s.sender.SendInline(chatID, "Send the new photos, then press Done.", photosDoneKeyboard()); err != nil {
			s.log.Warn("send photo edit prompt", sl.Err(err))
		}
		return
	}

	s.sessions.Set(chatID, &session.Session{
		Kind: session.KindEditField,
		Edit: &session.EditState{Field: field},
	})
	if field == profile.FieldGender {
		s.promptGender(chatID)
		return
	}
	s.reply(chatID, "Send the new value for "+field+".")
}

func (s *BotService) handleEditMessage(msg *tgbotapi.Message, st *session.EditState) {
	chatID := msg.Chat.ID
	if st.Field == "photos" {
		if msg.Photo == nil {
			s.reply(chatID, "Send a photo, or press Done.")
			return
		}
		largest := msg.Photo[len(msg.Photo)-1]
		st.Photos = append(st.Photos, largest.FileID)
		if _, err := s.sender.SendInline(chatID, "Got it. More photos, or press Done.", photosDoneKeyboard()); err != nil {
			s.log.Warn("send photo edit prompt", sl.Err(err))
		}
		return
	}
	s.applyEdit(chatID, st.Field, msg.Text)
}

// applyEdit validates and persists one field, then re-renders the profile.
func (s *BotService) applyEdit(chatID int64, field, raw string) {
	var applyErr error
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		u, ok := doc.User(chatID)
		if !ok {
			applyErr = economy.ErrNotFound
			return economy.ErrNotFound
		}
		applyErr = profile.ApplyField(u, field, raw)
		return applyErr
	})
	if applyErr != nil {
		// Validation failed: corrective prompt, the session stays open.
		s.reply(chatID, applyErr.Error()+" Try again.")
		return
	}
	if err != nil {
		s.log.Error("persist edit", slog.Int64("user", chatID), sl.Err(err))
	}
	s.sessions.Clear(chatID)
	s.showOwnProfile(chatID)
}

func (s *BotService) finishPhotoEdit(chatID int64, st *session.EditState) {
	if len(st.Photos) == 0 {
		s.reply(chatID, "At least one photo is required.")
		return
	}
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		u, ok := doc.User(chatID)
		if !ok {
			return economy.ErrNotFound
		}
		u.Photos = st.Photos
		return nil
	})
	if err != nil {
		s.log.Error("persist photos", slog.Int64("user", chatID), sl.Err(err))
	}
	s.sessions.Clear(chatID)
	s.showOwnProfile(chatID)
}
