package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/economy"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/metrics"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/moderation"
	"github.com/SM-TRIBE/bot/internal/profile"
	"github.com/SM-TRIBE/bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// role returns the caller's role from the current document.
func (s *BotService) role(chatID int64) string {
	return moderation.RoleOf(s.store.Load(), s.cfg.AdminID, chatID)
}

// openAdminConsole shows the console matching the caller's role.
func (s *BotService) openAdminConsole(chatID int64) {
	role := s.role(chatID)
	if role == models.RoleUser {
		s.reply(chatID, "This area is for moderators only.")
		return
	}
	title := "🛠 *Admin console*"
	if role == models.RoleSubAdmin {
		title = "🛠 *Moderator console*"
	}
	if _, err := s.sender.SendInline(chatID, title, adminConsoleKeyboard(role)); err != nil {
		s.log.Warn("send admin console", sl.Err(err))
	}
}

// handleAdminAction dispatches console buttons after a role check. Grant
// and broadcast stay admin-only; lookup and ban/unban are open to
// sub-admins as well.
func (s *BotService) handleAdminAction(chatID int64, messageID int, act Action) {
	role := s.role(chatID)
	if role == models.RoleUser {
		s.reply(chatID, "This area is for moderators only.")
		return
	}

	switch act.Kind {
	case ActionAdminLookup:
		s.setAdminPrompt(chatID, session.PromptLookup, "Send the user ID to look up.")
		return
	case ActionAdminBan:
		s.setAdminPrompt(chatID, session.PromptBan, "Send the user ID to ban.")
		return
	case ActionAdminUnban:
		s.setAdminPrompt(chatID, session.PromptUnban, "Send the user ID to unban.")
		return
	}

	if role != models.RoleAdmin {
		s.reply(chatID, "Only the admin can do that.")
		return
	}

	switch act.Kind {
	case ActionAdminStats:
		s.showStats(chatID)
	case ActionAdminUsersPage:
		s.showUserPage(chatID, messageID, act.Page)
	case ActionAdminReports:
		s.showOpenReports(chatID)
	case ActionAdminResolve:
		s.resolveReport(chatID, act.Value)
	case ActionAdminGrant:
		s.sessions.Set(chatID, &session.Session{
			Kind:  session.KindGrant,
			Grant: &session.GrantState{Step: session.GrantStepTarget},
		})
		s.reply(chatID, "Send the user ID to grant coins to.")
	case ActionAdminBroadcast:
		s.sessions.Set(chatID, &session.Session{Kind: session.KindBroadcast})
		s.reply(chatID, "Send the broadcast text, or /cancel to abort.")
	case ActionAdminPromote:
		s.setAdminPrompt(chatID, session.PromptPromote, "Send the user ID to promote to sub-admin.")
	case ActionAdminDemote:
		s.setAdminPrompt(chatID, session.PromptDemote, "Send the user ID to demote.")
	}
}

func (s *BotService) setAdminPrompt(chatID int64, p session.Prompt, text string) {
	s.sessions.Set(chatID, &session.Session{
		Kind:  session.KindAdminPrompt,
		Admin: &session.AdminPromptState{Prompt: p},
	})
	s.reply(chatID, text)
}

func (s *BotService) showStats(chatID int64) {
	st := moderation.Collect(s.store.Load())
	s.replyMarkdown(chatID, fmt.Sprintf(
		"📊 *Stats*\nUsers: `%d`\nMatches: `%d`\nReports: `%d` (`%d` open)",
		st.Users, st.Matches, st.Reports, st.Open))
}

// showUserPage lists one page of users, editing the console message in
// place when possible.
func (s *BotService) showUserPage(chatID int64, messageID, page int) {
	doc := s.store.Load()
	users, pages := moderation.UserPage(doc, page, config.UsersPageSize)

	var b strings.Builder
	b.WriteString("👥 *Users*\n")
	for _, u := range users {
		status := ""
		if u.Banned {
			status = " 🚫"
		}
		fmt.Fprintf(&b, "`%d` %s, %d%s\n", u.ID, u.Name, u.Age, status)
	}
	if len(users) == 0 {
		b.WriteString("No users yet.\n")
	}
	kb := pagerKeyboard(page, pages, adminUsersData)
	s.editOrResend(chatID, messageID, b.String(), &kb)
}

func (s *BotService) showOpenReports(chatID int64) {
	open := moderation.Open(s.store.Load())
	if len(open) == 0 {
		s.reply(chatID, "No open reports. 🎉")
		return
	}
	for _, r := range open {
		text := fmt.Sprintf("🚩 *Report* `%s`\nReporter: `%d`\nReported: `%d`\nFiled: %s\n\n%s",
			r.ID, r.ReporterID, r.ReportedID, r.CreatedAt.Format("Jan 2 15:04"), r.Reason)
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Resolve", adminResolveData(r.ID)),
			),
		)
		if _, err := s.sender.SendInline(chatID, text, kb); err != nil {
			s.log.Warn("send report", sl.Err(err))
		}
	}
}

func (s *BotService) resolveReport(chatID int64, reportID string) {
	var changed bool
	var opErr error
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		changed, opErr = moderation.Resolve(doc, reportID)
		return opErr
	})
	if opErr != nil {
		s.reply(chatID, "Report not found.")
		return
	}
	if err != nil {
		s.log.Error("persist report resolution", sl.Err(err))
	}
	if !changed {
		s.reply(chatID, "This report was already resolved.")
		return
	}
	s.reply(chatID, "Report resolved.")
}

// handleAdminPromptMessage serves the one-input prompts: lookup, ban,
// unban, promote, demote.
func (s *BotService) handleAdminPromptMessage(msg *tgbotapi.Message, st *session.AdminPromptState) {
	chatID := msg.Chat.ID
	role := s.role(chatID)
	if role == models.RoleUser {
		s.sessions.Clear(chatID)
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		s.reply(chatID, "That doesn't look like a user ID. Try again.")
		return
	}
	s.sessions.Clear(chatID)

	switch st.Prompt {
	case session.PromptLookup:
		doc := s.store.Load()
		u, ok := doc.User(targetID)
		if !ok {
			s.reply(chatID, "No user with that ID.")
			return
		}
		s.replyMarkdown(chatID, profile.Render(u, true, true))

	case session.PromptBan:
		s.setBan(chatID, targetID, true)

	case session.PromptUnban:
		s.setBan(chatID, targetID, false)

	case session.PromptPromote:
		if role != models.RoleAdmin {
			s.reply(chatID, "Only the admin can promote.")
			return
		}
		var added bool
		if err := s.store.Mutate([]int64{targetID}, func(doc *models.Document) error {
			added = doc.AddSubAdmin(targetID)
			return nil
		}); err != nil {
			s.log.Error("persist promotion", sl.Err(err))
		}
		if !added {
			s.replyMarkdown(chatID, fmt.Sprintf("`%d` is already a sub-admin.", targetID))
			return
		}
		s.replyMarkdown(chatID, fmt.Sprintf("`%d` is now a sub-admin.", targetID))

	case session.PromptDemote:
		if role != models.RoleAdmin {
			s.reply(chatID, "Only the admin can demote.")
			return
		}
		var removed bool
		if err := s.store.Mutate([]int64{targetID}, func(doc *models.Document) error {
			removed = doc.RemoveSubAdmin(targetID)
			return nil
		}); err != nil {
			s.log.Error("persist demotion", sl.Err(err))
		}
		if !removed {
			s.replyMarkdown(chatID, fmt.Sprintf("`%d` is not a sub-admin.", targetID))
			return
		}
		s.replyMarkdown(chatID, fmt.Sprintf("`%d` is no longer a sub-admin.", targetID))
	}
}

func (s *BotService) setBan(chatID, targetID int64, banned bool) {
	var changed bool
	var opErr error
	err := s.store.Mutate([]int64{targetID}, func(doc *models.Document) error {
		changed, opErr = moderation.SetBanned(doc, targetID, banned)
		return opErr
	})
	if opErr != nil {
		s.reply(chatID, "No user with that ID.")
		return
	}
	if err != nil {
		s.log.Error("persist ban flag", sl.Err(err))
	}

	verb := "banned"
	if !banned {
		verb = "unbanned"
	}
	if !changed {
		s.replyMarkdown(chatID, fmt.Sprintf("`%d` was already %s.", targetID, verb))
		return
	}
	s.replyMarkdown(chatID, fmt.Sprintf("`%d` has been %s.", targetID, verb))
}

// handleGrantMessage serves the two-step admin coin grant.
func (s *BotService) handleGrantMessage(msg *tgbotapi.Message, st *session.GrantState) {
	chatID := msg.Chat.ID
	if s.role(chatID) != models.RoleAdmin {
		s.sessions.Clear(chatID)
		return
	}

	switch st.Step {
	case session.GrantStepTarget:
		id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			s.reply(chatID, "That doesn't look like a user ID. Try again.")
			return
		}
		if _, ok := s.store.Load().User(id); !ok {
			s.reply(chatID, "No user with that ID. Try again.")
			return
		}
		st.TargetID = id
		st.Step = session.GrantStepAmount
		s.reply(chatID, "How many coins?")

	case session.GrantStepAmount:
		amount, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil || amount <= 0 {
			s.reply(chatID, "Send a positive whole number of coins.")
			return
		}
		s.sessions.Clear(chatID)

		var opErr error
		if err := s.store.Mutate([]int64{st.TargetID}, func(doc *models.Document) error {
			opErr = economy.Grant(doc, st.TargetID, amount)
			return opErr
		}); err != nil && opErr == nil {
			s.log.Error("persist grant", sl.Err(err))
		}
		if opErr != nil {
			s.reply(chatID, "No user with that ID any more.")
			return
		}
		s.replyMarkdown(chatID, fmt.Sprintf("💰 Granted `%d` coins to `%d`.", amount, st.TargetID))
		go s.replyMarkdown(st.TargetID, fmt.Sprintf("💰 An admin granted you `%d` coins!", amount))
	}
}

// runBroadcast sends text to every non-banned user, paced by the rate
// limiter, and reports the delivery tally. Failures are counted, never
// retried.
func (s *BotService) runBroadcast(chatID int64, text string) {
	if s.role(chatID) != models.RoleAdmin {
		s.sessions.Clear(chatID)
		return
	}
	s.sessions.Clear(chatID)
	if strings.TrimSpace(text) == "" {
		s.reply(chatID, "Broadcast cancelled: empty message.")
		return
	}

	ids := moderation.Broadcastable(s.store.Load())
	s.reply(chatID, fmt.Sprintf("Broadcasting to %d users...", len(ids)))

	var sent, failed int
	ctx := context.Background()
	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		if err := s.sender.SendMarkdown(id, text); err != nil {
			failed++
			metrics.BroadcastDeliveries.WithLabelValues("failed").Inc()
			s.log.Warn("broadcast delivery failed", slog.Int64("user", id), sl.Err(err))
			continue
		}
		sent++
		metrics.BroadcastDeliveries.WithLabelValues("sent").Inc()
	}
	s.replyMarkdown(chatID, fmt.Sprintf("📢 Broadcast done: `%d` delivered, `%d` failed.", sent, failed))
}
