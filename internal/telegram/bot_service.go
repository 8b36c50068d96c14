package telegram

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/metrics"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/moderation"
	"github.com/SM-TRIBE/bot/internal/profile"
	"github.com/SM-TRIBE/bot/internal/session"
	"github.com/SM-TRIBE/bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const bannedMessage = "🚫 Your account is banned."

// BotService routes inbound updates to the flow handlers. One instance
// serves all users; per-user dialogue state lives in the session registry.
type BotService struct {
	log      *slog.Logger
	cfg      *config.Config
	sender   Sender
	store    storage.Store
	sessions *session.Registry
	disco    *discovery.Engine
	limiter  *rate.Limiter
	botName  string

	// now is swappable in tests.
	now func() time.Time
}

// NewBotService wires the router. botName is the bot's username, used to
// build referral deep links.
func NewBotService(log *slog.Logger, cfg *config.Config, sender Sender, store storage.Store,
	sessions *session.Registry, disco *discovery.Engine, botName string) *BotService {
	return &BotService{
		log:      log,
		cfg:      cfg,
		sender:   sender,
		store:    store,
		sessions: sessions,
		disco:    disco,
		limiter:  rate.NewLimiter(rate.Every(config.BroadcastInterval), 1),
		botName:  botName,
		now:      time.Now,
	}
}

// HandleUpdate processes one webhook update to completion.
func (s *BotService) HandleUpdate(update tgbotapi.Update) {
	metrics.UpdatesTotal.Inc()
	switch {
	case update.Message != nil:
		s.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		s.handleCallback(update.CallbackQuery)
	}
}

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := s.store.Load()

	// Banned users are rejected before anything else runs.
	if u, ok := doc.User(chatID); ok && u.Banned {
		s.reply(chatID, bannedMessage)
		return
	}

	if msg.IsCommand() {
		metrics.CommandsTotal.Inc()
		// Any top-level command cancels whatever flow was open, so a user
		// can never be trapped in a stale session.
		s.sessions.Clear(chatID)
		s.handleCommand(msg)
		return
	}

	if action, ok := ParseMenu(msg.Text); ok {
		// Menu selections are top level too.
		s.sessions.Clear(chatID)
		s.handleMenu(chatID, action)
		return
	}

	if sess, ok := s.sessions.Get(chatID); ok {
		s.dispatchSession(msg, sess)
		return
	}

	if _, ok := doc.User(chatID); !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	s.reply(chatID, "Pick an option from the menu, or send /help.")
}

func (s *BotService) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		s.handleStart(chatID, msg.CommandArguments())
	case "help":
		s.sendHelp(chatID)
	case "profile":
		s.showOwnProfile(chatID)
	case "search":
		s.startSearch(chatID)
	case "daily":
		s.claimDaily(chatID)
	case "balance":
		s.showBalance(chatID)
	case "admin":
		s.openAdminConsole(chatID)
	case "cancel":
		// The session was already cleared above; just confirm.
		s.reply(chatID, "Cancelled.")
	default:
		s.reply(chatID, "Unknown command. Send /help.")
	}
}

func (s *BotService) handleMenu(chatID int64, action MenuAction) {
	switch action {
	case MenuActionProfile:
		s.showOwnProfile(chatID)
	case MenuActionSearch:
		s.startSearch(chatID)
	case MenuActionDaily:
		s.claimDaily(chatID)
	case MenuActionBoost:
		s.buyBoost(chatID)
	case MenuActionViewers:
		s.showViewers(chatID)
	case MenuActionGift:
		s.startGift(chatID)
	case MenuActionMatches:
		s.showMatches(chatID, 0)
	case MenuActionReferral:
		s.showReferralLink(chatID)
	case MenuActionAdmin:
		s.openAdminConsole(chatID)
	}
}

// dispatchSession routes free-text (or photo) input to the open flow.
func (s *BotService) dispatchSession(msg *tgbotapi.Message, sess *session.Session) {
	switch sess.Kind {
	case session.KindWizard:
		s.handleWizardMessage(msg, sess.Wizard)
	case session.KindEditField:
		s.handleEditMessage(msg, sess.Edit)
	case session.KindSearch:
		s.handleSearchMessage(msg, sess.Search)
	case session.KindGift:
		s.handleGiftMessage(msg, sess.Gift)
	case session.KindReport:
		s.handleReportReason(msg, sess.Report)
	case session.KindBroadcast:
		s.runBroadcast(msg.Chat.ID, msg.Text)
	case session.KindGrant:
		s.handleGrantMessage(msg, sess.Grant)
	case session.KindAdminPrompt:
		s.handleAdminPromptMessage(msg, sess.Admin)
	}
}

func (s *BotService) handleCallback(cb *tgbotapi.CallbackQuery) {
	metrics.CallbacksTotal.Inc()
	if err := s.sender.AckCallback(cb.ID); err != nil {
		s.log.Warn("ack callback", sl.Err(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	doc := s.store.Load()
	if u, ok := doc.User(chatID); ok && u.Banned {
		s.reply(chatID, bannedMessage)
		return
	}

	act := ParseAction(cb.Data)
	switch act.Kind {
	case ActionGender:
		s.handleGenderChoice(chatID, act.Value)
	case ActionAgeBucket:
		s.handleAgeBucketChoice(chatID, act.Page)
	case ActionPhotosDone:
		s.handlePhotosDone(chatID)
	case ActionLike:
		s.handleLike(chatID, act.ID)
	case ActionNavNext:
		s.handleNav(chatID, discovery.Next)
	case ActionNavPrev:
		s.handleNav(chatID, discovery.Prev)
	case ActionReport:
		s.startReport(chatID, act.ID)
	case ActionEditField:
		s.startEditField(chatID, act.Value)
	case ActionGiftConfirm:
		s.confirmGift(chatID, cb.Message.MessageID)
	case ActionGiftCancel:
		s.cancelGift(chatID, cb.Message.MessageID)
	case ActionMatchesPage:
		s.showMatches(chatID, act.Page)
	case ActionAdminStats, ActionAdminUsersPage, ActionAdminReports, ActionAdminResolve,
		ActionAdminLookup, ActionAdminBan, ActionAdminUnban, ActionAdminGrant,
		ActionAdminBroadcast, ActionAdminPromote, ActionAdminDemote:
		s.handleAdminAction(chatID, cb.Message.MessageID, act)
	default:
		// Unknown payloads are acked and dropped.
	}
}

// handleGenderChoice serves both the wizard and the search criteria flow;
// the open session decides which one the button belongs to.
func (s *BotService) handleGenderChoice(chatID int64, gender string) {
	sess, ok := s.sessions.Get(chatID)
	if !ok {
		return
	}
	switch sess.Kind {
	case session.KindWizard:
		s.handleWizardGender(chatID, sess.Wizard, gender)
	case session.KindSearch:
		s.handleSearchGender(chatID, sess.Search, gender)
	case session.KindEditField:
		// A stale gender button must not hijack an edit of another field.
		if sess.Edit.Field == profile.FieldGender {
			s.applyEdit(chatID, profile.FieldGender, gender)
		}
	}
}

func (s *BotService) handleStart(chatID int64, refCode string) {
	var created bool
	err := s.store.Mutate([]int64{chatID}, func(doc *models.Document) error {
		created = profile.CreateShell(doc, chatID, refCode, s.now())
		return nil
	})
	if err != nil {
		s.log.Error("create shell", slog.Int64("user", chatID), sl.Err(err))
	}

	doc := s.store.Load()
	role := moderation.RoleOf(doc, s.cfg.AdminID, chatID)
	if created {
		if err := s.sender.SendMenu(chatID, "Welcome to the dating bot! 💘\nLet's set up your profile.", mainMenu(role)); err != nil {
			s.log.Warn("send welcome", sl.Err(err))
		}
		s.startWizard(chatID)
		return
	}

	u, _ := doc.User(chatID)
	if u != nil && !u.Complete {
		s.startWizard(chatID)
		return
	}
	if err := s.sender.SendMenu(chatID, "Welcome back!", mainMenu(role)); err != nil {
		s.log.Warn("send menu", sl.Err(err))
	}
}

func (s *BotService) sendHelp(chatID int64) {
	help := "*Commands*\n" +
		"/start - create or show your profile\n" +
		"/profile - view and edit your profile\n" +
		"/search - find people\n" +
		"/daily - claim the daily bonus\n" +
		"/balance - show your coins\n" +
		"/cancel - abort the current operation\n\n" +
		fmt.Sprintf("Likes cost %d coins, boosts %d, viewing your visitors %d.",
			config.LikeCost, config.BoostCost, config.ViewersCost)
	s.replyMarkdown(chatID, help)
}

func (s *BotService) showBalance(chatID int64) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	s.replyMarkdown(chatID, fmt.Sprintf("💰 You have `%d` coins.", u.Coins))
}

func (s *BotService) showOwnProfile(chatID int64) {
	doc := s.store.Load()
	u, ok := doc.User(chatID)
	if !ok {
		s.reply(chatID, "Send /start to create your profile.")
		return
	}
	if !u.Complete {
		s.startWizard(chatID)
		return
	}

	if len(u.Photos) > 1 {
		if err := s.sender.SendAlbum(chatID, u.Photos); err != nil {
			s.log.Warn("send album", slog.Int64("user", chatID), sl.Err(err))
		}
	} else if len(u.Photos) == 1 {
		if err := s.sender.SendPhoto(chatID, u.Photos[0], "", nil); err != nil {
			s.log.Warn("send photo", slog.Int64("user", chatID), sl.Err(err))
		}
	}
	if _, err := s.sender.SendInline(chatID, profile.Render(u, true, false), editProfileKeyboard()); err != nil {
		s.log.Warn("send profile", slog.Int64("user", chatID), sl.Err(err))
	}
}

// reply and replyMarkdown are fire-and-forget sends: delivery failures are
// logged, never retried, and never roll anything back.
func (s *BotService) reply(chatID int64, text string) {
	if err := s.sender.Send(chatID, text); err != nil {
		s.log.Warn("send message", slog.Int64("user", chatID), sl.Err(err))
	}
}

func (s *BotService) replyMarkdown(chatID int64, text string) {
	if err := s.sender.SendMarkdown(chatID, text); err != nil {
		s.log.Warn("send message", slog.Int64("user", chatID), sl.Err(err))
	}
}

// editOrResend edits a previously sent message in place and falls back to a
// fresh send when the edit fails (e.g. the message is too old).
func (s *BotService) editOrResend(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if err := s.sender.EditText(chatID, messageID, text, kb); err == nil {
		return
	}
	var err error
	if kb != nil {
		_, err = s.sender.SendInline(chatID, text, *kb)
	} else {
		err = s.sender.SendMarkdown(chatID, text)
	}
	if err != nil {
		s.log.Warn("edit fallback send", slog.Int64("user", chatID), sl.Err(err))
	}
}
