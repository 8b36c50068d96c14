package telegram

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/session"
	"github.com/SM-TRIBE/bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testAdminID int64 = 999

func newTestService(t *testing.T) (*BotService, *MockSender, storage.Store, *session.Registry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "data.json"), log)
	sender := &MockSender{}
	sessions := session.NewRegistry()
	cfg := &config.Config{AdminID: testAdminID}
	svc := NewBotService(log, cfg, sender, store, sessions, discovery.NewEngine(), "testbot")
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, sender, store, sessions
}

// allowAllSends registers permissive expectations for every outbound call.
func allowAllSends(sender *MockSender) {
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	sender.On("SendMarkdown", mock.Anything, mock.Anything).Return(nil)
	sender.On("SendMenu", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sender.On("SendInline", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)
	sender.On("SendPhoto", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sender.On("SendAlbum", mock.Anything, mock.Anything).Return(nil)
	sender.On("EditText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sender.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil)
	sender.On("AckCallback", mock.Anything).Return(nil)
}

func commandUpdate(chatID int64, text string, commandLen int) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: tgbotapi.Chat{ID: chatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: commandLen},
		},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func photoUpdate(chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{{FileID: fileID}},
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 1, Chat: tgbotapi.Chat{ID: chatID}},
	}}
}

func seedUser(t *testing.T, store storage.Store, u *models.User) {
	t.Helper()
	err := store.Mutate([]int64{u.ID}, func(doc *models.Document) error {
		doc.PutUser(u)
		return nil
	})
	require.NoError(t, err)
}

func completeUser(id int64, name, gender string, age, coins int64) *models.User {
	return &models.User{
		ID:       id,
		Name:     name,
		Age:      int(age),
		Gender:   gender,
		City:     "Berlin",
		Photos:   []string{"photo-" + name},
		Coins:    coins,
		Complete: true,
	}
}

func TestStartCreatesShellAndOpensWizard(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)

	// Act
	svc.HandleUpdate(commandUpdate(1, "/start", len("/start")))

	// Assert
	u, ok := store.Load().User(1)
	require.True(t, ok)
	assert.EqualValues(t, config.SignupGrant, u.Coins)
	assert.NotEmpty(t, u.RefCode)
	assert.False(t, u.Complete)

	sess, open := sessions.Get(1)
	require.True(t, open)
	assert.Equal(t, session.KindWizard, sess.Kind)
	sender.AssertCalled(t, "Send", int64(1), "What's your name?")
}

func TestStartWithReferralCodeAttributesReferrer(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	allowAllSends(sender)
	referrer := completeUser(10, "Ref", models.GenderFemale, 30, 0)
	referrer.RefCode = "ABCD1234"
	seedUser(t, store, referrer)

	// Act
	svc.HandleUpdate(commandUpdate(2, "/start ABCD1234", len("/start")))

	// Assert
	u, ok := store.Load().User(2)
	require.True(t, ok)
	assert.EqualValues(t, 10, u.ReferrerID)
	assert.EqualValues(t, config.SignupGrant+config.ReferralSignupBonus, u.Coins)
}

func TestBannedUserIsRejected(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	banned := completeUser(5, "Eve", models.GenderFemale, 28, 100)
	banned.Banned = true
	seedUser(t, store, banned)
	sender.On("Send", int64(5), bannedMessage).Return(nil)

	// Act
	svc.HandleUpdate(textUpdate(5, MenuSearch))

	// Assert
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestWizardFullRunCompletesProfile(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	svc.HandleUpdate(commandUpdate(1, "/start", len("/start")))

	// Act
	svc.HandleUpdate(textUpdate(1, "Alice"))
	svc.HandleUpdate(textUpdate(1, "25"))
	svc.HandleUpdate(callbackUpdate(1, genderData(models.GenderFemale)))
	svc.HandleUpdate(textUpdate(1, "Hamburg"))
	svc.HandleUpdate(textUpdate(1, "music, art"))
	svc.HandleUpdate(photoUpdate(1, "file-1"))
	svc.HandleUpdate(callbackUpdate(1, "photos_done"))

	// Assert
	u, ok := store.Load().User(1)
	require.True(t, ok)
	assert.True(t, u.Complete)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 25, u.Age)
	assert.Equal(t, models.GenderFemale, u.Gender)
	assert.Equal(t, "Hamburg", u.City)
	assert.Equal(t, []string{"music", "art"}, u.Interests)
	assert.Equal(t, []string{"file-1"}, u.Photos)

	_, open := sessions.Get(1)
	assert.False(t, open)
}

func TestWizardInvalidAgeReprompts(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	svc.HandleUpdate(commandUpdate(1, "/start", len("/start")))
	svc.HandleUpdate(textUpdate(1, "Bob"))

	// Act
	svc.HandleUpdate(textUpdate(1, "17"))

	// Assert: still on the age step, nothing persisted.
	sess, open := sessions.Get(1)
	require.True(t, open)
	assert.Equal(t, session.StepAge, sess.Wizard.Step)
	u, _ := store.Load().User(1)
	assert.Zero(t, u.Age)
}

func TestLikeCallbackCreatesMutualMatch(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	allowAllSends(sender)
	a := completeUser(1, "Alice", models.GenderFemale, 25, 50)
	b := completeUser(2, "Bob", models.GenderMale, 27, 50)
	b.Likes = []int64{1}
	seedUser(t, store, a)
	seedUser(t, store, b)

	// Act
	svc.HandleUpdate(callbackUpdate(1, likeData(2)))

	// Assert
	doc := store.Load()
	_, matched := doc.MatchBetween(1, 2)
	assert.True(t, matched)
	liker, _ := doc.User(1)
	assert.EqualValues(t, 50-config.LikeCost, liker.Coins)
	assert.Contains(t, liker.Matches, int64(2))
	target, _ := doc.User(2)
	assert.Contains(t, target.Matches, int64(1))
	sender.AssertCalled(t, "SendMarkdown", int64(1), "💘 It's a match with *Bob*!")
	sender.AssertCalled(t, "SendMarkdown", int64(2), "💘 It's a match with *Alice*!")
}

func TestLikeWithoutCoinsIsRejected(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, config.LikeCost-1))
	seedUser(t, store, completeUser(2, "Bob", models.GenderMale, 27, 50))

	// Act
	svc.HandleUpdate(callbackUpdate(1, likeData(2)))

	// Assert
	doc := store.Load()
	liker, _ := doc.User(1)
	assert.EqualValues(t, config.LikeCost-1, liker.Coins)
	assert.Empty(t, liker.Likes)
}

func TestMenuSelectionClearsOpenSession(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 50))
	sessions.Set(1, &session.Session{
		Kind:   session.KindReport,
		Report: &session.ReportState{TargetID: 2},
	})

	// Act
	svc.HandleUpdate(textUpdate(1, MenuDaily))

	// Assert: the stale report flow is gone and the bonus was handled.
	_, open := sessions.Get(1)
	assert.False(t, open)
	sender.AssertCalled(t, "SendMarkdown", int64(1), mock.Anything)
}

func TestAdminConsoleDeniedForRegularUser(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 50))
	sender.On("Send", int64(1), "This area is for moderators only.").Return(nil)

	// Act
	svc.HandleUpdate(commandUpdate(1, "/admin", len("/admin")))

	// Assert
	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "SendInline", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminConsoleOpensForAdmin(t *testing.T) {
	// Arrange
	svc, sender, _, _ := newTestService(t)
	sender.On("SendInline", testAdminID, mock.Anything, mock.Anything).Return(1, nil)

	// Act
	svc.HandleUpdate(commandUpdate(testAdminID, "/admin", len("/admin")))

	// Assert
	sender.AssertExpectations(t)
}

func TestBroadcastSkipsBannedUsers(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 0))
	seedUser(t, store, completeUser(2, "Bob", models.GenderMale, 27, 0))
	banned := completeUser(3, "Eve", models.GenderFemale, 30, 0)
	banned.Banned = true
	seedUser(t, store, banned)
	sessions.Set(testAdminID, &session.Session{Kind: session.KindBroadcast})

	// Act
	svc.HandleUpdate(textUpdate(testAdminID, "hello everyone"))

	// Assert
	sender.AssertCalled(t, "SendMarkdown", int64(1), "hello everyone")
	sender.AssertCalled(t, "SendMarkdown", int64(2), "hello everyone")
	sender.AssertNotCalled(t, "SendMarkdown", int64(3), "hello everyone")
	_, open := sessions.Get(testAdminID)
	assert.False(t, open)
}

func TestGrantFlowAddsCoins(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 10))
	sessions.Set(testAdminID, &session.Session{
		Kind:  session.KindGrant,
		Grant: &session.GrantState{Step: session.GrantStepTarget},
	})

	// Act
	svc.HandleUpdate(textUpdate(testAdminID, "1"))
	svc.HandleUpdate(textUpdate(testAdminID, "40"))

	// Assert
	u, _ := store.Load().User(1)
	assert.EqualValues(t, 50, u.Coins)
	_, open := sessions.Get(testAdminID)
	assert.False(t, open)
}

func TestBanPromptBansTarget(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 10))
	sessions.Set(testAdminID, &session.Session{
		Kind:  session.KindAdminPrompt,
		Admin: &session.AdminPromptState{Prompt: session.PromptBan},
	})

	// Act
	svc.HandleUpdate(textUpdate(testAdminID, "1"))

	// Assert
	u, _ := store.Load().User(1)
	assert.True(t, u.Banned)
}

func TestPromoteAndDemoteSubAdmin(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(7, "Mod", models.GenderOther, 33, 0))

	// Act: promote.
	sessions.Set(testAdminID, &session.Session{
		Kind:  session.KindAdminPrompt,
		Admin: &session.AdminPromptState{Prompt: session.PromptPromote},
	})
	svc.HandleUpdate(textUpdate(testAdminID, "7"))

	// Assert
	assert.True(t, store.Load().IsSubAdmin(7))

	// Act: demote.
	sessions.Set(testAdminID, &session.Session{
		Kind:  session.KindAdminPrompt,
		Admin: &session.AdminPromptState{Prompt: session.PromptDemote},
	})
	svc.HandleUpdate(textUpdate(testAdminID, "7"))

	// Assert
	assert.False(t, store.Load().IsSubAdmin(7))
}

func TestOwnProfileWithSeveralPhotosSendsAlbum(t *testing.T) {
	// Arrange
	svc, sender, store, _ := newTestService(t)
	allowAllSends(sender)
	u := completeUser(1, "Alice", models.GenderFemale, 25, 50)
	u.Photos = []string{"file-a", "file-b", "file-c"}
	seedUser(t, store, u)

	// Act
	svc.HandleUpdate(commandUpdate(1, "/profile", len("/profile")))

	// Assert
	sender.AssertCalled(t, "SendAlbum", int64(1), []string{"file-a", "file-b", "file-c"})
	sender.AssertNotCalled(t, "SendPhoto", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStaleGenderButtonDoesNotHijackOtherEdit(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 50))
	sessions.Set(1, &session.Session{
		Kind: session.KindEditField,
		Edit: &session.EditState{Field: "city"},
	})

	// Act
	svc.HandleUpdate(callbackUpdate(1, genderData(models.GenderMale)))

	// Assert: gender untouched, the city edit is still open.
	u, _ := store.Load().User(1)
	assert.Equal(t, models.GenderFemale, u.Gender)
	sess, open := sessions.Get(1)
	require.True(t, open)
	assert.Equal(t, "city", sess.Edit.Field)
}

func TestGiftFlowTransfersCoins(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 100))
	seedUser(t, store, completeUser(2, "Bob", models.GenderMale, 27, 5))

	// Act
	svc.HandleUpdate(textUpdate(1, MenuGift))
	svc.HandleUpdate(textUpdate(1, "2"))
	svc.HandleUpdate(textUpdate(1, "30"))
	svc.HandleUpdate(callbackUpdate(1, "gift_confirm"))

	// Assert
	doc := store.Load()
	sender1, _ := doc.User(1)
	recipient, _ := doc.User(2)
	assert.EqualValues(t, 70, sender1.Coins)
	assert.EqualValues(t, 35, recipient.Coins)
	_, open := sessions.Get(1)
	assert.False(t, open)
	sender.AssertCalled(t, "DeleteMessage", int64(1), 1)
}

func TestCommandCancelsOpenFlow(t *testing.T) {
	// Arrange
	svc, sender, store, sessions := newTestService(t)
	allowAllSends(sender)
	seedUser(t, store, completeUser(1, "Alice", models.GenderFemale, 25, 50))
	sessions.Set(1, &session.Session{
		Kind: session.KindGift,
		Gift: &session.GiftState{Step: session.GiftStepAmount, RecipientID: 2},
	})

	// Act
	svc.HandleUpdate(commandUpdate(1, "/cancel", len("/cancel")))

	// Assert
	_, open := sessions.Get(1)
	assert.False(t, open)
	sender.AssertCalled(t, "Send", int64(1), "Cancelled.")
}
