package telegram

import (
	"github.com/stretchr/testify/mock"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MockSender replaces the Telegram API in tests.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(chatID int64, text string) error {
	args := m.Called(chatID, text)
	return args.Error(0)
}

func (m *MockSender) SendMarkdown(chatID int64, text string) error {
	args := m.Called(chatID, text)
	return args.Error(0)
}

func (m *MockSender) SendMenu(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) error {
	args := m.Called(chatID, text, kb)
	return args.Error(0)
}

func (m *MockSender) SendInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	args := m.Called(chatID, text, kb)
	return args.Int(0), args.Error(1)
}

func (m *MockSender) SendPhoto(chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	args := m.Called(chatID, fileID, caption, kb)
	return args.Error(0)
}

func (m *MockSender) SendAlbum(chatID int64, fileIDs []string) error {
	args := m.Called(chatID, fileIDs)
	return args.Error(0)
}

func (m *MockSender) EditText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	args := m.Called(chatID, messageID, text, kb)
	return args.Error(0)
}

func (m *MockSender) DeleteMessage(chatID int64, messageID int) error {
	args := m.Called(chatID, messageID)
	return args.Error(0)
}

func (m *MockSender) AckCallback(callbackID string) error {
	args := m.Called(callbackID)
	return args.Error(0)
}
