// Package telegram handles the integration with the Telegram Bot API: the
// outbound sender port, the conversation router and the per-flow handlers.
package telegram

import (
	"github.com/SM-TRIBE/bot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the outbound message-delivery port. Every method returns the
// SDK error so callers can observe delivery failures; nothing is retried
// here.
type Sender interface {
	Send(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
	SendMenu(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) error
	SendInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	SendPhoto(chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error
	SendAlbum(chatID int64, fileIDs []string) error
	EditText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error
	DeleteMessage(chatID int64, messageID int) error
	AckCallback(callbackID string) error
}

// APISender implements Sender over *tgbotapi.BotAPI.
type APISender struct {
	bot *tgbotapi.BotAPI
}

// NewAPISender wraps an authorized bot client.
func NewAPISender(bot *tgbotapi.BotAPI) *APISender {
	return &APISender{bot: bot}
}

func (s *APISender) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := s.bot.Send(c)
	if err != nil {
		metrics.SendFailures.Inc()
	}
	return msg, err
}

// Send delivers plain text.
func (s *APISender) Send(chatID int64, text string) error {
	_, err := s.send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendMarkdown delivers Markdown-formatted text.
func (s *APISender) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.send(msg)
	return err
}

// SendMenu delivers Markdown text together with a persistent reply keyboard.
func (s *APISender) SendMenu(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	_, err := s.send(msg)
	return err
}

// SendInline delivers Markdown text with inline buttons and returns the
// message id for later in-place edits.
func (s *APISender) SendInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	sent, err := s.send(msg)
	return sent.MessageID, err
}

// SendPhoto delivers a photo by file id with an optional caption and buttons.
func (s *APISender) SendPhoto(chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		photo.ReplyMarkup = kb
	}
	_, err := s.send(photo)
	return err
}

// SendAlbum delivers several photos as one media group.
func (s *APISender) SendAlbum(chatID int64, fileIDs []string) error {
	media := make([]tgbotapi.InputMedia, 0, len(fileIDs))
	for _, id := range fileIDs {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id))
		media = append(media, &photo)
	}
	group := tgbotapi.NewMediaGroup(chatID, media)
	if _, err := s.bot.SendMediaGroup(group); err != nil {
		metrics.SendFailures.Inc()
		return err
	}
	return nil
}

// EditText rewrites a previously sent message's text and buttons in place.
func (s *APISender) EditText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	var c tgbotapi.Chattable
	if kb != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *kb)
		edit.ParseMode = tgbotapi.ModeMarkdown
		c = edit
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		c = edit
	}
	if _, err := s.bot.Request(c); err != nil {
		metrics.SendFailures.Inc()
		return err
	}
	return nil
}

// DeleteMessage removes a previously sent message.
func (s *APISender) DeleteMessage(chatID int64, messageID int) error {
	_, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// AckCallback answers a callback query to stop the client-side spinner.
func (s *APISender) AckCallback(callbackID string) error {
	_, err := s.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}
