// Package handler exposes the HTTP surface: the Telegram webhook sink and
// the health endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/SM-TRIBE/bot/internal/lib/sl"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler consumes one decoded Telegram update.
type UpdateHandler interface {
	HandleUpdate(update tgbotapi.Update)
}

// Handler holds the webhook dependencies.
type Handler struct {
	log   *slog.Logger
	bot   UpdateHandler
	token string
}

func NewHandler(log *slog.Logger, bot UpdateHandler, token string) *Handler {
	return &Handler{log: log, bot: bot, token: token}
}

// Register mounts the routes.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/webhook/:token", h.Webhook)
	r.GET("/health", h.Health)
}

// Webhook accepts one update from Telegram. The bot token doubles as the
// path secret, so posts with a wrong token are rejected outright.
func (h *Handler) Webhook(c *gin.Context) {
	if c.Param("token") != h.token {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warn("malformed webhook payload", sl.Err(err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	// Telegram redelivers until it sees a 200, so the update is handed off
	// and acknowledged immediately.
	go h.bot.HandleUpdate(update)
	c.Status(http.StatusOK)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
