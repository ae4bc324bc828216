package handler

import (
	"net/http"

	"reelmate/internal/modules/message/dto"
	"reelmate/internal/modules/message/realtime"
	message "reelmate/internal/modules/message/service"
	"reelmate/pkg/apperror"
	"reelmate/pkg/response"
	"reelmate/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type MessageHandler struct {
	messageService message.MessageService
	broker         realtime.Broker
	upgrader       websocket.Upgrader
	log            *logrus.Logger
}

// NewMessageHandler accepts websocket upgrades from allowedOrigins and from clients that send no Origin.
// An empty list admits only the latter.
func NewMessageHandler(messageService message.MessageService, broker realtime.Broker, allowedOrigins []string, log *logrus.Logger) *MessageHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &MessageHandler{
		messageService: messageService,
		broker:         broker,
		log:            log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

func (h *MessageHandler) GetChats(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	chats, err := h.messageService.GetChats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": chats})
}

func (h *MessageHandler) GetChat(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	chat, err := h.messageService.GetChat(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

func (h *MessageHandler) MarkChatRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.messageService.MarkChatRead(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *MessageHandler) RevealSpoiler(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	msg, err := h.messageService.RevealSpoiler(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// HandleWebSocket streams the events of one chat to a participant.
func (h *MessageHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.WebSocketQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	chatID := uuid.MustParse(query.ChatID)

	ctx := c.Request.Context()
	if err := h.messageService.Authorize(ctx, userID, chatID); err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.broker == nil {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "realtime delivery is unavailable", apperror.ErrInternal))
		return
	}

	sub, err := h.broker.Subscribe(ctx, realtime.ChatChannel(chatID.String()))
	if err != nil {
		h.log.WithError(err).WithField("chat_id", chatID).Error("failed to subscribe to chat channel")
		response.ResponseError(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-sub.Messages():
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.WithError(err).WithField("chat_id", chatID).Debug("failed to write to websocket")
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
