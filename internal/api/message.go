package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/service"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles the message-send endpoint
type MessageHandler struct {
	chat   *service.ChatService
	logger *logger.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(chat *service.ChatService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{chat: chat, logger: log}
}

// streamEvent is one SSE frame of the message stream
type streamEvent struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// sseWriter writes stream events as "data: {json}" frames. Headers are
// committed lazily on the first event so pre-stream failures can still use a
// plain HTTP status.
type sseWriter struct {
	w       gin.ResponseWriter
	started bool
}

func newSSEWriter(w gin.ResponseWriter) *sseWriter {
	return &sseWriter{w: w}
}

// Started reports whether the response status line has been committed
func (s *sseWriter) Started() bool {
	return s.started
}

// Delta forwards one incremental text fragment to the client
func (s *sseWriter) Delta(content string) error {
	return s.write(streamEvent{Content: content})
}

// Done emits the terminal success event
func (s *sseWriter) Done() error {
	return s.write(streamEvent{Done: true})
}

// Error emits the terminal failure event
func (s *sseWriter) Error(message string) error {
	return s.write(streamEvent{Error: message})
}

func (s *sseWriter) write(event streamEvent) error {
	if !s.started {
		header := s.w.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", encoded); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// SendMessage runs the chat pipeline and streams the reply. Errors before the
// first delta map to HTTP statuses; once the stream is committed, failures
// surface as an in-band error event.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	conversationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	sink := newSSEWriter(c.Writer)
	err := h.chat.SendMessage(c.Request.Context(), CurrentUserID(c), conversationID, req.Content, sink)
	if err != nil {
		if sink.Started() {
			_ = sink.Error("Failed to generate response")
			return
		}
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.Is(err, service.ErrStreamFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate response"})
		default:
			h.logger.LogError(err, "failed to send message", "conversation_id", conversationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	if err := sink.Done(); err != nil {
		h.logger.LogError(err, "failed to write terminal event", "conversation_id", conversationID)
	}
}
