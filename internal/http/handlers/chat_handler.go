package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

// ChatService defines the encrypted-messaging operations consumed by HTTP
// handlers. Message payloads are opaque ciphertext; the server never sees
// plaintext.
type ChatService interface {
	StartChat(ctx context.Context, caller, other string) (*domain.Chat, bool, error)
	SendMessage(ctx context.Context, caller, chatID string, ciphertext, hash []byte) (*domain.Message, error)
	MarkAsRead(ctx context.Context, caller, chatID string, index int64) (*domain.Message, error)
	GetMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	GetUnreadCount(ctx context.Context, chatID, user string) (int64, error)
	ListChats(ctx context.Context, user string) ([]domain.Chat, error)
}

// StartChatRequest is the JSON payload for opening a chat session.
type StartChatRequest struct {
	// Participant is the other party's address.
	Participant string `json:"participant" binding:"required" example:"0xb0b"`
}

// StartChatResponse carries the session plus whether this call created it.
type StartChatResponse struct {
	Chat    *domain.Chat `json:"chat"`
	Created bool         `json:"created"`
}

// SendMessageRequest is the JSON payload for sending an encrypted message.
// Binary fields travel base64-encoded.
type SendMessageRequest struct {
	// Ciphertext is the base64-encoded encrypted payload.
	Ciphertext string `json:"ciphertext" binding:"required"`
	// Hash is the base64-encoded integrity digest of the plaintext.
	Hash string `json:"hash,omitempty"`
}

// UnreadCountResponse reports unread messages addressed to a user.
type UnreadCountResponse struct {
	ChatID string `json:"chat_id"`
	User   string `json:"user"`
	Unread int64  `json:"unread"`
}

// StartChat godoc
// @ID          startChat
// @Summary     Open (or fetch) a chat session
// @Description Idempotent. The participant pair is canonicalized so either party opening the session lands on the same one.
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       body       body    handlers.StartChatRequest  true  "Start chat payload"
// @Success     200  {object}  handlers.StartChatResponse  "Existing session"
// @Success     201  {object}  handlers.StartChatResponse  "New session"
// @Failure     403  {object}  handlers.ErrorResponse  "Cannot chat with yourself"
// @Router      /chats [post]
func (h *Handlers) StartChat(c *gin.Context) {
	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	chat, created, err := h.chatSvc.StartChat(c.Request.Context(), callerAddress(c), req.Participant)
	if err != nil {
		failService(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, StartChatResponse{Chat: chat, Created: created})
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send an encrypted message
// @Description Appends a message at the next sequence number. The body is opaque ciphertext.
// @Description Supports safe retries via the Idempotency-Key header (same key serves the original message).
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Caller address (demo header)"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id         path    string  true  "Chat ID"
// @Param       body       body    handlers.SendMessageRequest  true  "Message payload"
// @Success     201  {object}  domain.Message
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or malformed ciphertext"
// @Failure     403  {object}  handlers.ErrorResponse  "Caller is not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Chat not found"
// @Router      /chats/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ciphertext must be base64")
		return
	}
	var hash []byte
	if req.Hash != "" {
		hash, err = base64.StdEncoding.DecodeString(req.Hash)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hash must be base64")
			return
		}
	}

	if rec, hit := h.replayedIdempotency(c, c.Param("id")); hit {
		if prev, err := repo.GetMessageByID(c.Request.Context(), h.idemDB, rec.ResultID); err == nil {
			serveReplay(c, rec.Status, prev)
			return
		}
	}

	msg, err := h.chatSvc.SendMessage(c.Request.Context(), callerAddress(c), c.Param("id"), ciphertext, hash)
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, c.Param("id"), msg.ID, http.StatusCreated)
	ok(c, http.StatusCreated, msg)
}

// MarkMessageRead godoc
// @ID          markMessageRead
// @Summary     Mark a message as read
// @Description Only the recipient may mark a message; a sender marking their own message is rejected.
// @Tags        Chats
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Chat ID"
// @Param       seq        path    int     true  "Message sequence number"
// @Success     200  {object}  domain.Message
// @Failure     403  {object}  handlers.ErrorResponse  "Not the recipient"
// @Failure     404  {object}  handlers.ErrorResponse  "Chat missing or sequence out of range"
// @Failure     409  {object}  handlers.ErrorResponse  "Already read"
// @Router      /chats/{id}/messages/{seq}/read [post]
func (h *Handlers) MarkMessageRead(c *gin.Context) {
	seq, err := parseSeq(c.Param("seq"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "seq must be a non-negative integer")
		return
	}

	msg, err := h.chatSvc.MarkAsRead(c.Request.Context(), callerAddress(c), c.Param("id"), seq)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, msg)
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List a chat's messages in sequence order
// @Description Returns ciphertext envelopes oldest first. Payloads remain opaque to non-participants.
// @Tags        Chats
// @Produce     json
// @Param       id  path  string  true  "Chat ID"
// @Success     200  {array}  domain.Message
// @Failure     404  {object}  handlers.ErrorResponse  "Chat not found"
// @Router      /chats/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	msgs, err := h.chatSvc.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, msgs)
}

// GetUnreadCount godoc
// @ID          getUnreadCount
// @Summary     Count unread messages addressed to a user
// @Tags        Chats
// @Produce     json
// @Param       id    path   string  true  "Chat ID"
// @Param       user  query  string  false "User address (defaults to caller)"
// @Success     200  {object}  handlers.UnreadCountResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Chat not found"
// @Router      /chats/{id}/unread [get]
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		user = callerAddress(c)
	}
	n, err := h.chatSvc.GetUnreadCount(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, UnreadCountResponse{ChatID: c.Param("id"), User: user, Unread: n})
}

// ListChats godoc
// @ID          listChats
// @Summary     List the caller's chat sessions
// @Tags        Chats
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Success     200  {array}  domain.Chat
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	chats, err := h.chatSvc.ListChats(c.Request.Context(), callerAddress(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, chats)
}
