package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/service"
	"github.com/moiz862/backend/internal/transport/http/middleware"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.SendMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.ReceiverID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "receiver_id is required")
		return
	}

	msg, err := h.messageService.SendMessage(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "Cannot send a message to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "Receiver not found")
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "Message content is required")
		case errors.Is(err, service.ErrContentTooLong):
			writeError(w, http.StatusBadRequest, "Message content is too long")
		case errors.Is(err, service.ErrAttachmentTypeNotAllowed):
			writeError(w, http.StatusBadRequest, "Attachment type is not allowed")
		case errors.Is(err, service.ErrAttachmentTooLarge):
			writeError(w, http.StatusBadRequest, "Attachment exceeds the 5MB limit")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	peerID, err := uuid.Parse(r.PathValue("peerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid peer ID")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	resp, err := h.messageService.GetConversation(r.Context(), userID, peerID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			log.Printf("ERROR get conversation: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	convs, err := h.messageService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list conversations: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, convs)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		MessageIDs []uuid.UUID `json:"message_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	count, err := h.messageService.MarkRead(r.Context(), userID, input.MessageIDs)
	if err != nil {
		if errors.Is(err, service.ErrNoMessageIDs) {
			writeError(w, http.StatusBadRequest, "message_ids is required")
		} else {
			log.Printf("ERROR mark read: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"marked": count})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	msg, err := h.messageService.DeleteMessage(r.Context(), userID, messageID)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			writeError(w, http.StatusNotFound, "Message not found")
		} else {
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.messageService.GetUnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR unread count: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// queryInt reads a positive integer query param, falling back on anything
// missing or malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
