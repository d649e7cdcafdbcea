package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"converse-backend/internal/middleware"
	"converse-backend/internal/models"
	"converse-backend/internal/repository"
)

// titleFallbackLen bounds the deterministic title used when Gemini cannot
// produce one: the first 30 characters of the opening message.
const titleFallbackLen = 30

type conversationRepository interface {
	Insert(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	GetByOwner(ctx context.Context, id primitive.ObjectID, userID string) (*models.Conversation, error)
	Update(ctx context.Context, c *models.Conversation) error
	ListByUser(ctx context.Context, userID string) ([]models.ConversationSummary, error)
}

type modelGateway interface {
	Reply(ctx context.Context, history []models.Turn, message string) (string, error)
	GenerateTitle(ctx context.Context, firstMessage string) (string, error)
}

type ChatHandler struct {
	conversations conversationRepository
	gateway       modelGateway
}

func NewChatHandler(conversations conversationRepository, gateway modelGateway) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		gateway:       gateway,
	}
}

// NewMessage appends a user turn to a conversation (creating it when no id
// is given), obtains the assistant reply, and persists both turns in one
// write. Nothing is persisted if the reply cannot be generated.
func (h *ChatHandler) NewMessage(w http.ResponseWriter, r *http.Request) {
	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	userID := middleware.GetUserID(r.Context()).String()
	isNew := req.ConversationID == ""

	var conv *models.Conversation
	if isNew {
		conv = &models.Conversation{UserID: userID, Turns: []models.Turn{}}
	} else {
		id, err := primitive.ObjectIDFromHex(req.ConversationID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Conversation not found", r))
			return
		}

		conv, err = h.conversations.GetByID(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Conversation not found", r))
			return
		}
		if err != nil {
			log.Printf("NewMessage: loading conversation %s: %v", req.ConversationID, err)
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
			return
		}

		// Ownership check: foreign conversations are forbidden here, not
		// hidden. The fetch endpoint makes the opposite choice.
		if conv.UserID != userID {
			writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Unauthorized access to conversation", r))
			return
		}
	}

	// Replay everything before the turn being added now.
	history := conv.Turns
	conv.Turns = append(conv.Turns, models.Turn{Role: models.RoleUser, Content: req.Message})

	reply, err := h.gateway.Reply(r.Context(), history, req.Message)
	if err != nil {
		log.Printf("NewMessage: Gemini reply failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to generate a response from the AI.", r))
		return
	}

	conv.Turns = append(conv.Turns, models.Turn{Role: models.RoleAssistant, Content: reply})

	if isNew {
		conv.Title = h.titleFor(r.Context(), req.Message)
		if err := h.conversations.Insert(r.Context(), conv); err != nil {
			log.Printf("NewMessage: inserting conversation: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save conversation", r))
			return
		}

		writeJSON(w, http.StatusCreated, models.MessageResponse{
			Reply: reply,
			NewConversation: &models.ConversationRef{
				ID:    conv.ID.Hex(),
				Title: conv.Title,
			},
		})
		return
	}

	if err := h.conversations.Update(r.Context(), conv); err != nil {
		log.Printf("NewMessage: updating conversation %s: %v", conv.ID.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save conversation", r))
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Reply: reply})
}

// ListConversations returns the caller's conversations, newest first.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context()).String()

	summaries, err := h.conversations.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("ListConversations: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list conversations", r))
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// GetConversation returns one full conversation. The lookup is scoped to
// the caller, so a conversation owned by someone else reads as not found.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid conversation ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context()).String()

	conv, err := h.conversations.GetByOwner(r.Context(), id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Conversation not found", r))
		return
	}
	if err != nil {
		log.Printf("GetConversation: loading conversation %s: %v", id.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// titleFor asks Gemini for a short title and falls back to a prefix of the
// first message. The fallback path never surfaces an error.
func (h *ChatHandler) titleFor(ctx context.Context, firstMessage string) string {
	title, err := h.gateway.GenerateTitle(ctx, firstMessage)
	if err != nil {
		log.Printf("titleFor: title generation failed, using fallback: %v", err)
		return fallbackTitle(firstMessage)
	}
	return title
}

func fallbackTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) > titleFallbackLen {
		runes = runes[:titleFallbackLen]
	}
	return string(runes)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
