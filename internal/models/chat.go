package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Turn roles. The set is closed: request flow only ever produces these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is used until the first exchange produces a real title.
const DefaultTitle = "New Chat"

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `bson:"role" json:"role"`
	Content string `bson:"content" json:"content"`
}

// Conversation is the persisted chat document: one document per
// conversation, owned by exactly one user. Turns are append-only.
type Conversation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Turns     []Turn             `bson:"turns" json:"turns"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ConversationSummary is the list-view projection (no turns).
type ConversationSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// MessageRequest is the payload sent to the message endpoint.
type MessageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// ConversationRef identifies a newly created conversation in a response.
type ConversationRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MessageResponse is the reply from the message endpoint. NewConversation
// is set only when this request created the conversation.
type MessageResponse struct {
	Reply           string           `json:"reply"`
	NewConversation *ConversationRef `json:"new_conversation,omitempty"`
}
