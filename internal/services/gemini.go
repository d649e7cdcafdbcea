package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"converse-backend/internal/models"
)

const (
	defaultChatModelName  = "gemini-2.5-flash"
	defaultTitleModelName = "gemini-2.5-flash"

	// Gemini's role name for model-authored turns. Stored turns say
	// "assistant"; the API wants "model".
	geminiModelRole = "model"
)

type GeminiService struct {
	client     *genai.Client
	chatModel  *genai.GenerativeModel
	titleModel *genai.GenerativeModel
}

func NewGeminiService(apiKey string) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	chatModel := client.GenerativeModel(defaultChatModelName)

	titleModel := client.GenerativeModel(defaultTitleModelName)
	titleTemp := float32(0.3)
	titleMaxTokens := int32(20)
	titleModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     &titleTemp,
		MaxOutputTokens: &titleMaxTokens,
	}

	return &GeminiService{
		client:     client,
		chatModel:  chatModel,
		titleModel: titleModel,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// Reply runs one multi-turn completion: prior turns are replayed as chat
// history and the new message is sent on top of them.
func (s *GeminiService) Reply(ctx context.Context, history []models.Turn, message string) (string, error) {
	session := s.chatModel.StartChat()
	session.History = buildChatHistory(history)

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini chat request failed: %w", err)
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", fmt.Errorf("Gemini returned an empty reply")
	}
	return reply, nil
}

// GenerateTitle asks for a short single-shot summary of the first message.
// Callers are expected to fall back locally when this fails.
func (s *GeminiService) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following user prompt into a concise title of 5 words or less. Do not use quotes or any introductory phrases like "Title:". Just provide the title itself. Prompt: %q`, firstMessage)

	resp, err := s.titleModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini title request failed: %w", err)
	}

	title := strings.Trim(extractText(resp), "\"'\n\r\t .")
	if title == "" {
		return "", fmt.Errorf("Gemini returned an empty title")
	}
	return title, nil
}

// Helper functions

// buildChatHistory projects stored turns into the provider's content shape,
// mapping the assistant role to Gemini's "model".
func buildChatHistory(turns []models.Turn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role == models.RoleAssistant {
			role = geminiModelRole
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
