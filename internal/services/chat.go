package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"mediguide-backend/internal/models"
	"mediguide-backend/internal/providers"
)

// Message categories produced by the auxiliary classification call.
type MessageCategory string

const (
	CategoryGreeting          MessageCategory = "GREETING"
	CategoryGLP1Specific      MessageCategory = "GLP1_SPECIFIC"
	CategoryGeneralMedication MessageCategory = "GENERAL_MEDICATION"
	CategoryUnrelated         MessageCategory = "UNRELATED"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req providers.ChatCompletionRequest) (string, error)
	StreamChatCompletion(ctx context.Context, req providers.ChatCompletionRequest, onDelta func(string) error) error
}

// ChatService relays conversations to one of two chat-completion providers
// depending on persona, after classifying the latest message to pick a
// system prompt.
type ChatService struct {
	general         chatCompleter // OpenAI-compatible, also runs classification
	glp1            chatCompleter // Perplexity-compatible reasoning model
	generalModel    string
	glp1Model       string
	classifierModel string
	log             *slog.Logger
}

func NewChatService(general, glp1 chatCompleter, generalModel, glp1Model, classifierModel string, log *slog.Logger) *ChatService {
	return &ChatService{
		general:         general,
		glp1:            glp1,
		generalModel:    generalModel,
		glp1Model:       glp1Model,
		classifierModel: classifierModel,
		log:             log,
	}
}

// Classify buckets the latest user message with one cheap non-streaming
// call. Failures degrade to GENERAL_MEDICATION so a flaky classifier never
// blocks the chat itself.
func (s *ChatService) Classify(ctx context.Context, message string) MessageCategory {
	reply, err := s.general.CreateChatCompletion(ctx, providers.ChatCompletionRequest{
		Model:       s.classifierModel,
		Messages:    []models.ChatMessage{{Role: "user", Content: buildClassifierPrompt(message)}},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		s.log.Warn("classification failed, defaulting to general", "error", err)
		return CategoryGeneralMedication
	}
	return parseCategory(reply)
}

func parseCategory(reply string) MessageCategory {
	token := strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case strings.Contains(token, string(CategoryGreeting)):
		return CategoryGreeting
	case strings.Contains(token, string(CategoryGLP1Specific)):
		return CategoryGLP1Specific
	case strings.Contains(token, string(CategoryUnrelated)):
		return CategoryUnrelated
	default:
		return CategoryGeneralMedication
	}
}

// selectSystemPrompt picks one of the three fixed prompts. Precedence: a
// greeting wins over persona; for everything else the persona wins over the
// classifier, so the glp1 persona never sees the general-medication prompt.
func selectSystemPrompt(category MessageCategory, persona string) string {
	if category == CategoryGreeting {
		return greetingSystemPrompt
	}
	if persona == models.PersonaGLP1 {
		return glp1SystemPrompt
	}
	return generalMedicationSystemPrompt
}

// StreamReply classifies, selects the prompt and provider, forwards the
// conversation, and invokes onDelta with cleaned output chunks. Think spans
// are stripped from both the inbound history and the streamed reply.
func (s *ChatService) StreamReply(ctx context.Context, req models.ChatRequest, onDelta func(string) error) error {
	latest := req.LastUserMessage()
	if strings.TrimSpace(latest) == "" {
		return fmt.Errorf("conversation has no user message")
	}

	category := s.Classify(ctx, latest)
	systemPrompt := selectSystemPrompt(category, req.Data.Persona)

	messages := []models.ChatMessage{{Role: "system", Content: systemPrompt}}
	if req.Data.IncludeHistory {
		for _, m := range req.Messages {
			messages = append(messages, models.ChatMessage{
				Role:    m.Role,
				Content: StripThinkTags(m.Content),
			})
		}
	} else {
		messages = append(messages, models.ChatMessage{Role: "user", Content: StripThinkTags(latest)})
	}

	provider := s.general
	model := s.generalModel
	if req.Data.Persona == models.PersonaGLP1 {
		provider = s.glp1
		model = s.glp1Model
	}

	s.log.Info("chat relay", "persona", req.Data.Persona, "category", string(category), "model", model)

	var stripper ThinkStripper
	err := provider.StreamChatCompletion(ctx, providers.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}, func(delta string) error {
		if visible := stripper.Feed(delta); visible != "" {
			return onDelta(visible)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if tail := stripper.Flush(); tail != "" {
		return onDelta(tail)
	}
	return nil
}

// DeriveChatTitle builds the X-Chat-Title header value from the latest user
// message: think spans removed, whitespace collapsed, truncated to at most
// 48 runes including the trailing ellipsis, and kept header-safe.
func DeriveChatTitle(message string) string {
	message = StripThinkTags(message)
	message = strings.Join(strings.Fields(message), " ")

	var b strings.Builder
	for _, r := range message {
		if r < 128 && unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	title := strings.TrimSpace(b.String())

	runes := []rune(title)
	if len(runes) > 48 {
		title = strings.TrimSpace(string(runes[:45])) + "..."
	}
	if title == "" {
		title = "New Chat"
	}
	return title
}
