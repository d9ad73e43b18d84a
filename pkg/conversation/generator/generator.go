package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/llm"
	"drive-copilot-be/pkg/store"
	"drive-copilot-be/pkg/utils"
)

const (
	// Only the head of the index and of the file content go into the prompt.
	MaxIndexItems   = 100
	MaxContentChars = 2000
)

// Generator produces every piece of LLM text other than the intent.
type Generator struct {
	llm     llm.LLMProvider
	timeout time.Duration
	logger  logger.ILogger
}

func NewGenerator(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Generator {
	return &Generator{llm: provider, timeout: timeout, logger: log}
}

// AnalyzeRequest carries what the model may look at for one analysis turn.
type AnalyzeRequest struct {
	Message string
	Items   []drive.Item
	Target  *drive.Item
	Content string
	History []store.ChatTurn
	// Instruction is the requested change when the turn is a rewrite.
	Instruction string
}

func (g *Generator) Preview(ctx context.Context, title, originalMessage string) (string, error) {
	prompt := fmt.Sprintf(constant.PreviewPromptV1, title, originalMessage)
	text, err := g.generate(ctx, "preview", []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return utils.SanitizeMarkdown(text), nil
}

// Content writes the full document body. outline may be empty.
func (g *Generator) Content(ctx context.Context, topic, originalMessage, outline string) (string, error) {
	section := ""
	if strings.TrimSpace(outline) != "" {
		section = fmt.Sprintf(constant.ContentOutlineSectionV1, outline)
	}
	prompt := fmt.Sprintf(constant.ContentPromptV1, topic, originalMessage, section)
	text, err := g.generate(ctx, "content", []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return utils.SanitizeMarkdown(text), nil
}

func (g *Generator) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	var listing strings.Builder
	for i, item := range req.Items {
		if i >= MaxIndexItems {
			break
		}
		fmt.Fprintf(&listing, "%s | %s\n", item.DisplayName(), item.Kind())
	}

	selected := "(none)"
	if req.Target != nil {
		selected = req.Target.DisplayName()
	}
	content := req.Content
	if content == "" {
		content = "(not available)"
	}
	contextBlock := fmt.Sprintf(constant.AnalyzeContextV1,
		listing.String(), selected, utils.Truncate(content, MaxContentChars, "\n...(truncated)"))

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: constant.AnalyzePromptV1},
		{Role: llm.RoleSystem, Content: contextBlock},
	}
	if instruction := strings.TrimSpace(req.Instruction); instruction != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: fmt.Sprintf(constant.RewriteInstructionV1, instruction)})
	}
	messages = append(messages, fromHistory(req.History)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})
	return g.generate(ctx, "analyze", messages)
}

func (g *Generator) Chat(ctx context.Context, message string, history []store.ChatTurn) (string, error) {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: constant.ChatPromptV1}}
	messages = append(messages, fromHistory(history)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return g.generate(ctx, "chat", messages)
}

func (g *Generator) generate(ctx context.Context, task string, messages []llm.Message) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := g.llm.Chat(ctx, messages)
	if err != nil {
		g.logger.Error(constant.ModuleGenerator, "LLM call failed", map[string]interface{}{
			"task":  task,
			"error": err,
		})
		return "", apperror.Wrap(apperror.KindCollaborator, "The AI service is not responding right now. Please try again.", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.New(apperror.KindCollaborator, "The AI service returned an empty answer. Please try again.")
	}

	g.logger.Debug(constant.ModuleGenerator, "LLM call finished", map[string]interface{}{
		"task":     task,
		"duration": time.Since(started).String(),
		"chars":    len(text),
	})
	return text, nil
}

func fromHistory(history []store.ChatTurn) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		role := llm.RoleUser
		if turn.Role == store.RoleModel {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: turn.Content})
	}
	return out
}
