// Package intent turns a free-text message into a validated Intent using the
// LLM. Anything that does not decode into the schema is a Parse error.
package intent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/llm"
	"drive-copilot-be/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type Action string

const (
	ActionCreateDoc Action = "createDoc"
	ActionAnalyze   Action = "analyze"
	ActionMoveDoc   Action = "moveDoc"
	ActionNone      Action = "none"
)

// Intent is the structured classification of one message. Only
// ActionToPerform is guaranteed; handlers check the fields they need.
type Intent struct {
	ActionToPerform Action `json:"action_to_perform" validate:"required,oneof=createDoc analyze moveDoc none"`
	Name            string `json:"name,omitempty" validate:"max=256"`
	DocName         string `json:"doc_name,omitempty" validate:"max=256"`
	TargetFolder    string `json:"target_folder,omitempty" validate:"max=256"`
	TargetName      string `json:"target_name,omitempty" validate:"max=256"`
	Rewrite         bool   `json:"rewrite,omitempty"`
	Instruction     string `json:"instruction,omitempty" validate:"max=2000"`
}

type Parser struct {
	llm      llm.LLMProvider
	validate *validator.Validate
	timeout  time.Duration
	logger   logger.ILogger
}

func NewParser(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Parser {
	return &Parser{
		llm:      provider,
		validate: validator.New(),
		timeout:  timeout,
		logger:   log,
	}
}

func (p *Parser) Parse(ctx context.Context, message string) (*Intent, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.IntentParserPromptV1},
		{Role: llm.RoleUser, Content: message},
	}, llm.WithTemperature(0.1), llm.WithJSONResponse())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindParse, "Intent classification is unavailable.", err)
	}

	parsed, err := p.Decode(raw)
	if err != nil {
		p.logger.Warn(constant.ModuleIntent, "Rejected LLM intent", map[string]interface{}{
			"raw":   utils.Truncate(raw, 300, "..."),
			"error": err.Error(),
		})
		return nil, err
	}

	p.logger.Debug(constant.ModuleIntent, "Intent parsed", map[string]interface{}{
		"action": parsed.ActionToPerform,
	})
	return parsed, nil
}

// Decode extracts the outermost JSON object from raw and validates it.
func (p *Parser) Decode(raw string) (*Intent, error) {
	text := utils.StripCodeFence(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, apperror.New(apperror.KindParse, "The intent reply contained no JSON object.")
	}

	var parsed Intent
	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	if err := dec.Decode(&parsed); err != nil {
		return nil, apperror.Wrap(apperror.KindParse, "The intent reply was not valid JSON.", err)
	}
	if err := p.validate.Struct(&parsed); err != nil {
		return nil, apperror.Wrap(apperror.KindParse, "The intent reply did not match the expected shape.", err)
	}

	parsed.Name = strings.TrimSpace(parsed.Name)
	parsed.DocName = strings.TrimSpace(parsed.DocName)
	parsed.TargetFolder = strings.TrimSpace(parsed.TargetFolder)
	parsed.TargetName = strings.TrimSpace(parsed.TargetName)
	return &parsed, nil
}
