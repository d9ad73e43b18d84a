package generator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/llm"
	"drive-copilot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	reply string
	err   error
	last  []llm.Message
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	r.last = history
	return r.reply, r.err
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return r.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func TestGenerator_PreviewIsSanitized(t *testing.T) {
	fake := &recordingLLM{reply: "## Outline\n**Intro**\n• Goals"}
	g := NewGenerator(fake, 0, logger.NewNopLogger())

	preview, err := g.Preview(context.Background(), "Weekly Report", "create a weekly report")
	require.NoError(t, err)
	assert.Equal(t, "Outline\nIntro\n- Goals", preview)
	assert.Contains(t, fake.last[0].Content, "Weekly Report")
}

func TestGenerator_AnalyzeBoundsContext(t *testing.T) {
	fake := &recordingLLM{reply: "answer"}
	g := NewGenerator(fake, 0, logger.NewNopLogger())

	items := make([]drive.Item, 150)
	for i := range items {
		items[i] = drive.Item{ID: fmt.Sprint(i), Name: fmt.Sprintf("file-%03d", i), Path: fmt.Sprintf("file-%03d", i)}
	}
	target := items[0]

	_, err := g.Analyze(context.Background(), AnalyzeRequest{
		Message: "summarise",
		Items:   items,
		Target:  &target,
		Content: strings.Repeat("x", 5000),
		History: []store.ChatTurn{
			{Role: store.RoleUser, Content: "earlier question"},
			{Role: store.RoleModel, Content: "earlier answer"},
		},
	})
	require.NoError(t, err)

	contextBlock := fake.last[1].Content
	assert.Contains(t, contextBlock, "file-099")
	assert.NotContains(t, contextBlock, "file-100")
	assert.Equal(t, MaxContentChars, strings.Count(contextBlock, "x"))

	require.Len(t, fake.last, 5)
	assert.Equal(t, llm.RoleAssistant, fake.last[3].Role)
	assert.Equal(t, "summarise", fake.last[4].Content)
}

func TestGenerator_AnalyzeCarriesRewriteInstruction(t *testing.T) {
	fake := &recordingLLM{reply: "shorter text"}
	g := NewGenerator(fake, 0, logger.NewNopLogger())

	_, err := g.Analyze(context.Background(), AnalyzeRequest{
		Message:     "rewrite Meeting Notes to be shorter",
		Instruction: "make it shorter",
	})
	require.NoError(t, err)

	require.Len(t, fake.last, 4)
	assert.Equal(t, llm.RoleSystem, fake.last[2].Role)
	assert.Equal(t, "Rewrite the selected document as follows: make it shorter", fake.last[2].Content)
	assert.Equal(t, "rewrite Meeting Notes to be shorter", fake.last[3].Content)
}

func TestGenerator_FailuresAreCollaboratorErrors(t *testing.T) {
	g := NewGenerator(&recordingLLM{err: assert.AnError}, 0, logger.NewNopLogger())
	_, err := g.Chat(context.Background(), "hi", nil)
	assert.True(t, apperror.Is(err, apperror.KindCollaborator))

	g = NewGenerator(&recordingLLM{reply: "   "}, 0, logger.NewNopLogger())
	_, err = g.Chat(context.Background(), "hi", nil)
	assert.True(t, apperror.Is(err, apperror.KindCollaborator))
}
