package executor

import (
	"context"
	"errors"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/pkg/conversation/generator"
	"drive-copilot-be/pkg/conversation/intent"
	"drive-copilot-be/pkg/conversation/response"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/driveindex"
	"drive-copilot-be/pkg/store"
	"drive-copilot-be/pkg/utils"
)

// analyze is single-turn: no pending action is created.
func (e *Executor) analyze(ctx context.Context, req Request, parsed *intent.Intent) Outcome {
	ws, err := e.connect(ctx, req.UserID)
	if err != nil {
		return Fail(err)
	}
	index, err := e.ensureIndex(ctx, req.UserID, ws)
	if err != nil {
		return Fail(err)
	}

	var target *drive.Item
	if parsed.TargetName != "" {
		target, err = e.Resolver.FindItemByName(ctx, req.UserID, parsed.TargetName)
		if err != nil {
			var ambiguous *driveindex.AmbiguousError
			if errors.As(err, &ambiguous) {
				return say(response.Ambiguous(ambiguous.Name, ambiguous.Paths))
			}
			return Fail(err)
		}
	} else if active, ok := e.Store.ActiveDocument(req.UserID); ok {
		target = active
	}

	content := ""
	if target != nil {
		content, err = ws.ReadContent(ctx, *target)
		switch {
		case errors.Is(err, drive.ErrUnsupportedContent):
			e.Logger.Info(constant.ModuleDispatcher, "Content type not readable, analysing metadata only", map[string]interface{}{
				"user_id":   req.UserID,
				"mime_type": target.MimeType,
			})
		case err != nil:
			return Fail(drive.Classify(err, "'"+target.DisplayName()+"'"))
		}
		e.Store.SetActiveDocument(req.UserID, *target)
	}

	var items []drive.Item
	if index != nil {
		items = index.Items
	}
	analyzeReq := generator.AnalyzeRequest{
		Message: req.Message,
		Items:   items,
		Target:  target,
		Content: content,
		History: e.Store.History(req.UserID),
	}
	if parsed.Rewrite {
		analyzeReq.Instruction = parsed.Instruction
	}
	answer, err := e.Generator.Analyze(ctx, analyzeReq)
	if err != nil {
		return Fail(err)
	}
	e.remember(req.UserID, req.Message, answer)

	if !parsed.Rewrite || target == nil {
		return say(answer)
	}
	if target.Kind() != drive.KindDocument {
		return say(response.RewriteUnsupported(target.DisplayName()) + "\n\n" + answer)
	}

	if err := ws.ReplaceContent(ctx, target.ID, utils.SanitizeMarkdown(answer)); err != nil {
		return Fail(drive.Classify(err, "'"+target.DisplayName()+"'"))
	}
	e.Logger.Info(constant.ModuleDispatcher, "Document rewritten", map[string]interface{}{
		"user_id": req.UserID,
		"doc_id":  target.ID,
	})
	return Complete(Reply{
		Message: response.RewriteSaved(target.DisplayName()),
		DocURL:  target.WebURL(),
	})
}

func (e *Executor) chat(ctx context.Context, req Request) Outcome {
	answer, err := e.Generator.Chat(ctx, req.Message, e.Store.History(req.UserID))
	if err != nil {
		return Fail(err)
	}
	e.remember(req.UserID, req.Message, answer)
	return say(answer)
}

func (e *Executor) remember(userID, message, answer string) {
	now := time.Now()
	e.Store.AppendHistory(userID,
		store.ChatTurn{Role: store.RoleUser, Content: message, At: now},
		store.ChatTurn{Role: store.RoleModel, Content: answer, At: now},
	)
}
