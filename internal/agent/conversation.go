package agent

import (
	"context"

	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/agent/prompts"
	logx "github.com/sharpchat/server/pkg/logger"
)

const conversationFallback = "I'm having trouble right now. How can I help you with your inquiry?"

// handleConversation is the catch-all tier for greetings and anything the
// other tiers don't claim. A generation failure degrades to a fixed friendly
// reply.
func (a *Agent) handleConversation(ctx context.Context, state *model.ConversationState) *model.QueryResult {
	query := lastUserMessage(state.Messages)
	history := formatChatHistory(priorTurns(state.Messages), a.cfg.HistoryWindow)

	answer, err := a.generate(ctx, state.ThreadID, prompts.RenderConversation(state.BusinessName, history, query))
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("conversation generation failed")
		return &model.QueryResult{Answer: conversationFallback, Route: model.RouteConversation}
	}
	return &model.QueryResult{Answer: answer, Route: model.RouteConversation}
}
