package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/agent/prompts"
	logx "github.com/sharpchat/server/pkg/logger"
)

const faqClarification = "I couldn't find any information about that. Could you please rephrase your question?"

// handleFAQ answers from retrieved knowledge scoped to the session's business.
// Retrieval or generation failure degrades to a fixed apologetic reply; this
// handler never propagates an error.
func (a *Agent) handleFAQ(ctx context.Context, state *model.ConversationState) *model.QueryResult {
	query := lastUserMessage(state.Messages)

	passages, err := a.retriever.Search(ctx, state.BusinessID, query, a.cfg.RetrievalTopK)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("knowledge retrieval failed")
		return &model.QueryResult{Answer: a.faqApology(state), Route: model.RouteTier1}
	}
	if len(passages) == 0 {
		logx.Debug().Str("thread_id", state.ThreadID).Str("business_id", state.BusinessID).Msg("no passages retrieved")
		return &model.QueryResult{Answer: faqClarification, Route: model.RouteTier1}
	}

	var b strings.Builder
	var total float64
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d] %s", i+1, p.Text)
		total += p.Score
	}

	// Mean similarity across the retrieved passages, clipped to [0,1]. Logged
	// for telemetry; it never gates which answer the user gets.
	confidence := total / float64(len(passages))
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	logx.Debug().
		Str("thread_id", state.ThreadID).
		Int("passages", len(passages)).
		Float64("confidence", confidence).
		Msg("faq context assembled")

	history := formatChatHistory(priorTurns(state.Messages), a.cfg.HistoryWindow)
	answer, err := a.generate(ctx, state.ThreadID, prompts.RenderFAQ(state.BusinessName, b.String(), history, query))
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("faq generation failed")
		return &model.QueryResult{Answer: a.faqApology(state), Route: model.RouteTier1}
	}

	return &model.QueryResult{Answer: answer, Route: model.RouteTier1, Confidence: confidence}
}

func (a *Agent) faqApology(state *model.ConversationState) string {
	return fmt.Sprintf(
		"I apologize, but I'm having trouble accessing that information right now. Please try again in a moment or contact %s directly.",
		state.BusinessName,
	)
}

// priorTurns drops the in-flight user turn so prompts that take the current
// message separately never see it duplicated in the history block.
func priorTurns(messages []*schema.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}
	return messages[:len(messages)-1]
}
