package agent

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sharpchat/server/internal/agent/llm"
	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/agent/prompts"
	logx "github.com/sharpchat/server/pkg/logger"
)

// classify runs the single-shot routing call for the latest user utterance.
// Empty input short-circuits to the conversation tier without a model call.
// Unparseable or out-of-vocabulary output is coerced to the safe default and
// logged as a warning, never surfaced as an error.
func (a *Agent) classify(ctx context.Context, threadID, userQuery string) model.Route {
	if strings.TrimSpace(userQuery) == "" {
		return model.RouteConversation
	}

	out, err := a.router.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompts.RenderRouter(userQuery)),
	})
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("routing call failed, defaulting to conversation")
		return model.RouteConversation
	}
	llm.LogUsage(threadID, a.routerModelName, out)

	route, ok := model.ParseRoute(out.Content)
	if !ok {
		logx.Warn().Str("thread_id", threadID).Str("label", out.Content).Msg("invalid route label, defaulting to conversation")
		return model.RouteConversation
	}

	logx.Debug().Str("thread_id", threadID).Str("route", string(route)).Msg("query routed")
	return route
}

// classifyContactMethod runs the single-shot preference call for the handoff
// flow. An unknown label leaves the preference unset; the handler never
// guesses.
func (a *Agent) classifyContactMethod(ctx context.Context, threadID, userMessage string) (model.ContactMethod, bool) {
	out, err := a.router.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompts.RenderContactMethod(userMessage)),
	})
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("contact method call failed")
		return "", false
	}
	llm.LogUsage(threadID, a.routerModelName, out)

	method, ok := model.ParseContactMethod(out.Content)
	if !ok {
		logx.Debug().Str("thread_id", threadID).Str("label", out.Content).Msg("no contact preference stated yet")
		return "", false
	}
	return method, true
}
