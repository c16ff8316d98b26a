// Package agent implements the per-message routing core: load session, route
// the turn, run one tier handler, persist the delta. Every path out of
// Process carries a user-facing answer; errors are logged and degraded, never
// returned to the channel.
package agent

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sharpchat/server/internal/agent/extract"
	"github.com/sharpchat/server/internal/agent/llm"
	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/business"
	"github.com/sharpchat/server/internal/kb"
	"github.com/sharpchat/server/internal/notify"
	logx "github.com/sharpchat/server/pkg/logger"
)

const (
	processFallback = "I'm having trouble processing your request. Please try again."

	fallbackBusinessName  = "this business"
	fallbackBusinessEmail = "support@example.com"
)

// Agent wires the tier handlers to their ports. It holds no per-conversation
// state; everything mutable lives in the session store, so one Agent serves
// all tenants and threads concurrently.
type Agent struct {
	sessions   model.SessionRepository
	businesses business.Repository
	retriever  kb.Retriever
	notifier   notify.Notifier

	router            llm.ChatModel
	responder         llm.ChatModel
	routerModelName   string
	responseModelName string

	cfg model.ConversationConfig
}

// Deps enumerates the agent's collaborators. All are required.
type Deps struct {
	Sessions   model.SessionRepository
	Businesses business.Repository
	Retriever  kb.Retriever
	Notifier   notify.Notifier
	Models     *llm.ChatModels
	Config     model.ConversationConfig
}

func New(deps Deps) *Agent {
	cfg := deps.Config
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 6
	}
	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 3
	}
	return &Agent{
		sessions:          deps.Sessions,
		businesses:        deps.Businesses,
		retriever:         deps.Retriever,
		notifier:          deps.Notifier,
		router:            deps.Models.Router,
		responder:         deps.Models.Response,
		routerModelName:   deps.Models.RouterModelName,
		responseModelName: deps.Models.ResponseModelName,
		cfg:               cfg,
	}
}

// Process handles one inbound message end to end. It always returns a result
// with a non-empty answer; the outermost recovery converts anything that
// escapes the tier handlers into a fixed reply.
func (a *Agent) Process(ctx context.Context, in model.QueryInput) (result *model.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Interface("panic", r).Str("thread_id", in.ThreadID).Msg("message processing panicked")
			result = &model.QueryResult{Answer: processFallback, Route: model.RouteConversation}
		}
	}()

	result, err := a.process(ctx, in)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", in.ThreadID).Msg("message processing failed")
		return &model.QueryResult{Answer: processFallback, Route: model.RouteConversation}
	}
	return result
}

func (a *Agent) process(ctx context.Context, in model.QueryInput) (*model.QueryResult, error) {
	state, err := a.sessions.Load(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}

	var delta model.StateDelta

	// Business identity is pinned on the session's first message and never
	// changes within a thread.
	if state.BusinessID == "" {
		name, email := a.resolveBusiness(ctx, in.BusinessID)
		state.BusinessID = in.BusinessID
		state.BusinessName = name
		state.BusinessEmail = email
		delta.BusinessID = model.StrPtr(in.BusinessID)
		delta.BusinessName = model.StrPtr(name)
		delta.BusinessEmail = model.StrPtr(email)
	}

	// Channel hints fill absent contact fields only; collected values stay.
	if hint := extract.Sanitize(in.UserEmail); hint != "" && extract.Sanitize(state.UserEmail) == "" {
		state.UserEmail = hint
		delta.UserEmail = model.StrPtr(hint)
	}
	if hint := extract.NormalizePhone(extract.Sanitize(in.UserPhone)); hint != "" && extract.Sanitize(state.UserPhone) == "" {
		state.UserPhone = hint
		delta.UserPhone = model.StrPtr(hint)
	}

	userMsg := schema.UserMessage(in.Query)
	state.Messages = append(state.Messages, userMsg)
	delta.Append = append(delta.Append, userMsg)

	route := a.classify(ctx, in.ThreadID, in.Query)
	state.Route = route
	delta.Route = model.RoutePtr(route)

	var result *model.QueryResult
	switch route {
	case model.RouteTier1:
		result = a.handleFAQ(ctx, state)
	case model.RouteTier2:
		result = a.handleHandoff(ctx, state, &delta)
	default:
		result = a.handleConversation(ctx, state)
	}

	delta.Append = append(delta.Append, schema.AssistantMessage(result.Answer, nil))
	if err := a.sessions.Save(ctx, in.ThreadID, delta); err != nil {
		// The user already has their answer; a persistence failure costs the
		// next turn some context, not this one.
		logx.Error().Err(err).Str("thread_id", in.ThreadID).Msg("failed to save session delta")
	}

	result.BusinessName = state.BusinessName
	result.BusinessEmail = state.BusinessEmail
	result.UserEmail = state.UserEmail
	result.UserPhone = state.UserPhone
	return result, nil
}

// resolveBusiness fetches the display identity for the reply path. A lookup
// failure is masked with generic placeholders here; endpoints that manage
// businesses surface not-found explicitly instead.
func (a *Agent) resolveBusiness(ctx context.Context, businessID string) (name, email string) {
	rec, err := a.businesses.GetByID(ctx, businessID)
	if err != nil {
		logx.Warn().Err(err).Str("business_id", businessID).Msg("business lookup failed, using placeholders")
		return fallbackBusinessName, fallbackBusinessEmail
	}
	name = rec.Name
	email = rec.PublicEmail
	if name == "" {
		name = fallbackBusinessName
	}
	if email == "" {
		email = fallbackBusinessEmail
	}
	return name, email
}

// generate runs one response-model call and returns the trimmed text.
func (a *Agent) generate(ctx context.Context, threadID, prompt string) (string, error) {
	out, err := a.responder.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	llm.LogUsage(threadID, a.responseModelName, out)
	return strings.TrimSpace(out.Content), nil
}

// ResetSession drops the stored conversation outright.
func (a *Agent) ResetSession(ctx context.Context, threadID string) error {
	return a.sessions.Delete(ctx, threadID)
}

// Session exposes the stored state for debug endpoints.
func (a *Agent) Session(ctx context.Context, threadID string) (*model.ConversationState, error) {
	return a.sessions.Load(ctx, threadID)
}
