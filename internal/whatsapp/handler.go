package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sharpchat/server/internal/agent/extract"
	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/business"
	logx "github.com/sharpchat/server/pkg/logger"
)

// Agent is the slice of the routing core the channel needs.
type Agent interface {
	Process(ctx context.Context, in model.QueryInput) *model.QueryResult
	ResetSession(ctx context.Context, threadID string) error
}

// exitKeywords end the bootstrap session outright in any state past INITIAL.
// Matched on the whole trimmed, lowercased message; a brand-new sender whose
// first message happens to be one of these still gets the name prompt.
var exitKeywords = map[string]bool{
	"exit":            true,
	"quit":            true,
	"end":             true,
	"stop":            true,
	"restart":         true,
	"reset":           true,
	"new":             true,
	"change business": true,
	"switch business": true,
}

// Handler drives the bootstrap state machine for one inbound message and
// returns the reply text. It never returns an error to the webhook; failures
// degrade to fixed replies so the sender always hears back.
type Handler struct {
	store      SessionStore
	businesses business.Repository
	agent      Agent
}

func NewHandler(store SessionStore, businesses business.Repository, ag Agent) *Handler {
	return &Handler{store: store, businesses: businesses, agent: ag}
}

// Handle processes one inbound WhatsApp message from sender (the raw From
// value, e.g. "whatsapp:+2348012345678") and returns the reply body.
func (h *Handler) Handle(ctx context.Context, sender, body string) string {
	number := strings.TrimPrefix(strings.TrimSpace(sender), "whatsapp:")
	text := strings.TrimSpace(body)

	sess, err := h.store.Load(ctx, number)
	if err != nil {
		logx.Error().Err(err).Str("sender", number).Msg("failed to load whatsapp session")
		return "Sorry, something went wrong on our side. Please try again in a moment."
	}

	if sess.State != StateInitial && exitKeywords[strings.ToLower(text)] {
		h.teardown(ctx, number, sess)
		return "Your session has ended. Send any message to start again!"
	}

	if text == "" && sess.State != StateInitial {
		return "Please send a message so I can help you."
	}

	// Unknown phases from older deployments restart the flow at the name step
	// with everything else cleared.
	if !sess.State.valid() {
		logx.Warn().Str("sender", number).Str("state", string(sess.State)).Msg("unknown session state, resetting")
		sess = &Session{State: StateAwaitingName}
		h.save(ctx, number, sess)
		return "Let's start over. What's your name?"
	}

	switch sess.State {
	case StateInitial:
		sess.State = StateAwaitingName
		h.save(ctx, number, sess)
		return "Hello! Welcome to SharpChat AI. What's your name?"

	case StateAwaitingName:
		return h.handleName(ctx, number, sess, text)

	case StateAwaitingBusiness:
		return h.handleBusinessChoice(ctx, number, sess, text)

	default: // StateChatting, the only phase left after valid()
		return h.handleChat(ctx, number, sess, text)
	}
}

func (h *Handler) handleName(ctx context.Context, number string, sess *Session, text string) string {
	if text == "" {
		return "I didn't catch that. What's your name?"
	}
	sess.Name = text
	sess.State = StateAwaitingBusiness
	h.save(ctx, number, sess)

	menu, err := h.businessMenu(ctx)
	if err != nil {
		logx.Error().Err(err).Str("sender", number).Msg("failed to list businesses")
		return fmt.Sprintf("Nice to meet you, %s! I couldn't load the business list right now. Please send any message to try again.", sess.Name)
	}
	return fmt.Sprintf("Nice to meet you, %s! Which business would you like to chat with?\n\n%s\n\nReply with the business ID or name.", sess.Name, menu)
}

func (h *Handler) handleBusinessChoice(ctx context.Context, number string, sess *Session, text string) string {
	records, err := h.businesses.List(ctx)
	if err != nil {
		logx.Error().Err(err).Str("sender", number).Msg("failed to list businesses")
		return "I couldn't load the business list right now. Please try again."
	}

	rec, ok := resolveBusiness(text, records)
	if !ok {
		menu := renderMenu(records)
		return fmt.Sprintf("I couldn't find that business. Please pick one of these:\n\n%s\n\nReply with the business ID or name.", menu)
	}

	// Fresh thread per selection keeps history from leaking across
	// businesses when the same sender switches.
	sess.BusinessID = rec.BusinessID
	sess.ThreadID = newThreadID(number)
	sess.State = StateChatting
	h.save(ctx, number, sess)

	logx.Info().Str("sender", number).Str("business_id", rec.BusinessID).Str("thread_id", sess.ThreadID).Msg("whatsapp chat started")
	return fmt.Sprintf("Great! You're now chatting with %s. How can I help you today?\n\n(Send \"exit\" anytime to end the session.)", rec.Name)
}

func (h *Handler) handleChat(ctx context.Context, number string, sess *Session, text string) string {
	if sess.BusinessID == "" || sess.ThreadID == "" {
		logx.Warn().Str("sender", number).Msg("chatting session missing business or thread, resetting")
		*sess = Session{State: StateAwaitingName}
		h.save(ctx, number, sess)
		return "Let's start over. What's your name?"
	}

	result := h.agent.Process(ctx, model.QueryInput{
		ThreadID:   sess.ThreadID,
		BusinessID: sess.BusinessID,
		Query:      text,
		UserPhone:  number,
	})
	return result.Answer
}

// Session exposes the stored bootstrap record for debug endpoints.
func (h *Handler) Session(ctx context.Context, number string) (*Session, error) {
	return h.store.Load(ctx, number)
}

// EndSession removes the sender's bootstrap session and its chat thread, the
// external reset path.
func (h *Handler) EndSession(ctx context.Context, number string) error {
	sess, err := h.store.Load(ctx, number)
	if err != nil {
		return err
	}
	if sess.ThreadID != "" {
		if err := h.agent.ResetSession(ctx, sess.ThreadID); err != nil {
			return err
		}
	}
	return h.store.Delete(ctx, number)
}

func (h *Handler) teardown(ctx context.Context, number string, sess *Session) {
	if sess.ThreadID != "" {
		if err := h.agent.ResetSession(ctx, sess.ThreadID); err != nil {
			logx.Error().Err(err).Str("thread_id", sess.ThreadID).Msg("failed to delete chat thread")
		}
	}
	if err := h.store.Delete(ctx, number); err != nil {
		logx.Error().Err(err).Str("sender", number).Msg("failed to delete whatsapp session")
	}
}

func (h *Handler) save(ctx context.Context, number string, sess *Session) {
	if err := h.store.Save(ctx, number, sess); err != nil {
		logx.Error().Err(err).Str("sender", number).Msg("failed to save whatsapp session")
	}
}

func (h *Handler) businessMenu(ctx context.Context) (string, error) {
	records, err := h.businesses.List(ctx)
	if err != nil {
		return "", err
	}
	return renderMenu(records), nil
}

func renderMenu(records []business.Record) string {
	if len(records) == 0 {
		return "(no businesses available yet)"
	}
	var lines []string
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s - %s", rec.BusinessID, rec.Name))
	}
	return strings.Join(lines, "\n")
}

// newThreadID mints a channel-scoped thread identifier. The random suffix
// keeps a re-selected business from resuming the previous thread.
func newThreadID(number string) string {
	digits := extract.NormalizePhone(number)
	digits = strings.TrimPrefix(digits, "+")
	return fmt.Sprintf("whatsapp_%s_%s", digits, uuid.NewString()[:8])
}
