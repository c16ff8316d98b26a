package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharpchat/server/internal/agent/extract"
	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/agent/prompts"
	"github.com/sharpchat/server/internal/notify"
	logx "github.com/sharpchat/server/pkg/logger"
)

const (
	handoffIntro = "I'd be happy to connect you with the business owner! To make sure they can reach you, could you please share your email address or phone number?"

	issueFallback   = "Customer support request"
	summaryFallback = "Customer requested to speak with the business owner via chat."

	notProvided = "Not provided"
)

// handleHandoff runs the contact collection flow: fill what extraction can
// find in the user's own turns, ask for what is still missing, and once the
// preferred channel is satisfied dispatch the owner notification exactly once
// per completion. All failures degrade to fixed replies; nothing propagates.
func (a *Agent) handleHandoff(ctx context.Context, state *model.ConversationState, delta *model.StateDelta) *model.QueryResult {
	// Placeholder sentinels persisted by older writes are treated as absent.
	email := extract.Sanitize(state.UserEmail)
	phone := extract.Sanitize(state.UserPhone)
	turns := userTurns(state.Messages)

	// Collected values are sticky: extraction only fills absent fields,
	// scanning the user's turns oldest to newest.
	if email == "" {
		for _, turn := range turns {
			if found, ok := extract.Email(turn); ok {
				email = found
				state.UserEmail = found
				delta.UserEmail = model.StrPtr(found)
				logx.Debug().Str("thread_id", state.ThreadID).Msg("email extracted from conversation")
				break
			}
		}
	}
	if phone == "" {
		for _, turn := range turns {
			if found, ok := extract.Phone(turn); ok {
				phone = found
				state.UserPhone = found
				delta.UserPhone = model.StrPtr(found)
				logx.Debug().Str("thread_id", state.ThreadID).Msg("phone extracted from conversation")
				break
			}
		}
	}

	method := state.PreferredContact
	if method == "" {
		if classified, ok := a.classifyContactMethod(ctx, state.ThreadID, lastUserMessage(state.Messages)); ok {
			method = classified
			state.PreferredContact = classified
			delta.PreferredContact = model.MethodPtr(classified)
		}
	}

	if !handoffComplete(method, email, phone) {
		return a.askForContact(ctx, state, method, email, phone)
	}
	return a.dispatchHandoff(ctx, state, delta, email, phone)
}

// handoffComplete reports whether the stated channel preference is satisfied.
// No preference yet means not complete regardless of what was collected.
func handoffComplete(method model.ContactMethod, email, phone string) bool {
	switch method {
	case model.ContactEmail:
		return email != ""
	case model.ContactPhone:
		return phone != ""
	case model.ContactBoth:
		return email != "" && phone != ""
	default:
		return false
	}
}

// askForContact produces the next collection question. The fixed intro is
// reserved for the very first ask when nothing is known; every later ask is
// generated in context so the user isn't re-asked for what they already gave.
func (a *Agent) askForContact(ctx context.Context, state *model.ConversationState, method model.ContactMethod, email, phone string) *model.QueryResult {
	result := &model.QueryResult{Route: model.RouteTier2, NeedsContactInfo: true}

	if method == "" && email == "" && phone == "" {
		result.Answer = handoffIntro
		return result
	}

	var missing []string
	switch method {
	case model.ContactEmail:
		missing = append(missing, "email address")
	case model.ContactPhone:
		missing = append(missing, "phone number")
	case model.ContactBoth:
		if email == "" {
			missing = append(missing, "email address")
		}
		if phone == "" {
			missing = append(missing, "phone number")
		}
	default:
		missing = append(missing, "preferred contact method (email or phone)")
	}

	history := formatChatHistory(priorTurns(state.Messages), a.cfg.HistoryWindow)
	answer, err := a.generate(ctx, state.ThreadID, prompts.RenderFollowup(
		state.BusinessName,
		string(method),
		strings.Join(missing, " and "),
		history,
		lastUserMessage(state.Messages),
	))
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("followup generation failed")
		result.Answer = fmt.Sprintf("Could you please share your %s so the team at %s can reach you?",
			strings.Join(missing, " and "), state.BusinessName)
		return result
	}
	result.Answer = answer
	return result
}

// dispatchHandoff extracts the issue and summary, sends the owner
// notification, and confirms the outcome to the user. email_sent reflects the
// actual dispatch result and is never downgraded once a completion succeeded.
func (a *Agent) dispatchHandoff(ctx context.Context, state *model.ConversationState, delta *model.StateDelta, email, phone string) *model.QueryResult {
	conversation := formatChatHistory(state.Messages, 0)

	issue, err := a.generate(ctx, state.ThreadID, prompts.RenderIssue(conversation))
	if err != nil || issue == "" {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("issue extraction failed")
		issue = issueFallback
	}
	summary, err := a.generate(ctx, state.ThreadID, prompts.RenderSummary(conversation))
	if err != nil || summary == "" {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("summary extraction failed")
		summary = summaryFallback
	}

	notification := notify.Notification{
		BusinessName:  state.BusinessName,
		BusinessEmail: state.BusinessEmail,
		UserEmail:     orNotProvided(email),
		UserPhone:     orNotProvided(phone),
		MainIssue:     issue,
		Summary:       summary,
	}

	sendErr := a.notifier.Send(ctx, notification)
	emailSent := sendErr == nil
	if sendErr != nil {
		logx.Error().Err(sendErr).Str("thread_id", state.ThreadID).Str("business_id", state.BusinessID).Msg("handoff notification failed")
	} else {
		logx.Info().Str("thread_id", state.ThreadID).Str("business_id", state.BusinessID).Msg("handoff notification dispatched")
	}

	if emailSent || !state.EmailSent {
		state.EmailSent = emailSent
		delta.EmailSent = model.BoolPtr(emailSent)
	}

	result := &model.QueryResult{Route: model.RouteTier2, EmailSent: state.EmailSent}

	outcome := "sent"
	if !emailSent {
		outcome = "failed"
	}
	contactLines := fmt.Sprintf("Email: %s\nPhone: %s", orNotProvided(email), orNotProvided(phone))

	answer, err := a.generate(ctx, state.ThreadID, prompts.RenderConfirmation(
		state.BusinessName, state.BusinessEmail, outcome, contactLines,
	))
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("confirmation generation failed")
		answer = a.fixedConfirmation(state, emailSent)
	}
	result.Answer = answer
	return result
}

func (a *Agent) fixedConfirmation(state *model.ConversationState, emailSent bool) string {
	if emailSent {
		return fmt.Sprintf("Perfect! I've passed your details along to %s. They'll reach out to you soon.", state.BusinessName)
	}
	return fmt.Sprintf(
		"I apologize, but I couldn't deliver your request right now. Please contact %s directly at %s.",
		state.BusinessName, state.BusinessEmail,
	)
}

func orNotProvided(v string) string {
	if v == "" {
		return notProvided
	}
	return v
}
