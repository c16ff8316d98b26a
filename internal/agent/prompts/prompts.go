// Package prompts holds the embedded prompt templates for every model call
// the routing core makes. Templates use {token} markers rendered with a
// replacer so literal braces elsewhere in the text survive untouched.
package prompts

import (
	_ "embed"
	"strings"
)

//go:embed template/router_prompt.txt
var routerPrompt string

//go:embed template/faq_prompt.txt
var faqPrompt string

//go:embed template/conversation_prompt.txt
var conversationPrompt string

//go:embed template/contact_method_prompt.txt
var contactMethodPrompt string

//go:embed template/followup_prompt.txt
var followupPrompt string

//go:embed template/issue_prompt.txt
var issuePrompt string

//go:embed template/summary_prompt.txt
var summaryPrompt string

//go:embed template/confirmation_prompt.txt
var confirmationPrompt string

// RenderRouter builds the one-word classification prompt.
func RenderRouter(userQuery string) string {
	return strings.NewReplacer(
		"{user_query}", userQuery,
	).Replace(routerPrompt)
}

// RenderFAQ builds the grounded answer prompt from labeled passages and a
// bounded history window.
func RenderFAQ(businessName, context, chatHistory, userMessage string) string {
	return strings.NewReplacer(
		"{business_name}", businessName,
		"{context}", context,
		"{chat_history}", chatHistory,
		"{user_message}", userMessage,
	).Replace(faqPrompt)
}

// RenderConversation builds the persona-grounded fallback prompt.
func RenderConversation(businessName, chatHistory, userQuery string) string {
	return strings.NewReplacer(
		"{business_name}", businessName,
		"{chat_history}", chatHistory,
		"{user_query}", userQuery,
	).Replace(conversationPrompt)
}

// RenderContactMethod builds the single-shot preference classification prompt.
func RenderContactMethod(userMessage string) string {
	return strings.NewReplacer(
		"{user_message}", userMessage,
	).Replace(contactMethodPrompt)
}

// RenderFollowup builds the contextual question for still-missing contact fields.
func RenderFollowup(businessName, preferredMethod, missingFields, chatHistory, userMessage string) string {
	return strings.NewReplacer(
		"{business_name}", businessName,
		"{preferred_method}", preferredMethod,
		"{missing_fields}", missingFields,
		"{chat_history}", chatHistory,
		"{user_message}", userMessage,
	).Replace(followupPrompt)
}

// RenderIssue builds the one-sentence main-issue extraction prompt.
func RenderIssue(conversation string) string {
	return strings.NewReplacer(
		"{conversation}", conversation,
	).Replace(issuePrompt)
}

// RenderSummary builds the 2-3 sentence conversation summary prompt.
func RenderSummary(conversation string) string {
	return strings.NewReplacer(
		"{conversation}", conversation,
	).Replace(summaryPrompt)
}

// RenderConfirmation builds the post-dispatch confirmation prompt.
func RenderConfirmation(businessName, businessEmail, outcome, contactLines string) string {
	return strings.NewReplacer(
		"{business_name}", businessName,
		"{business_email}", businessEmail,
		"{outcome}", outcome,
		"{contact_lines}", contactLines,
	).Replace(confirmationPrompt)
}
