package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Route is the routing outcome computed for a turn. It is recomputed on every
// message and stored for telemetry only; it never gates handler state.
type Route string

const (
	RouteTier1        Route = "tier1"        // FAQ-grounded answer
	RouteTier2        Route = "tier2"        // human-handoff collection flow
	RouteConversation Route = "conversation" // generic chit-chat, the safe default
)

// ParseRoute normalises a raw classifier label. The boolean reports whether
// the label was in-vocabulary; callers must coerce unknown labels to
// RouteConversation themselves so the coercion can be logged where it happens.
func ParseRoute(s string) (Route, bool) {
	switch Route(strings.ToLower(strings.TrimSpace(s))) {
	case RouteTier1:
		return RouteTier1, true
	case RouteTier2:
		return RouteTier2, true
	case RouteConversation:
		return RouteConversation, true
	default:
		return RouteConversation, false
	}
}

// ContactMethod is the customer's stated preference for being reached.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactBoth  ContactMethod = "both"
)

// ParseContactMethod normalises a raw preference label. Unknown labels return
// false and leave the preference unset; the handler never guesses.
func ParseContactMethod(s string) (ContactMethod, bool) {
	switch ContactMethod(strings.ToLower(strings.TrimSpace(s))) {
	case ContactEmail:
		return ContactEmail, true
	case ContactPhone:
		return ContactPhone, true
	case ContactBoth:
		return ContactBoth, true
	default:
		return "", false
	}
}

// ConversationState is the durable per-thread record. Messages are
// append-only; scalar fields hold the most recently saved value. Business
// identity is set once at session creation and immutable within a thread.
type ConversationState struct {
	ThreadID string
	Messages []*schema.Message

	BusinessID    string
	BusinessName  string
	BusinessEmail string

	// Contact fields collected incrementally across turns; empty means unset.
	// Once set they are sticky and never overwritten by extraction.
	UserEmail        string
	UserPhone        string
	PreferredContact ContactMethod

	Route     Route
	EmailSent bool
}

// StateDelta is a partial update merged into the persisted state. Append-only
// message deltas and overwrite-on-set scalars; nil pointers leave the
// persisted value untouched.
type StateDelta struct {
	Append []*schema.Message

	BusinessID    *string
	BusinessName  *string
	BusinessEmail *string

	UserEmail        *string
	UserPhone        *string
	PreferredContact *ContactMethod

	Route     *Route
	EmailSent *bool
}

// QueryInput is the inbound message intake contract.
type QueryInput struct {
	ThreadID   string `json:"thread_id"`
	BusinessID string `json:"business_id"`
	Query      string `json:"query"`

	// Optional contact hints supplied by the channel (e.g. the WhatsApp
	// number). Applied only when the session has no value yet.
	UserEmail string `json:"user_email,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`
}

// QueryResult is what a processed turn reports back to the intake layer.
type QueryResult struct {
	Answer           string  `json:"answer"`
	Route            Route   `json:"route"`
	NeedsContactInfo bool    `json:"needs_contact_info"`
	EmailSent        bool    `json:"email_sent"`
	BusinessName     string  `json:"business_name"`
	BusinessEmail    string  `json:"business_email"`
	UserEmail        string  `json:"user_email,omitempty"`
	UserPhone        string  `json:"user_phone,omitempty"`
	Confidence       float64 `json:"-"`
}

// StrPtr is a convenience for building deltas.
func StrPtr(s string) *string { return &s }

// RoutePtr is a convenience for building deltas.
func RoutePtr(r Route) *Route { return &r }

// BoolPtr is a convenience for building deltas.
func BoolPtr(b bool) *bool { return &b }

// MethodPtr is a convenience for building deltas.
func MethodPtr(m ContactMethod) *ContactMethod { return &m }
