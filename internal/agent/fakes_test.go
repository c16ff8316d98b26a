package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/business"
	errx "github.com/sharpchat/server/internal/core/error"
	"github.com/sharpchat/server/internal/kb"
	"github.com/sharpchat/server/internal/notify"
)

// fakeModel answers each prompt through respond and records every prompt it
// saw.
type fakeModel struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	prompt := input[len(input)-1].Content
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	content, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// promptAnswers dispatches on a distinctive substring of each rendered
// template.
func promptAnswers(answers map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for marker, answer := range answers {
			if strings.Contains(prompt, marker) {
				return answer, nil
			}
		}
		return "", errors.New("unexpected prompt")
	}
}

const (
	markerRouter        = "query router"
	markerContactMethod = "prefer to be contacted"
	markerFAQ           = "BUSINESS INFORMATION"
	markerConversation  = "SharpChatAI"
	markerFollowup      = "FOLLOW-UP:"
	markerIssue         = "MAIN ISSUE:"
	markerSummary       = "BRIEF SUMMARY:"
	markerConfirmation  = "DISPATCH OUTCOME"
)

// fakeSessions implements the store contract in memory: load never reports
// not-found, save merges the delta.
type fakeSessions struct {
	states  map[string]*model.ConversationState
	loadErr error
	saveErr error
	deleted []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{states: map[string]*model.ConversationState{}}
}

func (f *fakeSessions) Load(_ context.Context, threadID string) (*model.ConversationState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if s, ok := f.states[threadID]; ok {
		clone := *s
		clone.Messages = append([]*schema.Message(nil), s.Messages...)
		return &clone, nil
	}
	return &model.ConversationState{ThreadID: threadID}, nil
}

func (f *fakeSessions) Save(_ context.Context, threadID string, delta model.StateDelta) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	s, ok := f.states[threadID]
	if !ok {
		s = &model.ConversationState{ThreadID: threadID}
		f.states[threadID] = s
	}
	s.Messages = append(s.Messages, delta.Append...)
	if delta.BusinessID != nil {
		s.BusinessID = *delta.BusinessID
	}
	if delta.BusinessName != nil {
		s.BusinessName = *delta.BusinessName
	}
	if delta.BusinessEmail != nil {
		s.BusinessEmail = *delta.BusinessEmail
	}
	if delta.UserEmail != nil {
		s.UserEmail = *delta.UserEmail
	}
	if delta.UserPhone != nil {
		s.UserPhone = *delta.UserPhone
	}
	if delta.PreferredContact != nil {
		s.PreferredContact = *delta.PreferredContact
	}
	if delta.Route != nil {
		s.Route = *delta.Route
	}
	if delta.EmailSent != nil {
		s.EmailSent = *delta.EmailSent
	}
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, threadID string) error {
	delete(f.states, threadID)
	f.deleted = append(f.deleted, threadID)
	return nil
}

type fakeBusinesses struct {
	records map[string]business.Record
}

func (f *fakeBusinesses) GetByID(_ context.Context, businessID string) (*business.Record, error) {
	if rec, ok := f.records[businessID]; ok {
		return &rec, nil
	}
	return nil, errx.New(nil, 404, errx.NotFoundMessage)
}

func (f *fakeBusinesses) List(ctx context.Context) ([]business.Record, error) {
	return f.Find(ctx, business.Filter{})
}

func (f *fakeBusinesses) Find(_ context.Context, _ business.Filter) ([]business.Record, error) {
	var out []business.Record
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

type retrieverCall struct {
	businessID string
	query      string
	topK       int
}

type fakeRetriever struct {
	passages []kb.Passage
	err      error
	calls    []retrieverCall
}

func (f *fakeRetriever) Search(_ context.Context, businessID, query string, topK int) ([]kb.Passage, error) {
	f.calls = append(f.calls, retrieverCall{businessID: businessID, query: query, topK: topK})
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

type fakeNotifier struct {
	sent []notify.Notification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, n notify.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type testDeps struct {
	sessions   *fakeSessions
	businesses *fakeBusinesses
	retriever  *fakeRetriever
	notifier   *fakeNotifier
	router     *fakeModel
	responder  *fakeModel
}

func newTestAgent(d testDeps) *Agent {
	if d.sessions == nil {
		d.sessions = newFakeSessions()
	}
	if d.businesses == nil {
		d.businesses = &fakeBusinesses{records: map[string]business.Record{
			"BUS-001": {BusinessID: "BUS-001", Name: "Mama Ngozi Kitchen", PublicEmail: "owner@mamangozi.ng"},
		}}
	}
	if d.retriever == nil {
		d.retriever = &fakeRetriever{}
	}
	if d.notifier == nil {
		d.notifier = &fakeNotifier{}
	}
	if d.router == nil {
		d.router = &fakeModel{respond: promptAnswers(map[string]string{markerRouter: "conversation"})}
	}
	if d.responder == nil {
		d.responder = &fakeModel{respond: func(string) (string, error) { return "Happy to help!", nil }}
	}
	return &Agent{
		sessions:          d.sessions,
		businesses:        d.businesses,
		retriever:         d.retriever,
		notifier:          d.notifier,
		router:            d.router,
		responder:         d.responder,
		routerModelName:   "router-test",
		responseModelName: "responder-test",
		cfg:               model.ConversationConfig{HistoryWindow: 6, RetrievalTopK: 3},
	}
}
