package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharpchat/server/internal/agent/model"
)

func TestClassifyEmptyInputSkipsModel(t *testing.T) {
	router := &fakeModel{respond: func(string) (string, error) {
		t.Fatal("router model must not be called for empty input")
		return "", nil
	}}
	ag := newTestAgent(testDeps{router: router})

	require.Equal(t, model.RouteConversation, ag.classify(context.Background(), "t", ""))
	require.Equal(t, model.RouteConversation, ag.classify(context.Background(), "t", "   \n\t"))
	require.Equal(t, 0, router.calls())
}

func TestClassifyNormalizesLabels(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Route
	}{
		{"tier1", model.RouteTier1},
		{" Tier2 \n", model.RouteTier2},
		{"CONVERSATION", model.RouteConversation},
	}
	for _, tt := range tests {
		router := &fakeModel{respond: func(string) (string, error) { return tt.raw, nil }}
		ag := newTestAgent(testDeps{router: router})
		require.Equal(t, tt.want, ag.classify(context.Background(), "t", "what are your hours?"))
	}
}

func TestClassifyCoercesUnknownLabel(t *testing.T) {
	router := &fakeModel{respond: func(string) (string, error) { return "escalate", nil }}
	ag := newTestAgent(testDeps{router: router})

	require.Equal(t, model.RouteConversation, ag.classify(context.Background(), "t", "help"))
}

func TestClassifyModelFailureDefaultsToConversation(t *testing.T) {
	router := &fakeModel{respond: func(string) (string, error) { return "", errors.New("quota exceeded") }}
	ag := newTestAgent(testDeps{router: router})

	require.Equal(t, model.RouteConversation, ag.classify(context.Background(), "t", "help"))
}

func TestClassifyContactMethodUnknownLeavesUnset(t *testing.T) {
	router := &fakeModel{respond: func(string) (string, error) { return "unknown", nil }}
	ag := newTestAgent(testDeps{router: router})

	method, ok := ag.classifyContactMethod(context.Background(), "t", "just connect me")
	require.False(t, ok)
	require.Empty(t, method)
}
