package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/business"
	errx "github.com/sharpchat/server/internal/core/error"
	"github.com/sharpchat/server/internal/kb"
	"github.com/sharpchat/server/internal/whatsapp"
)

type stubChat struct {
	inputs []model.QueryInput
	resets []string
}

func (s *stubChat) Process(_ context.Context, in model.QueryInput) *model.QueryResult {
	s.inputs = append(s.inputs, in)
	return &model.QueryResult{
		Answer:       "We open at 9am.",
		Route:        model.RouteTier1,
		BusinessName: "Mama Ngozi Kitchen",
	}
}

func (s *stubChat) ResetSession(_ context.Context, threadID string) error {
	s.resets = append(s.resets, threadID)
	return nil
}

func (s *stubChat) Session(_ context.Context, threadID string) (*model.ConversationState, error) {
	return &model.ConversationState{ThreadID: threadID, BusinessID: "BUS-001"}, nil
}

type stubRepo struct {
	records []business.Record
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*business.Record, error) {
	for i := range s.records {
		if s.records[i].BusinessID == id {
			return &s.records[i], nil
		}
	}
	return nil, errx.New(nil, 404, errx.NotFoundMessage)
}

func (s *stubRepo) List(ctx context.Context) ([]business.Record, error) {
	return s.Find(ctx, business.Filter{})
}

func (s *stubRepo) Find(_ context.Context, _ business.Filter) ([]business.Record, error) {
	return s.records, nil
}

type stubIndex struct{}

func (stubIndex) Upsert(_ context.Context, _ []kb.Vector) error { return nil }
func (stubIndex) Query(_ context.Context, _ []float32, _ string, _ int) ([]kb.Match, error) {
	return nil, nil
}
func (stubIndex) DeleteByBusiness(_ context.Context, _ string) error { return nil }
func (stubIndex) DeleteAll(_ context.Context) error                  { return nil }
func (stubIndex) Stats(_ context.Context) (kb.Stats, error) {
	return kb.Stats{Dimension: 4, TotalVectorCount: 7}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3, 0.4}
	}
	return out, nil
}

func (stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func (stubEmbedder) Dimension() int { return 4 }

type memWaStore struct {
	sessions map[string]*whatsapp.Session
}

func (m *memWaStore) Load(_ context.Context, sender string) (*whatsapp.Session, error) {
	if s, ok := m.sessions[sender]; ok {
		return s, nil
	}
	return &whatsapp.Session{State: whatsapp.StateInitial}, nil
}

func (m *memWaStore) Save(_ context.Context, sender string, s *whatsapp.Session) error {
	m.sessions[sender] = s
	return nil
}

func (m *memWaStore) Delete(_ context.Context, sender string) error {
	delete(m.sessions, sender)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubChat) {
	t.Helper()
	chat := &stubChat{}
	repo := &stubRepo{records: []business.Record{{BusinessID: "BUS-001", Name: "Mama Ngozi Kitchen"}}}
	engine := kb.NewEngine(repo, stubIndex{}, stubEmbedder{}, kb.SyncConfig{})
	wa := whatsapp.NewHandler(&memWaStore{sessions: map[string]*whatsapp.Session{}}, repo, chat)

	return NewRouter(NewChatHandler(chat), NewKBHandler(engine), NewWhatsAppHandler(wa)), chat
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatEndpoint(t *testing.T) {
	router, chat := newTestRouter(t)

	body := `{"thread_id":"t-1","business_id":"BUS-001","query":"what are your hours?"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "We open at 9am.", result.Answer)
	require.Equal(t, model.RouteTier1, result.Route)

	require.Len(t, chat.inputs, 1)
	require.Equal(t, "t-1", chat.inputs[0].ThreadID)
}

func TestChatEndpointValidation(t *testing.T) {
	router, chat := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"hi"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{not json`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Empty(t, chat.inputs)
}

func TestSessionEndpoints(t *testing.T) {
	router, chat := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/session/t-9", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view sessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "t-9", view.ThreadID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/chat/session/t-9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"t-9"}, chat.resets)
}

func TestKBStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kb/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats kb.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 7, stats.TotalVectorCount)
}

func TestKBSyncBusinessNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/kb/business/BUS-404/sync", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "not found")
}

func TestWhatsAppSessionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatsapp/session/+2348012345678", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sess whatsapp.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.Equal(t, whatsapp.StateInitial, sess.State)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/whatsapp/session/+2348012345678/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "reset")
}

func TestWhatsAppWebhookRepliesWithTwiML(t *testing.T) {
	router, _ := newTestRouter(t)

	form := url.Values{"From": {"whatsapp:+2348012345678"}, "Body": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "<Response>")
	require.Contains(t, rec.Body.String(), "Welcome to SharpChat AI")
}
