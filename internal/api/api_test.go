package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/emailtriage/internal/draft"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/store/storetest"
	"github.com/mixelka/emailtriage/internal/triage"
	"github.com/mixelka/emailtriage/pkg/models"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, apiKey string, msgs ...models.Message) (*echo.Echo, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	for i := range msgs {
		require.NoError(t, st.Insert(context.Background(), &msgs[i]))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := triage.NewService(st, models.Session{Owner: "me@example.com"}, logger,
		triage.WithClock(func() time.Time { return now }))

	e := NewServer(ServerDeps{
		Triage:      svc,
		Store:       st,
		StoreAPIKey: apiKey,
		Logger:      logger,
	})
	return e, st
}

func inbound(id, subject string, needsReply bool) models.Message {
	return models.Message{
		ID:         id,
		From:       "sender-" + id + "@example.com",
		To:         "me@example.com",
		Subject:    subject,
		Body:       "Body of " + id,
		ReceivedAt: now.Add(-time.Hour),
		NeedsReply: needsReply,
	}
}

func call(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", triage.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", triage.ErrValidation, store.ErrNotFound), http.StatusBadRequest},
		{triage.ErrNotFound, http.StatusNotFound},
		{store.ErrNotFound, http.StatusNotFound},
		{store.ErrAlreadyExists, http.StatusConflict},
		{fmt.Errorf("%w: %w", triage.ErrStoreUnavailable, errors.New("boom")), http.StatusServiceUnavailable},
		{store.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListEmailsDefaultsToNeedsReply(t *testing.T) {
	e, _ := newTestServer(t, "",
		inbound("a", "Question about invoice", true),
		inbound("b", "Weekly newsletter", false),
	)

	rec, env := call(t, e, http.MethodGet, "/api/emails", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var list EmailList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "a", list.Emails[0].ID)

	rec, env = call(t, e, http.MethodGet, "/api/emails?filter=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Total)
}

func TestListEmailsSearchAndTrailingSlash(t *testing.T) {
	e, _ := newTestServer(t, "",
		inbound("a", "Question about invoice", true),
		inbound("b", "Lunch plans", true),
	)

	rec, env := call(t, e, http.MethodGet, "/api/emails/?search=INVOICE", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list EmailList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Emails, 1)
	assert.Equal(t, "a", list.Emails[0].ID)
}

func TestListEmailsRejectsUnknownFilter(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec, env := call(t, e, http.MethodGet, "/api/emails?filter=spam", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "spam")

	rec, _ = call(t, e, http.MethodGet, "/api/emails?date=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmail(t *testing.T) {
	e, _ := newTestServer(t, "", inbound("a", "URGENT: server down", true))

	rec, env := call(t, e, http.MethodGet, "/api/emails/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, models.PriorityUrgent, msg.ReplyPriority)
	assert.NotEmpty(t, msg.AISummary)

	rec, env = call(t, e, http.MethodGet, "/api/emails/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestViewMarksRead(t *testing.T) {
	e, st := newTestServer(t, "", inbound("a", "Hello", true))

	rec, _ := call(t, e, http.MethodPost, "/api/emails/a/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	msg, err := st.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, msg.IsRead)
}

func TestMarkReadAndArchive(t *testing.T) {
	e, st := newTestServer(t, "", inbound("a", "Hello", true))

	rec, _ := call(t, e, http.MethodPost, "/api/emails/a/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = call(t, e, http.MethodPost, "/api/emails/a/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	msg, err := st.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, msg.IsRead)
	assert.True(t, msg.IsArchived)

	rec, _ = call(t, e, http.MethodPost, "/api/emails/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReply(t *testing.T) {
	e, st := newTestServer(t, "", inbound("a", "Hello", true))

	rec, env := call(t, e, http.MethodPost, "/api/emails/a/reply", ReplyRequest{Content: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = call(t, e, http.MethodPost, "/api/emails/a/reply", ReplyRequest{Content: "Thanks!"})
	require.Equal(t, http.StatusOK, rec.Code)

	msg, err := st.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, msg.NeedsReply)
	assert.True(t, msg.IsRead)
}

func TestBulk(t *testing.T) {
	e, st := newTestServer(t, "",
		inbound("a", "One", true),
		inbound("b", "Two", true),
	)

	rec, _ := call(t, e, http.MethodPost, "/api/emails/bulk", BulkRequest{Action: "archive", IDs: []string{"a", "missing"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msg, err := st.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, msg.IsArchived, "a failed batch changes nothing")

	rec, _ = call(t, e, http.MethodPost, "/api/emails/bulk", BulkRequest{Action: "explode", IDs: []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(t, e, http.MethodPost, "/api/emails/bulk", BulkRequest{Action: "mark_read", IDs: []string{"a", "b"}})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, id := range []string{"a", "b"} {
		msg, err := st.Get(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, msg.IsRead, id)
	}
}

func TestGenerateDraft(t *testing.T) {
	e, _ := newTestServer(t, "", inbound("a", "Budget", true))

	rec, env := call(t, e, http.MethodPost, "/api/emails/draft", DraftRequest{EmailID: "a", Intent: "decline"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result triage.DraftResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Contains(t, result.Draft, "Dear sender-a@example.com")
	assert.Contains(t, result.Draft, draft.IntentDecline.Context())
	assert.False(t, result.NotFound)

	rec, env = call(t, e, http.MethodPost, "/api/emails/draft", DraftRequest{EmailID: "a", Context: "Decline"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Contains(t, result.Draft, "\n\nDecline\n\n")

	rec, _ = call(t, e, http.MethodPost, "/api/emails/draft", DraftRequest{EmailID: "a", Intent: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = call(t, e, http.MethodPost, "/api/emails/draft", DraftRequest{EmailID: "missing"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.NotFound)
}

func TestSummarize(t *testing.T) {
	e, _ := newTestServer(t, "", inbound("a", "Budget", true))

	rec, env := call(t, e, http.MethodPost, "/api/emails/summarize", SummarizeRequest{EmailID: "a"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result triage.SummaryResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Available)
	assert.Equal(t, "Body of a", result.Summary)
}

func TestSaveDraft(t *testing.T) {
	e, st := newTestServer(t, "", inbound("a", "Budget", true))

	rec, env := call(t, e, http.MethodPost, "/api/drafts", triage.DraftInput{ID: "a", Content: "Will do"})
	require.Equal(t, http.StatusOK, rec.Code)

	var draft models.Message
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.True(t, draft.IsDraft)
	assert.Equal(t, "Re: Budget", draft.Subject)

	stored, err := st.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", stored.InReplyTo)

	rec, _ = call(t, e, http.MethodPost, "/api/drafts", triage.DraftInput{Content: "no recipient"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreads(t *testing.T) {
	first := inbound("a", "Plan", true)
	first.ThreadID = "t1"
	second := inbound("b", "Re: Plan", true)
	second.ThreadID = "t1"
	second.ReceivedAt = now.Add(-time.Minute)
	e, _ := newTestServer(t, "", first, second)

	rec, env := call(t, e, http.MethodGet, "/api/threads?filter=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var threads ThreadList
	require.NoError(t, json.Unmarshal(env.Data, &threads))
	require.Equal(t, 1, threads.Total)
	assert.Equal(t, "t1", threads.Threads[0].ThreadID)
	assert.Equal(t, 2, threads.Threads[0].Total)

	rec, env = call(t, e, http.MethodGet, "/api/threads/t1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list EmailList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Emails, 2)
	assert.Equal(t, "a", list.Emails[0].ID)
	assert.Equal(t, "b", list.Emails[1].ID)
}

func TestAnalytics(t *testing.T) {
	e, _ := newTestServer(t, "",
		inbound("a", "URGENT: outage", true),
		inbound("b", "Newsletter", false),
	)

	rec, env := call(t, e, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats triage.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.NeedsReply)
	assert.Equal(t, 1, stats.Urgent)
}

func TestStoreRoutes(t *testing.T) {
	e, _ := newTestServer(t, "")

	msg := storetest.Message("x")
	rec, env := call(t, e, http.MethodPost, "/store/messages", msg)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Message
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotZero(t, created.Seq)

	rec, _ = call(t, e, http.MethodPost, "/store/messages", msg)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = call(t, e, http.MethodPost, "/store/messages", models.Message{Subject: "no id"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(t, e, http.MethodPost, "/store/messages/batch", store.BatchRequest{Op: "nope", IDs: []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(t, e, http.MethodDelete, "/store/messages/x", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = call(t, e, http.MethodGet, "/store/messages/x", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreRoutesRequireKey(t *testing.T) {
	e, _ := newTestServer(t, "secret")

	rec, env := call(t, e, http.MethodGet, "/store/messages", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/store/messages", nil)
	req.Header.Set(APIKeyHeader, "secret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, e, http.MethodGet, "/api/analytics", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the key only guards store routes")
}

func TestRemoteStoreAgainstServer(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		e, _ := newTestServer(t, "secret")
		srv := httptest.NewServer(e)
		t.Cleanup(srv.Close)

		return store.NewRemoteStore(store.RemoteConfig{
			BaseURL: srv.URL,
			APIKey:  "secret",
			Timeout: 5 * time.Second,
		})
	})
}
