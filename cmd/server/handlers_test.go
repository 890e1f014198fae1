package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/nai/internal/ai"
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/query"
	"github.com/myrjola/nai/internal/repositories"
	"github.com/myrjola/nai/internal/sqlite"
	"github.com/myrjola/nai/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

type answerCall struct {
	itemType, question, lore string
}

type fakeAnswerer struct {
	mu      sync.Mutex
	calls   []answerCall
	answer  ai.Answer
	refined string
	err     error
	block   bool
}

func (f *fakeAnswerer) Answer(ctx context.Context, itemType, question, lore string) (ai.Answer, error) {
	f.mu.Lock()
	f.calls = append(f.calls, answerCall{itemType: itemType, question: question, lore: lore})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ai.Answer{}, ctx.Err()
	}
	return f.answer, f.err
}

func (f *fakeAnswerer) Refine(ctx context.Context, question, initialAnswer string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, answerCall{question: question, lore: initialAnswer})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.refined, f.err
}

func newTestApplication(t *testing.T, answerer answerer) *application {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	cat, err := catalog.Default()
	require.NoError(t, err)
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &application{
		logger:      logger,
		catalog:     cat,
		answerer:    answerer,
		completions: repositories.NewCompletionRepository(db, logger),
		metrics:     promhttp.Handler(),
	}
}

func newTestHTTPServer(t *testing.T, app *application, timeout time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(app.routes(timeout))
	t.Cleanup(srv.Close)
	return srv
}

func postGenerate(t *testing.T, url, body string) (int, query.Response) {
	t.Helper()
	resp, err := http.Post(url+"/generate", "application/json", strings.NewReader(body)) //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var decoded query.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestGenerate(t *testing.T) {
	answerer := &fakeAnswerer{answer: ai.Answer{
		Response:        "The cellar door of the old inn.",
		InitialResponse: "The cellar door.",
		ContextSnippet:  "The key...",
		TimeTaken:       1500 * time.Millisecond,
	}}
	app := newTestApplication(t, answerer)
	srv := newTestHTTPServer(t, app, time.Second)

	status, resp := postGenerate(t, srv.URL, `{"itemType":"tool","question":"What opens?"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, query.Response{
		Response:        "The cellar door of the old inn.",
		InitialResponse: "The cellar door.",
		ContextSnippet:  "The key...",
		TimeTaken:       1.5,
	}, resp)

	require.Len(t, answerer.calls, 1)
	require.Equal(t, "tool", answerer.calls[0].itemType)
	require.Equal(t, "What opens?", answerer.calls[0].question)
	require.Contains(t, answerer.calls[0].lore, "key")

	completions, err := app.completions.List(context.Background(), "tool", 0)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	require.Equal(t, "The cellar door of the old inn.", completions[0].Answer)
	require.Equal(t, int64(1500), completions[0].TimeTakenMS)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		answerErr  error
		wantStatus int
		wantError  string
	}{
		{"missing item type", `{"question":"What opens?"}`, nil, http.StatusBadRequest, msgMissingParameters},
		{"blank question", `{"itemType":"tool","question":"  "}`, nil, http.StatusBadRequest, msgMissingParameters},
		{"invalid json", `{"itemType":`, nil, http.StatusBadRequest, msgMissingParameters},
		{"unknown item type", `{"itemType":"spoon","question":"Why?"}`, nil, http.StatusNotFound, msgContextNotFound},
		{
			"generation failure", `{"itemType":"tool","question":"What opens?"}`,
			ai.ErrGenerationFailed, http.StatusInternalServerError, msgGenerationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(t, &fakeAnswerer{err: tt.answerErr})
			srv := newTestHTTPServer(t, app, time.Second)
			status, resp := postGenerate(t, srv.URL, tt.body)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantError, resp.Error)
			require.Empty(t, resp.Response)
		})
	}
}

func TestRefine(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantRefined string
		wantError   string
	}{
		{
			name:        "refined",
			body:        `{"question":"How many pages?","initialAnswer":"32 pages."}`,
			wantStatus:  http.StatusOK,
			wantRefined: "The study guide has 32 pages.",
		},
		{
			name:       "missing initial answer",
			body:       `{"question":"How many pages?"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgMissingParameters,
		},
		{
			name:       "blank question",
			body:       `{"question":" ","initialAnswer":"32 pages."}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgMissingParameters,
		},
		{
			name:       "invalid json",
			body:       `{"question":`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgMissingParameters,
		},
		{
			name:       "generation failure",
			body:       `{"question":"How many pages?","initialAnswer":"32 pages."}`,
			err:        ai.ErrGenerationFailed,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgRefineFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer := &fakeAnswerer{refined: "The study guide has 32 pages.", err: tt.err}
			srv := newTestHTTPServer(t, newTestApplication(t, answerer), time.Second)

			resp, err := http.Post(srv.URL+query.RefinePath, "application/json", //nolint:noctx // test
				strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			var decoded query.RefineResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
			require.Equal(t, query.RefineResponse{RefinedResponse: tt.wantRefined, Error: tt.wantError}, decoded)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, []answerCall{{question: "How many pages?", lore: "32 pages."}}, answerer.calls)
			}
		})
	}
}

// TestGenerate_QueryClient checks that the query client maps every server response as intended.
func TestGenerate_QueryClient(t *testing.T) {
	tests := []struct {
		name     string
		answerer *fakeAnswerer
		itemType string
		wantKind query.OutcomeKind
		wantText string
	}{
		{"success", &fakeAnswerer{answer: ai.Answer{Response: "Steve."}}, "diamondpickaxe", query.Success, "Steve."},
		{"unknown item", &fakeAnswerer{}, "unknown", query.ApplicationError, query.MessageApplicationError},
		{"generation failure", &fakeAnswerer{err: ai.ErrEmptyCompletion}, "tool", query.ApplicationError, query.MessageApplicationError},
		{"timeout", &fakeAnswerer{block: true}, "tool", query.ApplicationError, query.MessageApplicationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestHTTPServer(t, newTestApplication(t, tt.answerer), 100*time.Millisecond)
			client, err := query.NewClient(srv.URL, testhelpers.NewLogger(io.Discard))
			require.NoError(t, err)
			outcome := client.Do(context.Background(), query.Request{ItemType: tt.itemType, Question: "Who crafted it?"})
			require.Equal(t, tt.wantKind, outcome.Kind)
			require.Equal(t, tt.wantText, outcome.DisplayText())
		})
	}
}

func TestHistory(t *testing.T) {
	app := newTestApplication(t, &fakeAnswerer{answer: ai.Answer{Response: "Yes.", InitialResponse: "Yes."}})
	srv := newTestHTTPServer(t, app, time.Second)
	for _, body := range []string{
		`{"itemType":"tool","question":"What opens?"}`,
		`{"itemType":"StudyGuide","question":"Who wrote this study guide book?"}`,
		`{"itemType":"tool","question":"Who owns it?"}`,
	} {
		status, _ := postGenerate(t, srv.URL, body)
		require.Equal(t, http.StatusOK, status)
	}

	tests := []struct {
		name          string
		query         string
		wantStatus    int
		wantQuestions []string
	}{
		{"all", "", http.StatusOK, []string{"Who wrote this study guide book?", "What opens?", "Who owns it?"}},
		{"by item type", "?itemType=tool", http.StatusOK, []string{"What opens?", "Who owns it?"}},
		{"display name", "?itemType=StudyGuide", http.StatusOK, []string{"Who wrote this study guide book?"}},
		{"limit", "?itemType=tool&limit=1", http.StatusOK, []string{"What opens?"}},
		{"unknown item type", "?itemType=spoon", http.StatusBadRequest, nil},
		{"invalid limit", "?limit=-1", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/history" + tt.query) //nolint:noctx // test
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var decoded historyResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
			var questions []string
			for _, c := range decoded.Completions {
				questions = append(questions, c.Question)
			}
			require.Equal(t, tt.wantQuestions, questions)
		})
	}
}

func TestMiddleware(t *testing.T) {
	app := newTestApplication(t, &fakeAnswerer{})
	srv := newTestHTTPServer(t, app, time.Second)

	resp, err := http.Get(srv.URL + "/api/healthy") //nolint:noctx // test
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.JSONEq(t, `{"status":"ok"}`, string(body))
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "deny", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Len(t, resp.Header.Get("X-Request-Id"), 36)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/generate", nil) //nolint:noctx // test
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)

	resp, err = http.Get(srv.URL + "/generate") //nolint:noctx // test
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRecoverPanic(t *testing.T) {
	logs := &testhelpers.LogBuffer{}
	app := newTestApplication(t, &fakeAnswerer{})
	app.logger = testhelpers.NewLogger(logs)
	handler := app.recoverPanic(app.logRequest(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "close", rec.Header().Get("Connection"))
	require.Contains(t, rec.Body.String(), `"error":"Internal Server Error"`)
	require.Contains(t, logs.String(), "recovered panic")
}

func TestMetrics(t *testing.T) {
	srv := newTestHTTPServer(t, newTestApplication(t, &fakeAnswerer{}), time.Second)
	resp, err := http.Get(srv.URL + "/metrics") //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "go_goroutines")
}
