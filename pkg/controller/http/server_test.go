package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/jarvis/pkg/controller/http"
	"github.com/secmon-lab/jarvis/pkg/repository/memory"
	"github.com/secmon-lab/jarvis/pkg/usecase"
)

var baseTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func newServer(t *testing.T, opts ...usecase.Option) (*httpctrl.Server, *memory.Memory) {
	t.Helper()
	sink := memory.New()
	opts = append([]usecase.Option{
		usecase.WithClock(func() time.Time { return baseTime }),
		usecase.WithExportRepository(sink),
	}, opts...)

	assistant, err := usecase.NewAssistant(opts...)
	gt.NoError(t, err).Required()

	srv, err := httpctrl.New(assistant, httpctrl.WithClock(func() time.Time { return baseTime }))
	gt.NoError(t, err).Required()
	return srv, sink
}

func doRequest(t *testing.T, srv http.Handler, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(httpctrl.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

type chatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Exit      bool      `json:"exit"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func TestNew_RequiresAssistant(t *testing.T) {
	_, err := httpctrl.New(nil)
	gt.Value(t, err).NotNil()
}

func TestChat(t *testing.T) {
	srv, _ := newServer(t)

	t.Run("command reply", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[chatResponse](t, w)
		gt.Value(t, resp.Response).Equal("The current time is 03:04 PM")
		gt.Value(t, resp.Status).Equal("success")
		gt.Value(t, resp.Timestamp.Equal(baseTime)).Equal(true)
		gt.Bool(t, resp.Exit).False()
	})

	t.Run("calculation", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "calc 2+3*4"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[chatResponse](t, w).Response).Equal("2+3*4 = 14")
	})

	t.Run("farewell sets exit", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "bye"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Bool(t, decode[chatResponse](t, w).Exit).True()
	})

	t.Run("missing message", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"text": "hi"})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, w).Error).Equal("Message is required")
	})

	t.Run("blank message", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "   "})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, w).Error).Equal("Message cannot be empty")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}

type historyResponse struct {
	History []struct {
		User     string `json:"user"`
		Response string `json:"response"`
	} `json:"history"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

func TestHistoryIsPerSession(t *testing.T) {
	srv, _ := newServer(t)

	doRequest(t, srv, http.MethodPost, "/api/chat", "alice", map[string]string{"message": "time"})
	doRequest(t, srv, http.MethodPost, "/api/chat", "alice", map[string]string{"message": "date"})
	doRequest(t, srv, http.MethodPost, "/api/chat", "bob", map[string]string{"message": "time"})

	alice := decode[historyResponse](t, doRequest(t, srv, http.MethodGet, "/api/history", "alice", nil))
	gt.Value(t, alice.Count).Equal(2)
	gt.Array(t, alice.History).Length(2).Required()
	gt.Value(t, alice.History[0].User).Equal("time")
	gt.Value(t, alice.History[1].User).Equal("date")
	gt.Value(t, alice.History[1].Response).Equal("Today's date is Tuesday, January 02, 2024")

	bob := decode[historyResponse](t, doRequest(t, srv, http.MethodGet, "/api/history", "bob", nil))
	gt.Value(t, bob.Count).Equal(1)

	carol := decode[historyResponse](t, doRequest(t, srv, http.MethodGet, "/api/history", "carol", nil))
	gt.Value(t, carol.Count).Equal(0)
	gt.Value(t, carol.Status).Equal("success")
}

func TestClear(t *testing.T) {
	srv, _ := newServer(t)

	doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})
	w := doRequest(t, srv, http.MethodPost, "/api/clear", "s1", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)

	hist := decode[historyResponse](t, doRequest(t, srv, http.MethodGet, "/api/history", "s1", nil))
	gt.Value(t, hist.Count).Equal(0)
}

func TestSessionCookie(t *testing.T) {
	srv, _ := newServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/chat", "", map[string]string{"message": "time"})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	cookies := w.Result().Cookies()
	gt.Array(t, cookies).Length(1).Required()
	gt.Value(t, cookies[0].Name).Equal(httpctrl.SessionCookie)
	gt.Value(t, w.Header().Get(httpctrl.SessionHeader)).Equal(cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)

	hist := decode[historyResponse](t, w2)
	gt.Value(t, hist.Count).Equal(1)
	gt.Array(t, w2.Result().Cookies()).Length(0)
}

type commandsResponse struct {
	Commands []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		AliasOf     string `json:"alias_of"`
	} `json:"commands"`
	Status string `json:"status"`
}

func TestCommands(t *testing.T) {
	srv, _ := newServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/commands", "", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	resp := decode[commandsResponse](t, w)
	gt.Value(t, resp.Status).Equal("success")

	names := make(map[string]string)
	for _, cmd := range resp.Commands {
		gt.String(t, cmd.Description).NotEqual("")
		names[cmd.Name] = cmd.AliasOf
	}
	gt.Map(t, names).HasKey("time")
	gt.Map(t, names).HasKey("wiki")
	gt.Map(t, names).HasKey("help")
	gt.Value(t, names["calc"]).Equal("calculate")
	_, hasAsk := names["ask"]
	gt.Bool(t, hasAsk).False()

	// the commands endpoint does not start a session
	gt.Array(t, w.Result().Cookies()).Length(0)
}

type exportResponse struct {
	Name       string `json:"name"`
	EntryCount int    `json:"entry_count"`
	Status     string `json:"status"`
}

func TestExport(t *testing.T) {
	t.Run("named export", func(t *testing.T) {
		srv, sink := newServer(t)
		doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})

		w := doRequest(t, srv, http.MethodPost, "/api/export", "s1", map[string]string{"name": "web_log"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[exportResponse](t, w)
		gt.Value(t, resp.Name).Equal("web_log")
		gt.Value(t, resp.EntryCount).Equal(1)

		record, err := sink.Get(context.Background(), "web_log")
		gt.NoError(t, err).Required()
		gt.String(t, record.Content).Contains("You: time")
	})

	t.Run("default name without body", func(t *testing.T) {
		srv, _ := newServer(t)
		doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})

		w := doRequest(t, srv, http.MethodPost, "/api/export", "s1", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[exportResponse](t, w).Name).Equal("jarvis_conversation_20240102_150405")
	})

	t.Run("empty conversation", func(t *testing.T) {
		srv, _ := newServer(t)
		w := doRequest(t, srv, http.MethodPost, "/api/export", "empty", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, decode[errorResponse](t, w).Error).Equal("No conversation to save")
	})

	t.Run("invalid name", func(t *testing.T) {
		srv, _ := newServer(t)
		doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})
		w := doRequest(t, srv, http.MethodPost, "/api/export", "s1", map[string]string{"name": "../etc/passwd"})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("no sink configured", func(t *testing.T) {
		assistant, err := usecase.NewAssistant()
		gt.NoError(t, err).Required()
		srv, err := httpctrl.New(assistant)
		gt.NoError(t, err).Required()

		doRequest(t, srv, http.MethodPost, "/api/chat", "s1", map[string]string{"message": "time"})
		w := doRequest(t, srv, http.MethodPost, "/api/export", "s1", nil)
		gt.Value(t, w.Code).Equal(http.StatusServiceUnavailable)
	})
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)

	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.Status).Equal("healthy")
	gt.String(t, resp.Service).NotEqual("")
}

func TestNotFound(t *testing.T) {
	srv, _ := newServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/unknown", "", nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
	gt.Value(t, decode[errorResponse](t, w).Error).Equal("Endpoint not found")
	gt.String(t, w.Header().Get("Content-Type")).Contains("application/json")
}

func TestIndexPage(t *testing.T) {
	srv, _ := newServer(t)

	w := doRequest(t, srv, http.MethodGet, "/", "", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains("/api/chat")

	assistant, err := usecase.NewAssistant()
	gt.NoError(t, err).Required()
	noUI, err := httpctrl.New(assistant, httpctrl.WithWebUI(false))
	gt.NoError(t, err).Required()
	w = doRequest(t, noUI, http.MethodGet, "/", "", nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}
