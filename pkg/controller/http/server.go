package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/agent/tool"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/usecase"
	"github.com/secmon-lab/jarvis/pkg/utils/errutil"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
	"github.com/secmon-lab/jarvis/pkg/utils/safe"
)

//go:embed static/index.html
var indexHTML []byte

const (
	statusSuccess = "success"
	serviceName   = "Jarvis HTTP Server"

	maxRequestBody = 1 << 20
)

type Server struct {
	router      *chi.Mux
	assistant   *usecase.Assistant
	sessions    *sessionTable
	maxSessions int
	clock       func() time.Time
	enableUI    bool
}

type Options func(*Server)

// WithMaxSessions bounds the number of conversations held in memory
func WithMaxSessions(n int) Options {
	return func(s *Server) {
		s.maxSessions = n
	}
}

// WithClock replaces the clock used for response timestamps
func WithClock(clock func() time.Time) Options {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithWebUI toggles the chat page served at "/"
func WithWebUI(enabled bool) Options {
	return func(s *Server) {
		s.enableUI = enabled
	}
}

func New(assistant *usecase.Assistant, opts ...Options) (*Server, error) {
	if assistant == nil {
		return nil, goerr.New("assistant is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:    r,
		assistant: assistant,
		clock:     time.Now,
		enableUI:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessionTable(s.maxSessions, assistant.NewConversation)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler)
		r.Get("/commands", s.commandsHandler)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware(s.sessions))
			r.Post("/chat", s.chatHandler)
			r.Get("/history", s.historyHandler)
			r.Post("/clear", s.clearHandler)
			r.Post("/export", s.exportHandler)
		})
	})

	if s.enableUI {
		r.Get("/", indexHandler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Endpoint not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Exit      bool      `json:"exit,omitempty"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil || req.Message == nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	}
	if strings.TrimSpace(*req.Message) == "" {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Message cannot be empty"})
		return
	}

	conv := conversationFromContext(r.Context())
	ctx := tool.WithProgress(r.Context(), func(ctx context.Context, message string) {
		logging.From(ctx).Debug("tool progress", "message", message)
	})
	reply := s.assistant.Process(ctx, conv, *req.Message)

	writeJSON(w, r, http.StatusOK, chatResponse{
		Response:  reply.Text,
		Timestamp: reply.Timestamp,
		Status:    statusSuccess,
		Exit:      reply.Exit,
	})
}

type historyEntry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Response  string    `json:"response"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
	Count   int            `json:"count"`
	Status  string         `json:"status"`
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	entries := conversationFromContext(r.Context()).All()

	resp := historyResponse{
		History: make([]historyEntry, len(entries)),
		Count:   len(entries),
		Status:  statusSuccess,
	}
	for i, e := range entries {
		resp.History[i] = historyEntry{
			Timestamp: e.Timestamp,
			User:      e.Input,
			Response:  e.Response,
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type messageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (s *Server) clearHandler(w http.ResponseWriter, r *http.Request) {
	conversationFromContext(r.Context()).Clear()
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "History cleared", Status: statusSuccess})
}

type commandResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	AliasOf     string `json:"alias_of,omitempty"`
}

type commandsResponse struct {
	Commands []commandResponse `json:"commands"`
	Status   string            `json:"status"`
}

func (s *Server) commandsHandler(w http.ResponseWriter, r *http.Request) {
	commands := s.assistant.Registry().Commands()

	resp := commandsResponse{
		Commands: make([]commandResponse, len(commands)),
		Status:   statusSuccess,
	}
	for i, cmd := range commands {
		resp.Commands[i] = commandResponse{
			Name:        cmd.Name,
			Description: cmd.Description,
			Usage:       cmd.Usage,
			AliasOf:     cmd.AliasOf,
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type exportRequest struct {
	Name string `json:"name"`
}

type exportResponse struct {
	Name           string    `json:"name"`
	ConversationID string    `json:"conversation_id"`
	EntryCount     int       `json:"entry_count"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
			return
		}
	}

	conv := conversationFromContext(r.Context())
	record, err := s.assistant.Export(r.Context(), conv, req.Name)
	if err != nil {
		status := exportErrorStatus(err)
		if status >= http.StatusInternalServerError {
			errutil.Handle(r.Context(), err, "failed to export conversation")
		} else {
			logging.From(r.Context()).Debug("export rejected", "error", err.Error())
		}
		writeJSON(w, r, status, errorResponse{Error: usecase.UserMessage(err)})
		return
	}

	writeJSON(w, r, http.StatusOK, exportResponse{
		Name:           record.Name,
		ConversationID: record.ConversationID.String(),
		EntryCount:     record.EntryCount,
		CreatedAt:      record.CreatedAt,
		Status:         statusSuccess,
	})
}

func exportErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNothingToExport), errors.Is(err, model.ErrInvalidExportName):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Sessions  int       `json:"sessions"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.clock(),
		Service:   serviceName,
		Sessions:  s.sessions.len(),
	})
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	safe.Write(r.Context(), w, indexHTML)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
