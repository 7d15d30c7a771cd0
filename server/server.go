package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"supervision_record_studio/exporter"
	"supervision_record_studio/generator"
)

//go:embed web/dist web/dist/*
var embeddedStatic embed.FS

type Server struct {
	agent    *generator.Agent
	store    *sessionStore
	staticFS http.Handler
}

// sessionStore keeps one entry per wizard session. The per-entry mutex is
// the single-in-flight gate: a second operation on a busy session is
// rejected instead of queued.
type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	sess *generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{entries: make(map[string]*sessionEntry)}
}

func (s *sessionStore) set(id string, sess *generator.Session) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &sessionEntry{sess: sess}
	s.entries[id] = e
	return e
}

func (s *sessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

func New(agent *generator.Agent) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		agent:    agent,
		store:    newStore(),
		staticFS: http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/styles", s.handleStyles)
	mux.HandleFunc("/api/sessions", s.handleSessionCreate)
	mux.HandleFunc("/api/sessions/", s.handleSessionOp)
	mux.Handle("/", s.staticHandler())
	return logMiddleware(mux)
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// fall back to index.html for SPA-ish behavior
		upath := r.URL.Path
		if upath == "/" || !strings.HasPrefix(upath, "/api/") {
			if upath == "/" {
				upath = "/index.html"
			}
			r.URL.Path = upath
			s.staticFS.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// --- Handlers ---

type createReq struct {
	Notes string `json:"notes"`
}

type opReq struct {
	Instruction string `json:"instruction,omitempty"`
	Style       string `json:"style,omitempty"`
}

type stateResp struct {
	SessionID    string              `json:"session_id"`
	Stage        generator.Stage     `json:"stage"`
	RawInput     string              `json:"raw_input,omitempty"`
	FormalRecord string              `json:"formal_record,omitempty"`
	Feedback     *generator.Feedback `json:"feedback,omitempty"`
	ImagePrompt  string              `json:"image_prompt,omitempty"`
	CardImage    string              `json:"card_image,omitempty"`
	LastError    string              `json:"last_error,omitempty"`
}

func stateOf(sess *generator.Session) stateResp {
	return stateResp{
		SessionID:    sess.ID,
		Stage:        sess.Stage,
		RawInput:     sess.RawInput,
		FormalRecord: sess.FormalRecord,
		Feedback:     sess.Feedback,
		ImagePrompt:  sess.ImagePrompt,
		CardImage:    sess.CardImage,
		LastError:    sess.LastError,
	}
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string][]string{"styles": generator.StyleKeys()})
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	sess := generator.NewSession(id, s.agent)
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	if err := sess.GenerateRecord(ctx, req.Notes, apiKeyOf(r)); err != nil {
		writeOpError(w, err)
		return
	}
	s.store.set(id, sess)
	writeJSON(w, stateOf(sess))
}

func (s *Server) handleSessionOp(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action := rest, ""
	if i := strings.Index(rest, "/"); i >= 0 {
		id, action = rest[:i], rest[i+1:]
	}
	if id == "" {
		http.NotFound(w, r)
		return
	}
	entry, ok := s.store.get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodGet {
		switch action {
		case "":
			writeJSON(w, stateOf(entry.sess))
		case "export":
			s.handleExport(w, entry)
		default:
			http.NotFound(w, r)
		}
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// single-in-flight discipline per session
	if !entry.mu.TryLock() {
		http.Error(w, "an operation is already running for this session", http.StatusConflict)
		return
	}
	defer entry.mu.Unlock()

	var req opReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	var err error
	switch action {
	case "feedback":
		err = entry.sess.GenerateFeedback(ctx, apiKeyOf(r))
	case "visual":
		style := req.Style
		if style == "" {
			style = generator.StyleAuto
		}
		err = entry.sess.GenerateVisual(ctx, style, apiKeyOf(r))
	case "refine":
		err = entry.sess.Refine(ctx, req.Instruction, apiKeyOf(r))
	case "image/refine":
		err = entry.sess.RefineImage(ctx, req.Instruction, apiKeyOf(r))
	case "back":
		err = entry.sess.BackToFeedback()
	case "reset":
		entry.sess.Reset()
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, stateOf(entry.sess))
}

func (s *Server) handleExport(w http.ResponseWriter, entry *sessionEntry) {
	doc, err := exporter.FromMarkdown(entry.sess.FormalRecord)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	_, _ = w.Write(doc.HTML)
}

// --- Helpers ---

func apiKeyOf(r *http.Request) string {
	return r.Header.Get("X-Api-Key")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error    string             `json:"error"`
	Category generator.Category `json:"category"`
}

func writeOpError(w http.ResponseWriter, err error) {
	cat := generator.Classify(err)
	status := http.StatusBadGateway
	switch cat {
	case generator.CategoryValidation:
		status = http.StatusBadRequest
	case generator.CategoryAuth:
		status = http.StatusUnauthorized
	case generator.CategoryRateLimit:
		status = http.StatusTooManyRequests
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errResp{Error: generator.UserMessage(err), Category: cat})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
