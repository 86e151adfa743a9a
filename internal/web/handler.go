package web

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"bmcnav/internal/llm"
	"bmcnav/internal/logger"
	"bmcnav/internal/session"
	"bmcnav/internal/store"
)

const sessionCookie = "bmcnav_session"

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

type pageMessage struct {
	Class string
	Title string
	Body  string
}

type pageData struct {
	SessionID  string
	StageLabel string
	Messages   []pageMessage
	Prompt     string
	Refresh    bool
	Done       bool
}

// Handler serves the HTML pages, the report download and the live stream.
type Handler struct {
	svc *Service
	hub *Hub
	log *logger.Logger
}

func NewHandler(svc *Service, hub *Hub, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, hub: hub, log: log}
}

// NewMux registers every route behind the CORS middleware.
func NewMux(h *Handler, rpc *RPCHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.HandleIndex)
	mux.HandleFunc("/answer", h.HandleAnswer)
	mux.HandleFunc("/restart", h.HandleRestart)
	mux.HandleFunc("/report", h.HandleReport)
	mux.HandleFunc("/ws", h.HandleSessionWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if rpc != nil {
		rpc.Register(mux)
	}
	return CORS(mux)
}

// HandleIndex renders the session page. Each request performs at most one
// model call; the page refreshes itself while another call is pending.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	st, err := h.svc.Open(ctx, sessionIDFrom(r))
	if err != nil {
		h.log.Error("open session failed", "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, st.ID)

	next, eff, err := h.svc.Advance(ctx, st.ID)
	if err != nil {
		h.log.Error("advance session failed", "session_id", st.ID, "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	h.render(w, next, eff)
}

func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := sessionIDFrom(r)
	if id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := h.svc.Answer(r.Context(), id, r.PostForm.Get("answer"))
	switch {
	case err == nil, errors.Is(err, ErrNotAwaitingInput), errors.Is(err, store.ErrNotFound):
	default:
		h.log.Error("answer failed", "session_id", id, "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st, err := h.svc.Restart(r.Context(), sessionIDFrom(r))
	if err != nil {
		h.log.Error("restart failed", "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, st.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleReport downloads the Markdown report of the current session, the
// archived copy once the session has finished.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFrom(r)
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	st, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("load session failed", "session_id", id, "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bmc-`+st.ID+`.md"`)
	_, _ = w.Write(h.svc.Report(r.Context(), st))
}

func (h *Handler) render(w http.ResponseWriter, st session.State, eff session.Effect) {
	data := pageData{
		SessionID:  st.ID,
		StageLabel: st.Stage.Label(),
		Messages:   make([]pageMessage, 0, len(st.History)),
	}
	for _, m := range st.History {
		data.Messages = append(data.Messages, pageMessage{Class: messageClass(m), Title: m.Title, Body: m.Body})
	}
	switch e := eff.(type) {
	case session.AwaitInput:
		data.Prompt = e.Prompt
	case session.CallModel:
		data.Refresh = true
	case session.Halt:
		data.Done = true
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Warn("render page failed", "session_id", st.ID, "error", err)
	}
}

func messageClass(m session.Message) string {
	if m.Kind == session.KindError || llm.IsErrorText(m.Body) {
		return string(session.KindError)
	}
	return string(m.Kind)
}

func sessionIDFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("session_id")); v != "" {
		return v
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
