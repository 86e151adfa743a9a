package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"bmcnav/internal/session"
	"bmcnav/internal/store"
)

const (
	SessionServiceName = "bmcnav.v1.SessionService"

	StartProcedure   = "/" + SessionServiceName + "/Start"
	AnswerProcedure  = "/" + SessionServiceName + "/Answer"
	AdvanceProcedure = "/" + SessionServiceName + "/Advance"
	GetProcedure     = "/" + SessionServiceName + "/Get"
)

// jsonCodec lets Connect carry plain Go structs as JSON.
type jsonCodec struct{}

func (jsonCodec) Name() string                  { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

type StartRequest struct{}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type AnswerRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

type MessageView struct {
	Kind  string `json:"kind"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// SessionView is the API shape of a session. Waiting is "input", "model"
// or "none".
type SessionView struct {
	SessionID  string        `json:"sessionId"`
	Stage      string        `json:"stage"`
	StageLabel string        `json:"stageLabel"`
	Waiting    string        `json:"waiting"`
	Prompt     string        `json:"prompt,omitempty"`
	Failure    string        `json:"failure,omitempty"`
	Messages   []MessageView `json:"messages"`
}

// RPCHandler exposes Service over Connect.
type RPCHandler struct {
	svc *Service
}

func NewRPCHandler(svc *Service) *RPCHandler {
	return &RPCHandler{svc: svc}
}

func (h *RPCHandler) Register(mux *http.ServeMux) {
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}
	mux.Handle(StartProcedure, connect.NewUnaryHandler(StartProcedure, h.Start, opts...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, h.Answer, opts...))
	mux.Handle(AdvanceProcedure, connect.NewUnaryHandler(AdvanceProcedure, h.Advance, opts...))
	mux.Handle(GetProcedure, connect.NewUnaryHandler(GetProcedure, h.Get, opts...))
}

func (h *RPCHandler) Start(ctx context.Context, _ *connect.Request[StartRequest]) (*connect.Response[SessionView], error) {
	st, err := h.svc.Start(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(newSessionView(st, h.svc.Pending(st))), nil
}

func (h *RPCHandler) Answer(ctx context.Context, req *connect.Request[AnswerRequest]) (*connect.Response[SessionView], error) {
	id, err := requireSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	st, err := h.svc.Answer(ctx, id, req.Msg.Input)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(newSessionView(st, h.svc.Pending(st))), nil
}

func (h *RPCHandler) Advance(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionView], error) {
	id, err := requireSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	st, eff, err := h.svc.Advance(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(newSessionView(st, eff)), nil
}

func (h *RPCHandler) Get(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionView], error) {
	id, err := requireSessionID(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	st, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(newSessionView(st, h.svc.Pending(st))), nil
}

func newSessionView(st session.State, eff session.Effect) *SessionView {
	v := &SessionView{
		SessionID:  st.ID,
		Stage:      string(st.Stage),
		StageLabel: st.Stage.Label(),
		Waiting:    "none",
		Failure:    st.Failure,
		Messages:   make([]MessageView, 0, len(st.History)),
	}
	switch e := eff.(type) {
	case session.AwaitInput:
		v.Waiting = "input"
		v.Prompt = e.Prompt
	case session.CallModel:
		v.Waiting = "model"
	}
	for _, m := range st.History {
		v.Messages = append(v.Messages, MessageView{Kind: string(m.Kind), Title: m.Title, Body: m.Body})
	}
	return v
}

func requireSessionID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	return id, nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNotAwaitingInput):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
