// Package session implements the BMC Navigator conversation as a single state
// machine: a pure transition core plus drivers for the console loop and the
// re-entrant web handler.
package session

import (
	"time"

	"github.com/google/uuid"

	"bmcnav/internal/bmc"
)

// Stage is one step of the conversation. Stages only move forward.
type Stage string

const (
	StageWelcome           Stage = "welcome"
	StagePlanGeneration    Stage = "plan_generation"
	StageDataGathering     Stage = "data_gathering"
	StageAnalysis          Stage = "analysis"
	StageSuggestionList    Stage = "suggestion_list"
	StageSuggestionDetails Stage = "suggestion_details"
	StageFinished          Stage = "finished"
	StageFailed            Stage = "failed"
)

// Terminal reports whether no further input or model call is expected.
func (s Stage) Terminal() bool {
	return s == StageFinished || s == StageFailed
}

// Label is the Czech name shown to users.
func (s Stage) Label() string {
	switch s {
	case StageWelcome:
		return "Uvítání"
	case StagePlanGeneration:
		return "Příprava plánu"
	case StageDataGathering:
		return "Mapování byznys modelu"
	case StageAnalysis:
		return "Strategická analýza"
	case StageSuggestionList:
		return "Přehled inovací"
	case StageSuggestionDetails:
		return "Rozpracování inovací"
	case StageFinished:
		return "Dokončeno"
	case StageFailed:
		return "Chyba"
	default:
		return string(s)
	}
}

// MessageKind selects how a history entry is rendered.
type MessageKind string

const (
	KindAI     MessageKind = "ai"
	KindUser   MessageKind = "user"
	KindOutput MessageKind = "output"
	KindStatus MessageKind = "status"
	KindError  MessageKind = "error"
)

// Message is one display event in the session history.
type Message struct {
	Kind  MessageKind `json:"kind"`
	Title string      `json:"title,omitempty"`
	Body  string      `json:"body"`
	At    time.Time   `json:"at"`
}

// IdeaDetail is the write-up produced for one innovation title.
type IdeaDetail struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// State is everything one session accumulates. It is JSON-serialisable so
// any store can persist it, and it is owned by exactly one session.
type State struct {
	ID              string           `json:"id"`
	Stage           Stage            `json:"stage"`
	History         []Message        `json:"history"`
	UserContext     string           `json:"user_context"`
	Plan            bmc.QuestionPlan `json:"question_plan,omitempty"`
	CurrentQuestion int              `json:"current_question_index"`
	Answers         bmc.AnswerMap    `json:"bmc_data"`
	Analysis        string           `json:"analysis_result,omitempty"`
	IdeaList        string           `json:"idea_list,omitempty"`
	Titles          []string         `json:"innovation_titles,omitempty"`
	Details         []IdeaDetail     `json:"innovation_details,omitempty"`
	Failure         string           `json:"failure,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// New starts a fresh session at WELCOME with the greeting in its history.
func New() State {
	now := time.Now().UTC()
	return State{
		ID:    uuid.NewString(),
		Stage: StageWelcome,
		History: []Message{{
			Kind:  KindAI,
			Title: titleWelcome,
			Body:  msgWelcome,
			At:    now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CurrentItem returns the plan item awaiting an answer.
func (s State) CurrentItem() (bmc.QuestionPlanItem, bool) {
	if s.Stage != StageDataGathering || s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Plan) {
		return bmc.QuestionPlanItem{}, false
	}
	return s.Plan[s.CurrentQuestion], true
}

// Clone returns a copy that shares no mutable slices with s.
func (s State) Clone() State {
	out := s
	out.History = append([]Message(nil), s.History...)
	out.Plan = append(bmc.QuestionPlan(nil), s.Plan...)
	out.Answers = s.Answers.Clone()
	out.Titles = append([]string(nil), s.Titles...)
	out.Details = append([]IdeaDetail(nil), s.Details...)
	return out
}
