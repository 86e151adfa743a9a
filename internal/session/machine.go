package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bmcnav/internal/bmc"
	"bmcnav/internal/llm"
	"bmcnav/internal/prompts"
)

// Sampling temperatures per stage.
const (
	TemperaturePlanner    float32 = 0.2
	TemperatureAnalysis   float32 = 0.8
	TemperatureIdeaList   float32 = 1.2
	TemperatureIdeaDetail float32 = 0.9
)

// Effect is what the machine needs next.
type Effect interface{ isEffect() }

// AwaitInput asks the driver for one line of user text.
type AwaitInput struct {
	Prompt string
}

// CallModel asks the driver for exactly one model call.
type CallModel struct {
	Phase       string
	Prompt      string
	Temperature float32
}

// Halt means the session is over.
type Halt struct{}

func (AwaitInput) isEffect() {}
func (CallModel) isEffect()  {}
func (Halt) isEffect()       {}

// Event is something that happened to the session.
type Event interface{ isEvent() }

type InputEvent struct {
	Text string
}

type ModelReplyEvent struct {
	Phase string
	Text  string
}

type ModelErrorEvent struct {
	Phase string
	Err   error
}

func (InputEvent) isEvent()      {}
func (ModelReplyEvent) isEvent() {}
func (ModelErrorEvent) isEvent() {}

// Options tunes behaviour that has no single right answer.
type Options struct {
	// IncludeSkipped keeps Skipped answers in the summary sent to the model.
	IncludeSkipped bool
}

// Machine is the pure transition core. It performs no I/O.
type Machine struct {
	prompts *prompts.Library
	opts    Options
	now     func() time.Time
}

func NewMachine(lib *prompts.Library, opts Options) *Machine {
	if lib == nil {
		lib = prompts.Default()
	}
	return &Machine{
		prompts: lib,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Summary renders the answers the way every model prompt sees them.
func (m *Machine) Summary(s State) string {
	return bmc.Summary(s.Answers, m.opts.IncludeSkipped)
}

func (m *Machine) bundle(s State) prompts.Bundle {
	return prompts.Bundle{
		UserContext: s.UserContext,
		Summary:     m.Summary(s),
		Analysis:    s.Analysis,
	}
}

// Pending reports what s is waiting for. It is level-triggered: calling it
// again on the same state yields the same effect.
func (m *Machine) Pending(s State) Effect {
	switch s.Stage {
	case StageWelcome:
		return AwaitInput{Prompt: PromptContext}
	case StagePlanGeneration:
		return CallModel{
			Phase:       llm.PhasePlanner,
			Prompt:      m.prompts.Planner(s.UserContext),
			Temperature: TemperaturePlanner,
		}
	case StageDataGathering:
		item, ok := s.CurrentItem()
		if !ok {
			return Halt{}
		}
		return AwaitInput{Prompt: item.Guidance()}
	case StageAnalysis:
		return CallModel{
			Phase:       llm.PhaseAnalysis,
			Prompt:      m.prompts.Analysis(s.UserContext, m.Summary(s)),
			Temperature: TemperatureAnalysis,
		}
	case StageSuggestionList:
		return CallModel{
			Phase:       llm.PhaseIdeaList,
			Prompt:      m.prompts.IdeaList(m.bundle(s)),
			Temperature: TemperatureIdeaList,
		}
	case StageSuggestionDetails:
		if len(s.Details) >= len(s.Titles) {
			return Halt{}
		}
		return CallModel{
			Phase:       llm.PhaseIdeaDetail,
			Prompt:      m.prompts.IdeaDetail(s.Titles[len(s.Details)], m.bundle(s)),
			Temperature: TemperatureIdeaDetail,
		}
	default:
		return Halt{}
	}
}

// Transition applies ev to s and returns the new state plus what it needs
// next. s itself is never modified. Events that do not fit the current stage
// leave the state unchanged.
func (m *Machine) Transition(s State, ev Event) (State, []Effect) {
	if s.Stage.Terminal() {
		return s, []Effect{Halt{}}
	}
	next := s.Clone()
	var handled bool
	switch e := ev.(type) {
	case InputEvent:
		handled = m.onInput(&next, e.Text)
	case ModelReplyEvent:
		if e.Phase != m.expectedPhase(s) {
			break
		}
		if llm.IsErrorText(e.Text) {
			m.onModelError(&next, errors.New(strings.TrimSpace(e.Text)))
		} else {
			m.onReply(&next, e.Text)
		}
		handled = true
	case ModelErrorEvent:
		if e.Phase != m.expectedPhase(s) {
			break
		}
		err := e.Err
		if err == nil {
			err = errors.New(llm.ErrorPrefix + " unknown error")
		}
		m.onModelError(&next, err)
		handled = true
	}
	if !handled {
		return s, []Effect{m.Pending(s)}
	}
	next.UpdatedAt = m.now()
	return next, []Effect{m.Pending(next)}
}

func (m *Machine) expectedPhase(s State) string {
	if call, ok := m.Pending(s).(CallModel); ok {
		return call.Phase
	}
	return ""
}

func (m *Machine) say(s *State, kind MessageKind, title, body string) {
	s.History = append(s.History, Message{Kind: kind, Title: title, Body: body, At: m.now()})
}

func (m *Machine) onInput(s *State, text string) bool {
	switch s.Stage {
	case StageWelcome:
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			m.say(s, KindAI, titleMissingContext, msgMissingContext)
			return true
		}
		m.say(s, KindUser, "", trimmed)
		s.UserContext = trimmed
		m.say(s, KindAI, titleContextAccepted, msgContextAccepted)
		m.say(s, KindAI, titlePreparingPlan, msgPreparingPlan)
		s.Stage = StagePlanGeneration
		return true
	case StageDataGathering:
		item, ok := s.CurrentItem()
		if !ok {
			return false
		}
		m.say(s, KindUser, "", strings.TrimSpace(text))
		answer := bmc.NormalizeAnswer(text)
		if answer == bmc.Skipped {
			m.say(s, KindAI, titleSkipConfirmed, fmt.Sprintf(msgSkipFmt, item.Key))
		}
		s.Answers.Set(item.Key, answer)
		s.CurrentQuestion++
		if s.CurrentQuestion >= len(s.Plan) {
			m.say(s, KindAI, titleMappingDone, msgMappingDone)
			m.say(s, KindStatus, "", statusAnalysis)
			s.Stage = StageAnalysis
			return true
		}
		m.progress(s)
		return true
	default:
		return false
	}
}

func (m *Machine) progress(s *State) {
	item := s.Plan[s.CurrentQuestion]
	m.say(s, KindStatus, "", fmt.Sprintf(progressFmt, s.CurrentQuestion+1, len(s.Plan), bmc.DisplayName(item.Key)))
}

func (m *Machine) onReply(s *State, text string) {
	text = strings.TrimSpace(text)
	switch s.Stage {
	case StagePlanGeneration:
		plan, err := bmc.ParsePlan(text)
		if err != nil {
			m.say(s, KindError, titlePlanParse, fmt.Sprintf(msgPlanParseFmt, err))
			m.fail(s, err.Error())
			return
		}
		s.Plan = plan
		s.CurrentQuestion = 0
		s.Answers = bmc.AnswerMap{}
		m.say(s, KindAI, titlePlanReady, fmt.Sprintf(msgPlanReadyFmt, len(plan)))
		m.say(s, KindAI, titleLetsGo, msgLetsGo)
		s.Stage = StageDataGathering
		m.progress(s)
	case StageAnalysis:
		s.Analysis = text
		m.say(s, KindOutput, TitleAnalysisOutput, text)
		m.say(s, KindAI, titleInnovation, msgInnovation)
		m.say(s, KindStatus, "", statusIdeaList)
		s.Stage = StageSuggestionList
	case StageSuggestionList:
		s.IdeaList = text
		m.say(s, KindOutput, TitleIdeaListOutput, text)
		titles := bmc.ExtractTitles(text)
		if len(titles) == 0 {
			m.say(s, KindError, titleTitlesError, msgTitlesError)
			m.fail(s, bmc.ErrNoTitles.Error())
			return
		}
		s.Titles = titles
		m.say(s, KindAI, titleDetails, fmt.Sprintf(msgDetailsFmt, len(titles)))
		m.say(s, KindStatus, "", fmt.Sprintf(statusDetailFmt, titles[0]))
		s.Stage = StageSuggestionDetails
	case StageSuggestionDetails:
		title := s.Titles[len(s.Details)]
		s.Details = append(s.Details, IdeaDetail{Title: title, Detail: text})
		m.say(s, KindOutput, fmt.Sprintf(titleDetailFmt, title), text)
		if len(s.Details) == len(s.Titles) {
			m.say(s, KindAI, titleFinished, msgFinished)
			s.Stage = StageFinished
			return
		}
		m.say(s, KindStatus, "", fmt.Sprintf(statusDetailFmt, s.Titles[len(s.Details)]))
	}
}

func (m *Machine) onModelError(s *State, err error) {
	m.say(s, KindError, titleModelError, err.Error())
	if s.Stage == StagePlanGeneration {
		m.say(s, KindAI, titlePlanError, msgPlanError)
	}
	m.fail(s, err.Error())
}

func (m *Machine) fail(s *State, reason string) {
	m.say(s, KindAI, titleRestart, msgRestart)
	s.Failure = reason
	s.Stage = StageFailed
}
