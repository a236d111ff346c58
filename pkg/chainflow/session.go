package chainflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a session's lifecycle state.
type Status string

// Session states. A session is StatusRunning from creation until it reaches
// exactly one of the three terminal states.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// StepResult records one completed step. Append-only; never edited after
// creation.
type StepResult struct {
	StepName   string    `json:"step_name"`
	ResultText string    `json:"result_text"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Session is the mutable run-time record of one chain invocation.
//
// A session is owned exclusively by the goroutine executing its run. The
// step executor is the only writer, appending one StepResult per completed
// step, and the status becomes terminal exactly once. After the run returns,
// the session is read-only and handed back to the caller, including on
// failure so partial results stay inspectable.
type Session struct {
	// ID uniquely identifies this run.
	ID string

	// ChainName is the chain being executed.
	ChainName string

	// OriginalQuery is the user query the run started from.
	OriginalQuery string

	// Context is the caller-supplied key/value map. It supplies the
	// required provider and model settings and arbitrary extra keys that
	// become {{key}} substitutions in step prompts.
	Context map[string]any

	// CompletedSteps is the ordered log of finished steps, in resolver
	// order.
	CompletedSteps []StepResult

	// Cancel is the run's cooperative cancellation handle.
	Cancel *Handle

	// StartedAt is when the run began.
	StartedAt time.Time

	status Status
}

// NewSession creates a running session for one chain invocation. The
// cancellation handle is linked to parent when one is given, so cancelling
// the parent cancels this run.
func NewSession(chainName, query string, contextMap map[string]any, parent *Handle) *Session {
	return &Session{
		ID:            uuid.New().String(),
		ChainName:     chainName,
		OriginalQuery: query,
		Context:       contextMap,
		Cancel:        NewChildHandle(parent),
		StartedAt:     time.Now(),
		status:        StatusRunning,
	}
}

// Status returns the session's lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// appendResult logs a completed step. Called only by the step executor.
func (s *Session) appendResult(stepName, resultText string, at time.Time) {
	s.CompletedSteps = append(s.CompletedSteps, StepResult{
		StepName:   stepName,
		ResultText: resultText,
		ExecutedAt: at,
	})
}

// finish moves the session to a terminal state. The first transition wins;
// later calls are ignored so the status is set exactly once.
func (s *Session) finish(st Status) {
	if s.status == StatusRunning {
		s.status = st
	}
}

// LastResult returns the text of the most recently completed step, or ""
// before any step completes.
func (s *Session) LastResult() string {
	if len(s.CompletedSteps) == 0 {
		return ""
	}
	return s.CompletedSteps[len(s.CompletedSteps)-1].ResultText
}

// ResultsBlock renders every completed step as "name: result" lines,
// newline-separated, for the {{previousResults}} substitution.
func (s *Session) ResultsBlock() string {
	var b strings.Builder
	for i, r := range s.CompletedSteps {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.StepName)
		b.WriteString(": ")
		b.WriteString(r.ResultText)
	}
	return b.String()
}
