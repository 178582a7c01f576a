// Package agent implements the ReAct reasoning loop for kubesleuth.
//
// One Agent serves many concurrent requests; all mutable loop state lives
// in a per-request value, so no synchronization is needed beyond the
// immutable tool registry.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/kubesleuth/kubesleuth/internal/llm"
	"github.com/kubesleuth/kubesleuth/internal/metrics"
	"github.com/kubesleuth/kubesleuth/internal/tools"
	"github.com/kubesleuth/kubesleuth/pkg/models"
	"go.uber.org/zap"
)

// ModelClient is the completion collaborator. A failure here is the one
// unrecoverable condition in the loop.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// loopPhase is the state of the reasoning loop state machine.
type loopPhase int

const (
	phaseBuildingPrompt loopPhase = iota
	phaseAwaitingModel
	phaseParsing
	phaseDispatching
	phaseDone
)

// Agent drives the reasoning loop: prompt construction, model invocation,
// action parsing, tool dispatch, observation injection, and termination.
type Agent struct {
	model           ModelClient
	registry        *tools.Registry
	parser          *Parser
	dispatcher      *Dispatcher
	logger          *zap.Logger
	maxIterations   int
	displayTruncate int
}

// Config holds agent construction parameters.
type Config struct {
	Model           ModelClient
	Registry        *tools.Registry
	Logger          *zap.Logger
	MaxIterations   int
	DisplayTruncate int
}

// New creates an agent with all loop components initialized.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent: model client is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("agent: tool registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.DisplayTruncate <= 0 {
		cfg.DisplayTruncate = 200
	}

	return &Agent{
		model:           cfg.Model,
		registry:        cfg.Registry,
		parser:          NewParser(cfg.Registry),
		dispatcher:      NewDispatcher(cfg.Registry, cfg.Logger),
		logger:          cfg.Logger,
		maxIterations:   cfg.MaxIterations,
		displayTruncate: cfg.DisplayTruncate,
	}, nil
}

// Result is the outcome of one diagnosis request. Steps and ToolsUsed are
// populated for every terminal state, including fatal ones.
type Result struct {
	Answer    string
	Outcome   models.Outcome
	ToolsUsed []string
	Steps     []models.ReasoningStep
}

// loopState is the mutable per-request state. It is owned by exactly one
// Diagnose call and never shared.
type loopState struct {
	scratchpad strings.Builder
	iterations int
	lastOutput ParsedOutput
	prompt     string
	response   string
}

// Diagnose runs the reasoning loop for one question.
func (a *Agent) Diagnose(ctx context.Context, message, namespace string) (*Result, error) {
	return a.DiagnoseStream(ctx, message, namespace, nil)
}

// DiagnoseStream runs the loop, invoking onStep for each recorded
// reasoning step as it completes. onStep may be nil.
func (a *Agent) DiagnoseStream(ctx context.Context, message, namespace string, onStep func(models.ReasoningStep)) (*Result, error) {
	trace := NewTraceRecorder(a.displayTruncate)
	state := &loopState{}

	a.logger.Info("starting reasoning loop",
		zap.String("message", message),
		zap.String("namespace", namespace),
		zap.Int("max_iterations", a.maxIterations))

	phase := phaseBuildingPrompt
	var result *Result
	var fatalErr error

	for phase != phaseDone {
		if err := ctx.Err(); err != nil {
			result, fatalErr = a.fatal(trace, fmt.Errorf("request cancelled: %w", err))
			break
		}

		switch phase {
		case phaseBuildingPrompt:
			state.prompt = llm.BuildPrompt(message, namespace, a.registry, state.scratchpad.String())
			phase = phaseAwaitingModel

		case phaseAwaitingModel:
			response, err := a.model.Complete(ctx, state.prompt)
			if err != nil {
				result, fatalErr = a.fatal(trace, err)
				phase = phaseDone
				continue
			}
			state.response = response
			phase = phaseParsing

		case phaseParsing:
			state.lastOutput = a.parser.Parse(state.response)
			switch state.lastOutput.Kind {
			case ParseFinalAnswer:
				result = a.succeed(trace, state, onStep)
				phase = phaseDone
			case ParseAction:
				phase = phaseDispatching
			case ParseFailure:
				a.selfCorrect(state)
				phase = a.nextIteration(trace, state, &result)
			}

		case phaseDispatching:
			out := state.lastOutput
			a.logger.Info("dispatching tool",
				zap.String("tool", out.Tool),
				zap.Any("args", out.Args),
				zap.Int("iteration", state.iterations+1))

			obs := a.dispatcher.Dispatch(ctx, out.Tool, out.Args, namespace)
			state.appendObservation(state.response, obs.Text)

			step := trace.Record(out.Thought, out.Tool, obs.Text)
			if onStep != nil {
				onStep(step)
			}
			phase = a.nextIteration(trace, state, &result)
		}
	}

	if result == nil {
		// Defensive: the switch above always sets result before phaseDone.
		result, fatalErr = a.fatal(trace, fmt.Errorf("loop ended without a terminal state"))
	}

	metrics.ChatsTotal.WithLabelValues(result.Outcome.String()).Inc()
	metrics.LoopIterations.Observe(float64(state.iterations))

	a.logger.Info("reasoning loop finished",
		zap.String("outcome", result.Outcome.String()),
		zap.Int("iterations", state.iterations),
		zap.Strings("tools_used", result.ToolsUsed))

	return result, fatalErr
}

// nextIteration counts one consumed iteration and decides between looping
// back to prompt construction and terminating on the budget.
func (a *Agent) nextIteration(trace *TraceRecorder, state *loopState, result **Result) loopPhase {
	state.iterations++
	if state.iterations >= a.maxIterations {
		*result = a.exceedBudget(trace, state)
		return phaseDone
	}
	return phaseBuildingPrompt
}

// selfCorrect appends a synthetic observation describing the formatting
// error so the model can fix itself on the next iteration.
func (a *Agent) selfCorrect(state *loopState) {
	a.logger.Warn("unparseable model output",
		zap.String("reason", state.lastOutput.FailureReason))

	correction := fmt.Sprintf(
		"Invalid response format (%s). Reply with either:\nAction: <tool name>\nAction Input: <JSON object>\nor\nFinal Answer: <your diagnosis>",
		state.lastOutput.FailureReason)
	state.appendObservation(state.response, correction)
}

func (a *Agent) succeed(trace *TraceRecorder, state *loopState, onStep func(models.ReasoningStep)) *Result {
	out := state.lastOutput
	step := trace.RecordTerminal(out.Thought, "final_answer", out.FinalAnswer)
	if onStep != nil {
		onStep(step)
	}
	return &Result{
		Answer:    out.FinalAnswer,
		Outcome:   models.OutcomeSuccess,
		ToolsUsed: trace.ToolsUsed(),
		Steps:     trace.Steps(),
	}
}

func (a *Agent) exceedBudget(trace *TraceRecorder, state *loopState) *Result {
	answer := "Inconclusive: the diagnosis did not converge within the iteration budget."
	if thought := state.lastOutput.Thought; thought != "" {
		answer += " Last reasoning step: " + thought
	}
	trace.RecordTerminal(state.lastOutput.Thought, "inconclusive", answer)
	return &Result{
		Answer:    answer,
		Outcome:   models.OutcomeBudgetExceeded,
		ToolsUsed: trace.ToolsUsed(),
		Steps:     trace.Steps(),
	}
}

func (a *Agent) fatal(trace *TraceRecorder, err error) (*Result, error) {
	a.logger.Error("model completion failed", zap.Error(err))
	return &Result{
		Outcome:   models.OutcomeFatal,
		ToolsUsed: trace.ToolsUsed(),
		Steps:     trace.Steps(),
	}, fmt.Errorf("model unavailable: %w", err)
}

// appendObservation extends the scratchpad with the model's output and the
// observation, reopening the Thought marker for the next completion.
func (s *loopState) appendObservation(response, observation string) {
	s.scratchpad.WriteString(" ")
	s.scratchpad.WriteString(strings.TrimSpace(response))
	s.scratchpad.WriteString("\nObservation: ")
	s.scratchpad.WriteString(observation)
	s.scratchpad.WriteString("\nThought:")
}
