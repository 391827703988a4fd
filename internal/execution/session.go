package execution

import (
	"fmt"

	"github.com/slok/replup/internal/model"
)

// Stage is the protocol stage of a session, stages only move forward.
type Stage int

const (
	StageAwaitingStopReady Stage = iota
	StageAwaitingResetReady
	StageAwaitingEvalReady
	StageEvalSent
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingStopReady:
		return "awaiting-stop-ready"
	case StageAwaitingResetReady:
		return "awaiting-reset-ready"
	case StageAwaitingEvalReady:
		return "awaiting-eval-ready"
	case StageEvalSent:
		return "eval-sent"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// WatchdogAction tells the driver what to do with the run timers.
type WatchdogAction int

const (
	WatchdogNone WatchdogAction = iota
	// WatchdogArmInstallCheck arms the short timer that checks if packages are being installed.
	WatchdogArmInstallCheck
	// WatchdogArmIdle arms (or re-arms) the idle termination timer.
	WatchdogArmIdle
	// WatchdogDisarmIdle stops the idle termination timer.
	WatchdogDisarmIdle
)

// Outcome is the state of the run after a step.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// Step is the effect of a single session event.
type Step struct {
	// Send is the message to send to the server, if any.
	Send *model.Message
	// Status is a status line to surface, if any.
	Status string
	// Output is formatted text to surface, if any.
	Output   string
	Watchdog WatchdogAction
	Outcome  Outcome
	// Err is set when Outcome is OutcomeFailure.
	Err error
	// Ignored is true when the event didn't have any meaning for the session.
	Ignored bool
}

// Session is the state machine of a single evaluation stream. It is not safe for
// concurrent use, events must be fed in arrival order.
type Session struct {
	code        string
	stage       Stage
	installing  bool
	finished    bool
	closed      bool
	portOpened  bool
	idleTimeout bool
}

// NewSession returns a session that will evaluate code once the server is ready.
func NewSession(code string) *Session {
	return &Session{code: code}
}

func (s *Session) Stage() Stage     { return s.stage }
func (s *Session) Installing() bool { return s.installing }
func (s *Session) Finished() bool   { return s.finished }

// Result returns the execution result.
func (s *Session) Result() *model.ExecResult {
	return &model.ExecResult{
		PortOpened:  s.portOpened,
		IdleTimeout: s.idleTimeout,
	}
}

// Handle processes a server message. Once the session finished every event is a no-op.
func (s *Session) Handle(msg model.Message) Step {
	if s.finished {
		return Step{Ignored: true}
	}

	if msg.Error != "" {
		s.finished = true
		return Step{
			Outcome: OutcomeFailure,
			Err:     fmt.Errorf("%w: %s", model.ErrExecution, Humanize(msg.Error)),
		}
	}

	switch msg.Command {
	case model.CommandReady:
		return s.handleReady()

	case model.CommandPackageInstallStart:
		s.installing = true
		return Step{Status: "Installing packages", Watchdog: WatchdogDisarmIdle}

	case model.CommandPackageInstallOutput:
		if msg.Data == "" {
			return Step{}
		}
		return Step{Output: Humanize(msg.Data)}

	case model.CommandPackageInstallEnd:
		s.installing = false
		return Step{Status: "Packages installed", Watchdog: WatchdogArmIdle}

	case model.CommandOutput, model.CommandInterpOutput:
		out := CleanOutput(msg.Data)
		if out == "" {
			return Step{}
		}
		return Step{Output: Humanize(out)}

	case model.CommandPortOpen:
		s.portOpened = true
		s.finished = true
		return Step{Outcome: OutcomeSuccess}
	}

	return Step{Ignored: true}
}

func (s *Session) handleReady() Step {
	switch s.stage {
	case StageAwaitingStopReady:
		s.stage = StageAwaitingResetReady
		return Step{Send: &model.Message{Command: model.CommandStop}}
	case StageAwaitingResetReady:
		s.stage = StageAwaitingEvalReady
		return Step{Send: &model.Message{Command: model.CommandReset}}
	case StageAwaitingEvalReady:
		s.stage = StageEvalSent
		return Step{
			Send:     &model.Message{Command: model.CommandEval, Data: s.code},
			Status:   "Running",
			Watchdog: WatchdogArmInstallCheck,
		}
	}

	return Step{Ignored: true}
}

// InstallCheckFired must be called when the install check timer fires. If no package
// installation started the idle timer is armed.
func (s *Session) InstallCheckFired() Step {
	if s.finished || s.installing || s.closed {
		return Step{}
	}
	return Step{Watchdog: WatchdogArmIdle}
}

// StreamClosed must be called when the server closed the stream cleanly. Before eval
// the run can't continue and fails. After eval nothing else will arrive, so a pending
// install is over and the idle timer is armed to end the run.
func (s *Session) StreamClosed() Step {
	if s.finished {
		return Step{Ignored: true}
	}
	if s.stage != StageEvalSent {
		s.finished = true
		return Step{
			Outcome: OutcomeFailure,
			Err:     fmt.Errorf("%w: stream closed on stage %s", model.ErrConnect, s.stage),
		}
	}

	s.closed = true
	s.installing = false
	return Step{Watchdog: WatchdogArmIdle}
}

// IdleFired must be called when the idle timer fires, the program produced nothing
// terminal in time and the run ends successfully.
func (s *Session) IdleFired() Step {
	if s.finished {
		return Step{Ignored: true}
	}
	s.finished = true
	s.idleTimeout = true
	return Step{Outcome: OutcomeSuccess}
}
