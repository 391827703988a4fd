// Package execution runs a workspace program over the platform evaluation stream.
//
// A run authenticates the stream, drives it through stop, reset and eval, and
// relays the server events until the first terminal one: a port opening, an error,
// or the idle watchdog firing.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/slok/replup/internal/log"
	"github.com/slok/replup/internal/model"
)

const (
	// DefaultInstallCheckDelay is the time after eval to check if packages are being installed.
	DefaultInstallCheckDelay = time.Second
	// DefaultIdleTimeout is the time a run can go without a terminal event.
	DefaultIdleTimeout = 8 * time.Second
)

// TokenProvider gets execution tokens for a workspace.
type TokenProvider interface {
	ExecutionToken(ctx context.Context, workspaceID string) (string, error)
}

// Display surfaces the run timeline to the user.
type Display interface {
	Status(msg string)
	Output(text string)
}

type noopDisplay struct{}

func (noopDisplay) Status(string) {}
func (noopDisplay) Output(string) {}

// DriverConfig is the configuration of the execution driver.
type DriverConfig struct {
	// TokenProvider is required.
	TokenProvider TokenProvider
	// Dialer is required.
	Dialer            Dialer
	Display           Display
	ConnectTimeout    time.Duration
	InstallCheckDelay time.Duration
	IdleTimeout       time.Duration
	Logger            log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.TokenProvider == nil {
		return fmt.Errorf("token provider is required")
	}
	if c.Dialer == nil {
		return fmt.Errorf("dialer is required")
	}
	if c.Display == nil {
		c.Display = noopDisplay{}
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.InstallCheckDelay <= 0 {
		c.InstallCheckDelay = DefaultInstallCheckDelay
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "execution.Driver"})
	return nil
}

// Driver executes programs on workspaces.
type Driver struct {
	tokens            TokenProvider
	dialer            Dialer
	display           Display
	connectTimeout    time.Duration
	installCheckDelay time.Duration
	idleTimeout       time.Duration
	logger            log.Logger
}

// NewDriver returns a new execution driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{
		tokens:            cfg.TokenProvider,
		dialer:            cfg.Dialer,
		display:           cfg.Display,
		connectTimeout:    cfg.ConnectTimeout,
		installCheckDelay: cfg.InstallCheckDelay,
		idleTimeout:       cfg.IdleTimeout,
		logger:            cfg.Logger,
	}, nil
}

// Run evaluates code on the workspace. It returns on the first terminal event and the
// stream is always closed before returning.
func (d *Driver) Run(ctx context.Context, ws model.Workspace, code string) (*model.ExecResult, error) {
	logger := d.logger.WithCtxValues(ctx)

	token, err := d.tokens.ExecutionToken(ctx, ws.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get execution token: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.connectTimeout)
	conn, err := d.dialer.Dial(dialCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrConnect, err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(model.Message{Command: model.CommandAuth, Data: token}); err != nil {
		return nil, fmt.Errorf("%w: sending auth: %w", model.ErrConnect, err)
	}
	logger.Debugf("Stream authenticated")

	// Stops the reader before the deferred close of the connection unblocks it.
	done := make(chan struct{})
	defer close(done)
	inbound, readErrs := readLoop(conn, done)

	w := &watchdogs{}
	defer w.stop()

	session := NewSession(code)
	for {
		var step Step
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-readErrs:
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", model.ErrConnect, err)
			}
			// The reader is gone, only the watchdogs can end the run now.
			readErrs = nil
			logger.Debugf("Stream closed by server on stage %s", session.Stage())
			step = session.StreamClosed()
		case msg := <-inbound:
			step = session.Handle(msg)
			if step.Ignored {
				logger.Debugf("Ignored %q message on stage %s", msg.Command, session.Stage())
			}
		case <-w.checkC():
			w.check = nil
			step = session.InstallCheckFired()
		case <-w.idleC():
			w.idle = nil
			logger.Debugf("Idle timeout reached")
			step = session.IdleFired()
		}

		if step.Send != nil {
			if err := conn.WriteMessage(*step.Send); err != nil {
				return nil, fmt.Errorf("%w: sending %s: %w", model.ErrConnect, step.Send.Command, err)
			}
			logger.Debugf("Sent %q, now on stage %s", step.Send.Command, session.Stage())
		}
		if step.Status != "" {
			d.display.Status(step.Status)
		}
		if step.Output != "" {
			d.display.Output(step.Output)
		}

		switch step.Watchdog {
		case WatchdogArmInstallCheck:
			w.armCheck(d.installCheckDelay)
		case WatchdogArmIdle:
			w.armIdle(d.idleTimeout)
		case WatchdogDisarmIdle:
			w.disarmIdle()
		}

		switch step.Outcome {
		case OutcomeSuccess:
			return session.Result(), nil
		case OutcomeFailure:
			return nil, step.Err
		}
	}
}

// readLoop relays inbound messages until a read fails or done is closed.
func readLoop(conn Conn, done <-chan struct{}) (<-chan model.Message, <-chan error) {
	msgs := make(chan model.Message)
	errs := make(chan error, 1)

	go func() {
		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}

			select {
			case msgs <- msg:
			case <-done:
				return
			}
		}
	}()

	return msgs, errs
}

// watchdogs holds the run timers, a nil timer is disarmed.
type watchdogs struct {
	check *time.Timer
	idle  *time.Timer
}

func (w *watchdogs) armCheck(d time.Duration) {
	if w.check != nil {
		w.check.Stop()
	}
	w.check = time.NewTimer(d)
}

func (w *watchdogs) armIdle(d time.Duration) {
	w.disarmIdle()
	w.idle = time.NewTimer(d)
}

func (w *watchdogs) disarmIdle() {
	if w.idle != nil {
		w.idle.Stop()
		w.idle = nil
	}
}

// A nil channel blocks forever, so disarmed timers never get selected.
func (w *watchdogs) checkC() <-chan time.Time {
	if w.check == nil {
		return nil
	}
	return w.check.C
}

func (w *watchdogs) idleC() <-chan time.Time {
	if w.idle == nil {
		return nil
	}
	return w.idle.C
}

func (w *watchdogs) stop() {
	if w.check != nil {
		w.check.Stop()
	}
	w.disarmIdle()
}
