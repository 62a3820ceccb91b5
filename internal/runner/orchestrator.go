// Package runner compiles the directory of the active source file and runs
// the resulting binary, rediscovering the compiler when the saved one goes
// stale.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/projcpp/projcpp/internal/compiler"
	"github.com/projcpp/projcpp/internal/config"
	"github.com/projcpp/projcpp/internal/log"
	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

var logger = log.Named("runner")

var (
	// ErrInvalidTarget is returned when the run target has no directory part.
	ErrInvalidTarget = errors.New("please click inside an actual source file before running")
	// ErrCompileFailed is returned when the compiler wrote to stderr or failed.
	ErrCompileFailed = errors.New("compilation failed")
	// ErrStaleCommand is returned when a freshly discovered compiler is
	// rejected again on replay.
	ErrStaleCommand = errors.New("compiler command is no longer valid")
)

// State is the orchestrator lifecycle.
type State int

// Orchestrator states.
const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RunState is the in-memory session state. It is never persisted.
type RunState struct {
	Initialized bool
	Pending     string
	PathAdded   bool
}

// Initializer resolves and persists a compiler. *compiler.Locator is the
// production implementation.
type Initializer interface {
	Init(ctx context.Context) (compiler.Resolution, error)
}

// CommandValidator checks a saved compile command before each run.
type CommandValidator interface {
	IsCommand(ctx context.Context, s string) bool
}

// Options wires an Orchestrator.
type Options struct {
	Host      platform.Host
	Settings  config.Store
	Runner    process.Runner
	Validator CommandValidator
	Locator   Initializer
	Saver     DocumentSaver
	Output    OutputLog

	Internal Launcher
	External Launcher

	// OnRun is called with the run directory after a successful launch.
	OnRun func(ctx context.Context, dir string)
}

// Orchestrator drives Run. Calls are serialized.
type Orchestrator struct {
	mu    sync.Mutex
	opts  Options
	state State
	run   RunState

	// validated is a command the locator checked for the pending replay.
	validated string
}

// New builds an Orchestrator in the uninitialized state.
func New(opts Options) *Orchestrator {
	if opts.Saver == nil {
		opts.Saver = NopSaver{}
	}
	if opts.Output == nil {
		opts.Output = &MemoryLog{}
	}
	return &Orchestrator{opts: opts}
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RunState returns a copy of the session state.
func (o *Orchestrator) RunState() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run
}

func (o *Orchestrator) setState(s State) {
	if o.state != s {
		logger.Printf("state %s -> %s", o.state, s)
	}
	o.state = s
	o.run.Initialized = s != StateUninitialized
}

// Init runs discovery and, on success, replays the pending run once. A
// declined discovery is not an error: the orchestrator stays uninitialized
// with the request kept pending.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initLocked(ctx)
}

func (o *Orchestrator) initLocked(ctx context.Context) error {
	res, err := o.opts.Locator.Init(ctx)
	if errors.Is(err, compiler.ErrDeclined) {
		logger.Printf("discovery declined; pending=%q", o.run.Pending)
		return nil
	}
	if err != nil {
		return err
	}

	o.setState(StateInitialized)
	o.run.PathAdded = o.run.PathAdded || res.PathAdded
	logger.Printf("initialized with %q", res.Command)

	pending := o.run.Pending
	o.run.Pending = ""
	if pending == "" {
		return nil
	}
	if res.Validated {
		o.validated = res.Command
	}
	logger.Printf("replaying %s", pending)
	return o.runLocked(ctx, pending, false)
}

// Run compiles the directory of file and launches the binary. While
// uninitialized it only records file as the pending target and triggers
// discovery.
func (o *Orchestrator) Run(ctx context.Context, file string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runLocked(ctx, file, true)
}

func (o *Orchestrator) runLocked(ctx context.Context, file string, mayInit bool) error {
	if o.state == StateUninitialized {
		o.run.Pending = file
		if !mayInit {
			return ErrStaleCommand
		}
		return o.initLocked(ctx)
	}

	command := o.opts.Settings.Get(config.KeyCompileCommand)
	validated := o.validated
	o.validated = ""
	if (command == "" || command != validated) && !o.opts.Validator.IsCommand(ctx, command) {
		logger.Printf("compile command %q is no longer valid", command)
		if err := o.opts.Settings.Unset(config.KeyCompileCommand); err != nil {
			return fmt.Errorf("failed to clear compile command: %w", err)
		}
		o.setState(StateUninitialized)
		o.run.Pending = file
		if !mayInit {
			return fmt.Errorf("%w: %s", ErrStaleCommand, command)
		}
		return o.initLocked(ctx)
	}

	o.setState(StateRunning)
	defer o.setState(StateInitialized)

	if err := o.opts.Saver.SaveAll(ctx); err != nil {
		return fmt.Errorf("failed to save open documents: %w", err)
	}

	dir, ok := DirOf(file)
	if !ok {
		return ErrInvalidTarget
	}

	res, err := Compile(ctx, o.opts.Runner, o.opts.Host, command, file, dir)
	if err != nil {
		return err
	}
	if res.Diagnostics != "" {
		o.opts.Output.Clear()
		o.opts.Output.Append("Error while compiling:")
		o.opts.Output.Append(res.Diagnostics)
		o.opts.Output.Show()
		return ErrCompileFailed
	}

	launcher := o.opts.Internal
	if o.opts.Settings.GetBool(config.KeyExternalTerminal, false) {
		launcher = o.opts.External
	}
	if launcher == nil {
		return errors.New("no launcher configured")
	}
	err = launcher.Launch(ctx, dir, o.opts.Host.BinaryName())
	var exit *ExitError
	if err != nil && !errors.As(err, &exit) {
		return err
	}
	if o.opts.OnRun != nil {
		o.opts.OnRun(ctx, dir)
	}
	return err
}
