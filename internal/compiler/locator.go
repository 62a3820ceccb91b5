package compiler

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/projcpp/projcpp/internal/config"
	"github.com/projcpp/projcpp/internal/platform"
)

// ErrDeclined means no strategy matched and the user dismissed every prompt.
var ErrDeclined = errors.New("no compiler selected")

// State is a step of the discovery state machine.
type State int

// Discovery states. The Awaiting* states are where the machine pauses for
// the user.
const (
	StateIdle State = iota
	StateProbing
	StateAwaitingChoice
	StateAwaitingExecutable
	StateDownloading
	StateAwaitingExtractConfirm
	StateAwaitingExtractDir
	StateExtracting
	StateResolved
	StateDeclined
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateAwaitingChoice:
		return "awaiting-choice"
	case StateAwaitingExecutable:
		return "awaiting-executable"
	case StateDownloading:
		return "downloading"
	case StateAwaitingExtractConfirm:
		return "awaiting-extract-confirm"
	case StateAwaitingExtractDir:
		return "awaiting-extract-dir"
	case StateExtracting:
		return "extracting"
	case StateResolved:
		return "resolved"
	case StateDeclined:
		return "declined"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher downloads url into dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, progress func(done, total int64)) error
}

// Unpacker extracts archive into dir.
type Unpacker interface {
	Extract(ctx context.Context, archive, dir string, progress func(done, total int64)) error
}

// Options configures a Locator.
type Options struct {
	Host       platform.Host
	Settings   config.Store
	Validator  *Validator
	Prompter   Prompter
	Fetcher    Fetcher
	Unpacker   Unpacker
	Registrar  *PathRegistrar
	Strategies []Strategy // defaults to DefaultStrategies

	ToolchainURL string
	DownloadDir  string
}

// Resolution is the outcome of a successful Init.
type Resolution struct {
	Command   string
	PathAdded bool

	// Validated reports that Command passed the Validator during this Init.
	Validated bool
}

// Locator runs discovery. It is not safe for concurrent use.
type Locator struct {
	opts  Options
	state State

	command     string
	validated   bool
	archivePath string
	extractDir  string

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// NewLocator builds a Locator.
func NewLocator(opts Options) *Locator {
	if opts.Strategies == nil {
		opts.Strategies = DefaultStrategies(opts.Settings, opts.Validator)
	}
	if opts.ToolchainURL == "" {
		opts.ToolchainURL = config.DefaultToolchainURL
	}
	return &Locator{opts: opts}
}

// State returns the current discovery state.
func (l *Locator) State() State {
	return l.state
}

func (l *Locator) transition(to State) {
	from := l.state
	l.state = to
	logger.Printf("locator: %s -> %s", from, to)
	if l.OnTransition != nil {
		l.OnTransition(from, to)
	}
}

func (l *Locator) notify(msg string) {
	if l.opts.Prompter != nil {
		l.opts.Prompter.Notify(msg)
	}
}

// Init locates a compiler, persists it and, on Windows, puts its directory
// on the user PATH. ErrDeclined is returned when the user opted out.
func (l *Locator) Init(ctx context.Context) (Resolution, error) {
	cmd, err := l.Locate(ctx)
	if err != nil {
		return Resolution{}, err
	}

	// a saved command that still validates is left alone, so session
	// overrides are not written back to the settings file
	if cmd != l.opts.Settings.Get(config.KeyCompileCommand) {
		if err := l.opts.Settings.Set(config.KeyCompileCommand, cmd); err != nil {
			return Resolution{}, fmt.Errorf("failed to save compile command: %w", err)
		}
	}

	res := Resolution{Command: cmd, Validated: l.validated}
	if l.opts.Registrar != nil {
		if _, err := l.opts.Registrar.Register(ctx, cmd); err != nil {
			logger.Printf("path registration failed: %v", err)
		}
		res.PathAdded = l.opts.Registrar.Added()
	}
	return res, nil
}

// Locate walks the strategies and, if none match, the interactive fallback.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	l.command, l.archivePath, l.extractDir = "", "", ""
	l.validated = false
	l.transition(StateProbing)

	for _, s := range l.opts.Strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		cmd, ok := s.Resolve(ctx)
		if !ok {
			logger.Printf("strategy %s: no match", s.Name)
			continue
		}
		logger.Printf("strategy %s: %s", s.Name, cmd)
		if s.Notice != "" {
			l.notify(s.Notice)
		}
		l.command = cmd
		l.validated = s.Validates
		l.transition(StateResolved)
		return cmd, nil
	}

	if l.opts.Prompter == nil {
		l.transition(StateDeclined)
		return "", ErrDeclined
	}

	l.transition(StateAwaitingChoice)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var err error
		switch l.state {
		case StateAwaitingChoice:
			err = l.awaitChoice(ctx)
		case StateAwaitingExecutable:
			err = l.awaitExecutable(ctx)
		case StateDownloading:
			l.download(ctx)
		case StateAwaitingExtractConfirm:
			err = l.awaitExtractConfirm(ctx)
		case StateAwaitingExtractDir:
			err = l.awaitExtractDir(ctx)
		case StateExtracting:
			l.extract(ctx)
		case StateResolved:
			return l.command, nil
		case StateDeclined:
			return "", ErrDeclined
		default:
			return "", fmt.Errorf("unexpected locator state %s", l.state)
		}
		if err != nil {
			return "", err
		}
	}
}

func (l *Locator) awaitChoice(ctx context.Context) error {
	choice, err := l.opts.Prompter.Choose(ctx, MsgNotFound, OptChooseExecutable, OptDownload)
	if err != nil {
		return err
	}
	switch choice {
	case OptChooseExecutable:
		l.transition(StateAwaitingExecutable)
	case OptDownload:
		l.transition(StateDownloading)
	default:
		l.transition(StateDeclined)
	}
	return nil
}

func (l *Locator) awaitExecutable(ctx context.Context) error {
	picked, err := l.opts.Prompter.PickPath(ctx, PathRequest{Title: TitleExecutable})
	if err != nil {
		return err
	}
	if picked == "" {
		l.transition(StateDeclined)
		return nil
	}
	l.command = absPath(picked)
	l.transition(StateResolved)
	return nil
}

func (l *Locator) download(ctx context.Context) {
	if l.opts.Fetcher == nil {
		l.notify(MsgDownloadFailed)
		l.transition(StateDeclined)
		return
	}

	l.archivePath = filepath.Join(l.opts.DownloadDir, archiveName(l.opts.ToolchainURL))
	l.notify(MsgDownloading)
	err := l.opts.Fetcher.Fetch(ctx, l.opts.ToolchainURL, l.archivePath, func(done, total int64) {
		l.opts.Prompter.Progress(MsgDownloading, done, total)
	})
	if err != nil {
		logger.Printf("download %s: %v", l.opts.ToolchainURL, err)
		l.notify(MsgDownloadFailed)
		l.transition(StateDeclined)
		return
	}
	l.transition(StateAwaitingExtractConfirm)
}

func (l *Locator) awaitExtractConfirm(ctx context.Context) error {
	choice, err := l.opts.Prompter.Choose(ctx, MsgDownloaded, OptChooseExtractDir, OptNo)
	if err != nil {
		return err
	}
	if choice == OptChooseExtractDir {
		l.transition(StateAwaitingExtractDir)
	} else {
		l.transition(StateDeclined)
	}
	return nil
}

func (l *Locator) awaitExtractDir(ctx context.Context) error {
	dir, err := l.opts.Prompter.PickPath(ctx, PathRequest{Title: TitleExtractLocation, Folder: true})
	if err != nil {
		return err
	}
	if dir == "" {
		l.transition(StateDeclined)
		return nil
	}
	l.extractDir = absPath(dir)
	l.transition(StateExtracting)
	return nil
}

func (l *Locator) extract(ctx context.Context) {
	if l.opts.Unpacker == nil {
		l.transition(StateDeclined)
		return
	}
	l.notify(MsgExtracting)
	err := l.opts.Unpacker.Extract(ctx, l.archivePath, l.extractDir, func(done, total int64) {
		l.opts.Prompter.Progress(MsgExtracting, done, total)
	})
	if err != nil {
		logger.Printf("extract %s: %v", l.archivePath, err)
		l.notify(fmt.Sprintf("Failed to extract compiler: %v", err))
		l.transition(StateDeclined)
		return
	}
	l.notify(MsgExtracted)
	l.command = ExtractedCompilerPath(l.extractDir, l.opts.Host.IsWindows())
	l.transition(StateResolved)
}

// absPath resolves a picked path against the working directory.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		logger.Printf("abs %s: %v", p, err)
		return p
	}
	return abs
}

// archiveName names the local download after the URL's archive extension.
func archiveName(rawURL string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(rawURL, "?", 2)[0]))
	if ext == ".zip" {
		return "mingw.zip"
	}
	return "mingw.7z"
}
