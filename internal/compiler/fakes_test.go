package compiler

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

// fakeRunner answers locate probes from a table keyed by "utility arg".
type fakeRunner struct {
	results map[string]process.Result
	calls   []process.Spec
}

func (f *fakeRunner) Run(_ context.Context, spec process.Spec) (process.Result, error) {
	f.calls = append(f.calls, spec)
	key := spec.Name + " " + strings.Join(spec.Args, " ")
	res, ok := f.results[key]
	if !ok {
		return process.Result{ExitCode: 1}, errors.New("exit status 1")
	}
	if res.ExitCode != 0 {
		return res, errors.New("exit status")
	}
	return res, nil
}

func (f *fakeRunner) Start(context.Context, process.Spec) error { return nil }

func (f *fakeRunner) probes() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Name+" "+strings.Join(c.Args, " "))
	}
	return out
}

func hostWith(goos string, existing ...string) platform.Host {
	set := map[string]bool{}
	for _, p := range existing {
		set[p] = true
	}
	return platform.Host{
		GOOS:   goos,
		Getenv: func(string) string { return "" },
		Stat: func(name string) (os.FileInfo, error) {
			if set[name] {
				return nil, nil
			}
			return nil, os.ErrNotExist
		},
	}
}

type fakePrompter struct {
	choices  []string
	paths    []string
	notices  []string
	progress []string
	asked    []string
}

func (p *fakePrompter) Notify(message string) { p.notices = append(p.notices, message) }

func (p *fakePrompter) Choose(_ context.Context, message string, _ ...string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.choices) == 0 {
		return "", nil
	}
	c := p.choices[0]
	p.choices = p.choices[1:]
	return c, nil
}

func (p *fakePrompter) PickPath(_ context.Context, req PathRequest) (string, error) {
	p.asked = append(p.asked, req.Title)
	if len(p.paths) == 0 {
		return "", nil
	}
	c := p.paths[0]
	p.paths = p.paths[1:]
	return c, nil
}

func (p *fakePrompter) Progress(task string, _, _ int64) {
	p.progress = append(p.progress, task)
}

type fakeFetcher struct {
	err  error
	url  string
	dest string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dest string, progress func(done, total int64)) error {
	f.url, f.dest = url, dest
	if f.err != nil {
		return f.err
	}
	progress(10, 10)
	return nil
}

type fakeUnpacker struct {
	err     error
	archive string
	dir     string
}

func (f *fakeUnpacker) Extract(_ context.Context, archive, dir string, progress func(done, total int64)) error {
	f.archive, f.dir = archive, dir
	if f.err != nil {
		return f.err
	}
	progress(1, 1)
	return nil
}
