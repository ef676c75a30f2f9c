package installer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

type fakeProber struct {
	rec   Record
	calls int
}

func (p *fakeProber) Probe(d target.Descriptor) Record {
	p.calls++
	rec := p.rec
	if rec.Present && rec.UninstallCommand == nil {
		rec.UninstallCommand = d.UninstallCommand()
	}
	return rec
}

type fakeFetcher struct {
	body      []byte
	err       error
	skipWrite bool
	urls      []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dest string) error {
	f.urls = append(f.urls, url)
	if f.err != nil {
		// leave a partial file behind like an interrupted transfer would
		_ = os.WriteFile(dest, []byte("part"), 0o644)
		return f.err
	}
	if f.skipWrite {
		return nil
	}
	return os.WriteFile(dest, f.body, 0o644)
}

type fakeRunner struct {
	calls   [][]string
	results map[string]Result // keyed by the command's base name
	onRun   func(argv []string)
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) Result {
	argv := append([]string{name}, args...)
	r.calls = append(r.calls, argv)
	if r.onRun != nil {
		r.onRun(argv)
	}
	if res, ok := r.results[filepath.Base(name)]; ok {
		return res
	}
	return Result{}
}

func (r *fakeRunner) called(name string) [][]string {
	var out [][]string
	for _, c := range r.calls {
		if filepath.Base(c[0]) == name {
			out = append(out, c)
		}
	}
	return out
}

type fakeConfirmer struct {
	answer bool
	asked  int
}

func (c *fakeConfirmer) Confirm(string) (bool, error) {
	c.asked++
	return c.answer, nil
}

// harness wires an orchestrator with fakes around a real temp directory.
type harness struct {
	o         *Orchestrator
	prober    *fakeProber
	fetcher   *fakeFetcher
	runner    *fakeRunner
	confirmer *fakeConfirmer
	tempDir   string
	d         target.Descriptor
}

func newHarness(t *testing.T, choice target.Choice, strict bool) *harness {
	t.Helper()
	h := &harness{
		prober:    &fakeProber{},
		fetcher:   &fakeFetcher{body: []byte("artifact-bytes")},
		runner:    &fakeRunner{results: map[string]Result{}},
		confirmer: &fakeConfirmer{},
		tempDir:   t.TempDir(),
	}

	d, err := target.DefaultsFor(choice, "windows", "amd64")
	require.NoError(t, err)
	d.URL = "https://downloads.example/" + d.Name + d.ArtifactExt
	d.BinaryPath = filepath.Join(t.TempDir(), "bin", d.Name+".exe")
	h.d = d

	// msiexec "installs" the binary the way the real MSI would
	h.runner.onRun = func(argv []string) {
		if argv[0] == "msiexec" {
			require.NoError(t, os.MkdirAll(filepath.Dir(d.BinaryPath), 0o755))
			require.NoError(t, os.WriteFile(d.BinaryPath, []byte("bin"), 0o755))
		}
	}

	h.o = &Orchestrator{
		Prober:      h.prober,
		Fetcher:     h.fetcher,
		Executor:    &Executor{Runner: h.runner, Strict: strict},
		Registrar:   &Registrar{Runner: h.runner, Strict: strict},
		Uninstaller: &Uninstaller{Runner: h.runner},
		Confirmer:   h.confirmer,
		TempDir:     h.tempDir,
	}
	return h
}

func (h *harness) tempEntries(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func joined(argv []string) string { return strings.Join(argv, " ") }

// captureOutput redirects console logging into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}
