package texeqn

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// testSVG mimics pdf2svg output: XML declaration, then the root element.
const testSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="100px" height="50px" viewBox="0 0 100 50" version="1.1">
<g id="surface1"></g>
</svg>
`

// toolCall records one invocation seen by fakeToolchain.
type toolCall struct {
	Name string
	Args []string
}

// fakeToolchain stands in for pdflatex, pdfcrop and pdf2svg. Successful
// steps create the files the real tools would.
type fakeToolchain struct {
	mu    sync.Mutex
	calls []toolCall
	docs  []string // tex documents seen by the compile step

	svg   string                // written by the vectorize step (default testSVG)
	fail  map[string]Invocation // tool name -> non-zero invocation to return
	errs  map[string]error      // tool name -> runner error to return
	block map[string]bool       // tool name -> wait for ctx.Done
	delay time.Duration         // sleep before every step
	hold  chan struct{}         // when set, every step waits for it to close
}

func newFakeToolchain() *fakeToolchain {
	return &fakeToolchain{
		svg:   testSVG,
		fail:  map[string]Invocation{},
		errs:  map[string]error{},
		block: map[string]bool{},
	}
}

func (f *fakeToolchain) Run(ctx context.Context, name string, args ...string) (Invocation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, toolCall{Name: name, Args: append([]string(nil), args...)})
	inv, failing := f.fail[name]
	runErr := f.errs[name]
	blocking := f.block[name]
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return Invocation{ExitCode: -1}, ctx.Err()
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if blocking {
		<-ctx.Done()
		return Invocation{ExitCode: -1, Output: "partial output before kill\n"}, ctx.Err()
	}
	if runErr != nil {
		return Invocation{ExitCode: -1}, runErr
	}
	if failing {
		return inv, nil
	}

	switch name {
	case DefaultBackend:
		tex := args[len(args)-1]
		doc, err := os.ReadFile(tex)
		if err != nil {
			return Invocation{ExitCode: 1, Output: err.Error()}, nil
		}
		f.mu.Lock()
		f.docs = append(f.docs, string(doc))
		f.mu.Unlock()

		var outDir string
		for _, a := range args {
			if strings.HasPrefix(a, "-output-directory=") {
				outDir = strings.TrimPrefix(a, "-output-directory=")
			}
		}
		return f.write(filepath.Join(outDir, compiledName), "%PDF-1.5 compiled")
	case DefaultCropTool:
		return f.write(args[1], "%PDF-1.5 cropped")
	case DefaultVectorizeTool:
		return f.write(args[1], f.svg)
	}
	return Invocation{ExitCode: 127, Output: name + ": command not found"}, nil
}

func (f *fakeToolchain) write(path, content string) (Invocation, error) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Invocation{ExitCode: 1, Output: err.Error()}, nil
	}
	return Invocation{ExitCode: 0, Output: "ok\n"}, nil
}

func (f *fakeToolchain) Calls() []toolCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toolCall(nil), f.calls...)
}

func (f *fakeToolchain) CountCalls(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (f *fakeToolchain) Docs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.docs...)
}

// newTestRenderer returns a Renderer whose directories live under t.TempDir.
func newTestRenderer(t *testing.T, fake *fakeToolchain, opts ...Option) (*Renderer, *Config) {
	t.Helper()

	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.TmpDir = filepath.Join(root, "_tmp")
	cfg.OutputDir = filepath.Join(root, "assets", "texeqn")

	r, err := NewRenderer(cfg, append([]Option{WithRunner(fake)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer() unexpected error: %v", err)
	}
	return r, cfg
}

// waitFor polls cond until it holds, failing the test after a few seconds.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// waiters returns how many callers are waiting on the run for key.
func waiters(r *Renderer, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f := r.waiting[key]; f != nil {
		return f.waiters
	}
	return 0
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
