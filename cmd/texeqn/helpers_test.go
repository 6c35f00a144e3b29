package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-texeqn"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake toolchain and environment
// ---------------------------------------------------------------------------

const fakeSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10px" height="5px" viewBox="0 0 10 5" version="1.1">
</svg>
`

// fakeRunner emulates pdflatex, pdfcrop and pdf2svg by creating their outputs.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool // tool name -> exit 1
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (texeqn.Invocation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	failing := f.fail[name]
	f.mu.Unlock()

	if failing {
		return texeqn.Invocation{ExitCode: 1, Output: "! Undefined control sequence.\n"}, nil
	}

	var path, content string
	switch name {
	case texeqn.DefaultBackend:
		for _, a := range args {
			if dir, ok := strings.CutPrefix(a, "-output-directory="); ok {
				path = filepath.Join(dir, "output.pdf")
			}
		}
		content = "%PDF"
	case texeqn.DefaultCropTool:
		path, content = args[1], "%PDF"
	case texeqn.DefaultVectorizeTool:
		path, content = args[1], fakeSVG
	default:
		return texeqn.Invocation{ExitCode: 127}, nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return texeqn.Invocation{ExitCode: 1, Output: err.Error()}, nil
	}
	return texeqn.Invocation{}, nil
}

func (f *fakeRunner) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// fakeLookPath finds every tool in /usr/bin.
func fakeLookPath(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *fakeRunner
}

func newTestEnv(stdin string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	runner := &fakeRunner{fail: map[string]bool{}}
	return &testEnv{
		Environment: &Environment{
			Stdin:    strings.NewReader(stdin),
			Stdout:   stdout,
			Stderr:   stderr,
			Runner:   runner,
			LookPath: fakeLookPath,
		},
		stdout: stdout,
		stderr: stderr,
		runner: runner,
	}
}

// writeSiteConfig writes a _config.yml whose tmp and output directories live
// under the returned site root.
func writeSiteConfig(t *testing.T, extra string) (configPath, root string) {
	t.Helper()

	root = t.TempDir()
	configPath = filepath.Join(root, "_config.yml")
	content := fmt.Sprintf("title: Test\ntexeqn:\n  tmpdir: %q\n  outputdir: %q\n%s",
		filepath.Join(root, "_tmp"), filepath.Join(root, "assets", "texeqn"), extra)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath, root
}
