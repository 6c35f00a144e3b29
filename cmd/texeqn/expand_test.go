package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-texeqn"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// TestDiscoverPages - Input resolution
// ---------------------------------------------------------------------------

func TestDiscoverPages_Directory(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	for _, p := range []string{
		"index.md",
		"_posts/2026-01-01-intro.markdown",
		"about/team.html",
		"notes.txt",
		".git/HEAD.md",
		"_site/index.html",
		"out/old.md",
	} {
		writeFile(t, filepath.Join(site, p), "x")
	}
	out := filepath.Join(site, "out")

	pages, err := discoverPages([]string{site}, out)
	if err != nil {
		t.Fatalf("discoverPages() unexpected error: %v", err)
	}

	var got []string
	for _, p := range pages {
		got = append(got, p.page)
		if want := filepath.Join(out, filepath.FromSlash(p.page)); p.dst != want {
			t.Errorf("dst for %s = %q, want %q", p.page, p.dst, want)
		}
	}
	sort.Strings(got)
	want := []string{"_posts/2026-01-01-intro.markdown", "about/team.html", "index.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverPages_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, err := discoverPages([]string{filepath.Join(t.TempDir(), "nope.md")}, "")
		if !errors.Is(err, ErrReadInput) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("discoverPages() error = %v, want ErrReadInput wrapping ErrNotExist", err)
		}
	})

	t.Run("output overwrites input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "page.md")
		writeFile(t, src, "x")

		_, err := discoverPages([]string{src}, dir)
		if !errors.Is(err, ErrUsage) {
			t.Errorf("discoverPages() error = %v, want ErrUsage", err)
		}
	})

	t.Run("two inputs share an output file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := filepath.Join(dir, "a", "index.md")
		b := filepath.Join(dir, "b", "index.md")
		writeFile(t, a, "x")
		writeFile(t, b, "y")

		_, err := discoverPages([]string{a, b}, filepath.Join(dir, "out"))
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("discoverPages() error = %v, want ErrUsage", err)
		}
		for _, want := range []string{a, b, filepath.Join(dir, "out", "index.md")} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not name %s", err, want)
			}
		}
	})

	t.Run("same input twice", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "page.md")
		writeFile(t, src, "x")

		_, err := discoverPages([]string{src, src}, filepath.Join(dir, "out"))
		if !errors.Is(err, ErrUsage) {
			t.Errorf("discoverPages() error = %v, want ErrUsage", err)
		}
	})

	t.Run("same base name without output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := filepath.Join(dir, "a", "index.md")
		b := filepath.Join(dir, "b", "index.md")
		writeFile(t, a, "x")
		writeFile(t, b, "y")

		pages, err := discoverPages([]string{a, b}, "")
		if err != nil {
			t.Fatalf("discoverPages() unexpected error: %v", err)
		}
		if len(pages) != 2 {
			t.Errorf("pages = %d, want 2", len(pages))
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunExpand - expand command
// ---------------------------------------------------------------------------

func TestRunExpand_SingleFileToStdout(t *testing.T) {
	t.Parallel()

	cfgPath, root := writeSiteConfig(t, "")
	page := filepath.Join(root, "index.md")
	writeFile(t, page, "Energy {% ieqn E=mc^2 %}.\n")

	env := newTestEnv("")
	code := runMain(context.Background(), []string{"texeqn", "expand", "-q", "-c", cfgPath, page}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, env.stderr)
	}

	got := env.stdout.String()
	if !strings.HasPrefix(got, "Energy <span class=\"\"><img width=\"24px\" height=\"12px\" src=\"/") ||
		!strings.HasSuffix(got, ".svg\"/></span>.\n") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if data, _ := os.ReadFile(page); string(data) != "Energy {% ieqn E=mc^2 %}.\n" {
		t.Errorf("input page modified: %q", data)
	}
}

func TestRunExpand_DirectoryToOutput(t *testing.T) {
	t.Parallel()

	cfgPath, root := writeSiteConfig(t, "")
	site := filepath.Join(root, "src")
	writeFile(t, filepath.Join(site, "a.md"), "{% ieqn a %}")
	writeFile(t, filepath.Join(site, "b/c.md"), "{% eqn %}c{% endeqn %}")
	writeFile(t, filepath.Join(site, "d.md"), "no equations")
	out := filepath.Join(root, "out")

	env := newTestEnv("")
	args := []string{"texeqn", "expand", "-q", "-w", "2", "-c", cfgPath, "-o", out, site}
	if code := runMain(context.Background(), args, env.Environment); code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, env.stderr)
	}

	tests := []struct {
		rel, prefix string
	}{
		{"a.md", "<span"},
		{"b/c.md", "<div"},
		{"d.md", "no equations"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(out, tt.rel))
		if err != nil {
			t.Errorf("output %s: %v", tt.rel, err)
			continue
		}
		if !strings.HasPrefix(string(data), tt.prefix) {
			t.Errorf("output %s = %q, want prefix %q", tt.rel, data, tt.prefix)
		}
	}

	if n := env.runner.count(texeqn.DefaultBackend); n != 2 {
		t.Errorf("backend runs = %d, want 2", n)
	}
}

func TestRunExpand_SeveralPagesNeedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	writeFile(t, filepath.Join(dir, "b.md"), "b")

	env := newTestEnv("")
	code := runMain(context.Background(), []string{"texeqn", "expand", dir}, env.Environment)
	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}
}

func TestRunExpand_KeepGoing(t *testing.T) {
	t.Parallel()

	cfgPath, root := writeSiteConfig(t, "")
	site := filepath.Join(root, "src")
	writeFile(t, filepath.Join(site, "bad.md"), "x {% ieqn \\foo %} y")
	writeFile(t, filepath.Join(site, "good.md"), "{% ieqn a %}")
	out := filepath.Join(root, "out")

	env := newTestEnv("")
	env.runner.fail[texeqn.DefaultBackend] = true

	args := []string{"texeqn", "expand", "-q", "-k", "-c", cfgPath, "-o", out, site}
	if code := runMain(context.Background(), args, env.Environment); code != ExitToolchain {
		t.Fatalf("runMain() = %d, want %d", code, ExitToolchain)
	}

	data, err := os.ReadFile(filepath.Join(out, "bad.md"))
	if err != nil {
		t.Fatalf("partial output not written: %v", err)
	}
	if string(data) != "x {% ieqn \\foo %} y" {
		t.Errorf("failed tag not left in place: %q", data)
	}
	if n := strings.Count(env.stderr.String(), "On "); n < 2 {
		t.Errorf("expected both failures reported, stderr:\n%s", env.stderr)
	}
}

func TestRunExpand_MalformedPage(t *testing.T) {
	t.Parallel()

	cfgPath, root := writeSiteConfig(t, "")
	page := filepath.Join(root, "p.md")
	writeFile(t, page, "{% eqn %} never closed")

	env := newTestEnv("")
	code := runMain(context.Background(), []string{"texeqn", "expand", "-c", cfgPath, page}, env.Environment)
	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("output written for malformed page: %q", env.stdout)
	}
}
