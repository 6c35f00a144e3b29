// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-texeqn/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// toolPackages maps external tools to the distribution package providing them.
var toolPackages = map[string]string{
	"pdflatex": "texlive-latex-base",
	"lualatex": "texlive-luatex",
	"xelatex":  "texlive-xetex",
	"pdfcrop":  "texlive-extra-utils",
	"pdf2svg":  "pdf2svg",
}

// ForToolNotFound returns hints for a missing external tool.
func ForToolNotFound(tool string) string {
	var hints []string

	if pkg, ok := toolPackages[tool]; ok {
		hints = append(hints, "install "+pkg+" (or your TeX distribution's equivalent)")
	} else {
		hints = append(hints, "check that "+tool+" is installed and on PATH")
	}

	if IsInContainer() {
		hints = append(hints, "the container image must ship the TeX toolchain")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the per-step timeout.
func ForTimeout() string {
	return format("for heavy documents, use --timeout flag")
}

// ForCompile returns a hint for backend compile failures.
func ForCompile(document string) string {
	return format("the .tex document is kept at " + document + " for inspection")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound() string {
	hint := "use --config /path/to/_config.yml"
	if cwd, err := os.Getwd(); err == nil {
		hint += " or run from the site root (" + cwd + " has no _config.yml)"
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
