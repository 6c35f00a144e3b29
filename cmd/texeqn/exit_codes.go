package main

import (
	"errors"
	"os"

	"github.com/alnah/go-texeqn"
	"github.com/alnah/go-texeqn/internal/config"
	"github.com/alnah/go-texeqn/internal/hints"
)

// Exit codes for the texeqn CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // All equations rendered
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or page markup
	ExitIO        = 3 // File not found, permission denied
	ExitToolchain = 4 // Backend, crop or vectorize failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain errors (exit 4)
	if errors.Is(err, texeqn.ErrCompile) ||
		errors.Is(err, texeqn.ErrCrop) ||
		errors.Is(err, texeqn.ErrVectorize) ||
		errors.Is(err, texeqn.ErrTimeout) ||
		errors.Is(err, texeqn.ErrToolNotFound) ||
		errors.Is(err, texeqn.ErrArtifactRead) {
		return ExitToolchain
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, texeqn.ErrDocumentWrite) ||
		errors.Is(err, texeqn.ErrOutputDir) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/markup errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidOption) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, texeqn.ErrInvalidConfig) ||
		errors.Is(err, texeqn.ErrInvalidScale) ||
		errors.Is(err, texeqn.ErrUnterminatedTag) ||
		errors.Is(err, texeqn.ErrUnexpectedEndTag) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var toolErr *texeqn.ToolError
	switch {
	case errors.Is(err, texeqn.ErrToolNotFound) && errors.As(err, &toolErr):
		return hints.ForToolNotFound(toolErr.Tool)
	case errors.Is(err, texeqn.ErrTimeout):
		return hints.ForTimeout()
	case errors.Is(err, texeqn.ErrCompile) && errors.As(err, &toolErr):
		return hints.ForCompile(toolErr.Document)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, ErrWriteOutput), errors.Is(err, texeqn.ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
