package texeqn

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrDocumentWrite = errors.New("failed to write tex document")
	ErrOutputDir     = errors.New("failed to create output directory")
	ErrCompile       = errors.New("backend failed to compile document")
	ErrCrop          = errors.New("failed to crop PDF")
	ErrVectorize     = errors.New("failed to convert PDF to SVG")
	ErrArtifactRead  = errors.New("failed to read SVG artifact")
	ErrTimeout       = errors.New("external tool timed out")
	ErrToolNotFound  = errors.New("external tool not found")

	// Occurrence validation errors.
	ErrInvalidScale = errors.New("invalid scale")

	// Tag expansion errors.
	ErrUnterminatedTag  = errors.New("unterminated equation tag")
	ErrUnexpectedEndTag = errors.New("unexpected endeqn tag")
)

// Stage identifies one step of the external toolchain.
type Stage string

// Toolchain stages, in execution order.
const (
	StageCompile   Stage = "compile"
	StageCrop      Stage = "crop"
	StageVectorize Stage = "vectorize"
)

// sentinel returns the sentinel error matching the stage.
func (s Stage) sentinel() error {
	switch s {
	case StageCompile:
		return ErrCompile
	case StageCrop:
		return ErrCrop
	case StageVectorize:
		return ErrVectorize
	}
	return nil
}

// ToolError reports a failed external tool invocation.
// Output holds the full combined stdout and stderr of the process and is
// embedded verbatim in Error(): it is the main clue for markup errors.
type ToolError struct {
	Stage    Stage
	Page     string
	Key      string
	Tool     string
	ExitCode int
	Output   string
	TimedOut bool
	Document string // tex document kept for inspection
	Err      error  // underlying exec error, if the process could not complete
}

func (e *ToolError) Error() string {
	prefix := fmt.Sprintf("On %s: [%s] %v", e.Page, e.Key, e.Stage.sentinel())
	switch {
	case e.TimedOut:
		return fmt.Sprintf("%s: %s timed out:\n%s", prefix, e.Tool, e.Output)
	case e.Err != nil && e.ExitCode < 0:
		return fmt.Sprintf("%s: running %s: %v\n%s", prefix, e.Tool, e.Err, e.Output)
	default:
		return fmt.Sprintf("%s: %s exited with status %d:\n%s", prefix, e.Tool, e.ExitCode, e.Output)
	}
}

// Unwrap exposes the stage sentinel, the timeout marker and the exec error.
func (e *ToolError) Unwrap() []error {
	errs := []error{e.Stage.sentinel()}
	if e.TimedOut {
		errs = append(errs, ErrTimeout)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// DocumentWriteError reports a failure to materialize the tex document.
type DocumentWriteError struct {
	Page string
	Path string
	Err  error
}

func (e *DocumentWriteError) Error() string {
	return fmt.Sprintf("On %s: %v '%s': %v", e.Page, ErrDocumentWrite, e.Path, e.Err)
}

func (e *DocumentWriteError) Unwrap() []error {
	return []error{ErrDocumentWrite, e.Err}
}

// ArtifactError reports a missing or malformed SVG when extracting dimensions.
type ArtifactError struct {
	Page string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("On %s: %v '%s': %v", e.Page, ErrArtifactRead, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() []error {
	return []error{ErrArtifactRead, e.Err}
}
