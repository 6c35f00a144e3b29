package texeqn

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Defaults applied when a site configuration omits a key.
const (
	DefaultBackend   = "pdflatex"
	DefaultTmpDir    = "_tmp"
	DefaultOutputDir = "assets/texeqn"
	DefaultScale     = 2.4

	DefaultCropTool      = "pdfcrop"
	DefaultVectorizeTool = "pdf2svg"
)

// defaultStepTimeout bounds each external tool invocation.
const defaultStepTimeout = 60 * time.Second

// Package is one \usepackage directive. An empty Option emits no brackets.
type Package struct {
	Name   string
	Option string
}

// DefaultPackages returns the base package list injected into every document.
func DefaultPackages() []Package {
	return []Package{
		{Name: "inputenc", Option: "utf8"},
		{Name: "fontenc", Option: "T1"},
		{Name: "amsmath"},
		{Name: "amssymb"},
	}
}

// Config holds the resolved, read-only settings of a Renderer.
// Packages is the final ordered list (defaults first, extras appended).
type Config struct {
	Backend     string
	Options     []string
	Packages    []Package
	TmpDir      string
	OutputDir   string
	ExtraHead   string
	InlineClass string
	BlockClass  string
	InlineScale float64
	BlockScale  float64
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:     DefaultBackend,
		Packages:    DefaultPackages(),
		TmpDir:      DefaultTmpDir,
		OutputDir:   DefaultOutputDir,
		InlineScale: DefaultScale,
		BlockScale:  DefaultScale,
	}
}

// Wrapper is the pair of strings surrounding the equation body.
type Wrapper struct {
	Open  string
	Close string
}

// Wrappers used by the ieqn and eqn tags.
var (
	InlineWrapper = Wrapper{Open: "$", Close: "$"}
	BlockWrapper  = Wrapper{Open: "\\begin{displaymath}\n", Close: "\n\\end{displaymath}"}
)

// Occurrence is one equation found on one page.
type Occurrence struct {
	PagePath string  // page containing the equation, namespaces the cache key
	Content  string  // equation body, trimmed before use
	Wrapper  Wrapper // inline or block delimiters
	Scale    float64 // multiplier applied to the SVG dimensions
}

// Validate checks that the occurrence can be rendered.
func (o Occurrence) Validate() error {
	if o.Scale <= 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return fmt.Errorf("%w: %v (must be positive)", ErrInvalidScale, o.Scale)
	}
	return nil
}

// Result describes a rendered (or cached) equation image.
type Result struct {
	Path   string  // OutputDir/<key>.svg
	Width  float64 // scaled width
	Height float64 // scaled height
	Key    string
	Cached bool // true when this call started no toolchain run
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRunner replaces the process runner (tests inject fakes here).
func WithRunner(r CommandRunner) Option {
	return func(rd *Renderer) {
		rd.runner = r
	}
}

// WithLogger sets the structured logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(rd *Renderer) {
		if l != nil {
			rd.logger = l
		}
	}
}

// WithTracer sets the tracer used for render and stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(rd *Renderer) {
		if t != nil {
			rd.tracer = t
		}
	}
}

// WithStepTimeout bounds each external tool invocation.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithStepTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("texeqn: WithStepTimeout duration must be positive")
	}
	return func(rd *Renderer) {
		rd.stepTimeout = d
	}
}

// WithTools overrides the crop and vectorize commands. Empty names keep the default.
func WithTools(crop, vectorize string) Option {
	return func(rd *Renderer) {
		if crop != "" {
			rd.cropTool = crop
		}
		if vectorize != "" {
			rd.vectorizeTool = vectorize
		}
	}
}
