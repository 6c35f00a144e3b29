package texeqn

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-texeqn/internal/fileutil"
)

// Fixed artifact names inside a scratch directory.
const (
	jobName      = "output"
	compiledName = jobName + ".pdf"
	croppedName  = jobName + "-crop.pdf"

	texExt = ".tex"
	svgExt = ".svg"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/alnah/go-texeqn"

// ErrInvalidConfig is returned by NewRenderer for unusable settings.
var ErrInvalidConfig = errors.New("invalid renderer configuration")

// Compile-time interface implementation check.
var _ CommandRunner = (*ExecRunner)(nil)

// Renderer turns equation occurrences into cached SVG files.
// Create with NewRenderer; a Renderer is safe for concurrent use.
type Renderer struct {
	cfg           Config
	runner        CommandRunner
	logger        *slog.Logger
	tracer        trace.Tracer
	stepTimeout   time.Duration
	cropTool      string
	vectorizeTool string

	// flight holds at most one toolchain run per cache key.
	flight singleflight.Group

	mu      sync.Mutex
	waiting map[string]*keyFlight
}

// keyFlight tracks the callers waiting on the toolchain run for one key.
// The run is detached from any single caller and canceled once all of
// them have given up.
type keyFlight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// runOwner identifies the caller whose call started a shared run.
type runOwner struct {
	page string
}

// artifactPaths lists every file involved in rendering one cache key.
type artifactPaths struct {
	tex      string // TmpDir/<key>.tex
	scratch  string // TmpDir/<key>/
	compiled string // scratch/output.pdf
	cropped  string // scratch/output-crop.pdf
	svg      string // OutputDir/<key>.svg
}

// NewRenderer creates a Renderer for cfg. A nil cfg uses DefaultConfig.
// The configuration is copied: later changes to cfg have no effect.
func NewRenderer(cfg *Config, opts ...Option) (*Renderer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:           cloneConfig(cfg),
		runner:        &ExecRunner{},
		logger:        slog.New(slog.DiscardHandler),
		tracer:        noop.NewTracerProvider().Tracer(tracerName),
		stepTimeout:   defaultStepTimeout,
		cropTool:      DefaultCropTool,
		vectorizeTool: DefaultVectorizeTool,
		waiting:       make(map[string]*keyFlight),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Config returns a copy of the renderer configuration.
func (r *Renderer) Config() Config {
	return cloneConfig(&r.cfg)
}

// Render returns the SVG for occ, running the toolchain only when the
// image is not already cached. Each failure aborts this occurrence only;
// artifacts of a failed run are kept in TmpDir for inspection.
func (r *Renderer) Render(ctx context.Context, occ Occurrence) (result *Result, err error) {
	if err := occ.Validate(); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(occ.Content)
	key := DeriveKey(occ.PagePath, content)
	paths := r.paths(key)

	ctx, span := r.tracer.Start(ctx, "texeqn.Render", trace.WithAttributes(
		attribute.String("texeqn.page", occ.PagePath),
		attribute.String("texeqn.key", key),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
		}
		span.End()
	}()

	cached := fileutil.FileExists(paths.svg)
	if !cached {
		ran, err := r.renderShared(ctx, occ.PagePath, key, content, occ.Wrapper, paths)
		if err != nil {
			return nil, err
		}
		cached = !ran
	}
	span.SetAttributes(attribute.Bool("texeqn.cached", cached))

	width, height, err := readDimensions(paths.svg)
	if err != nil {
		return nil, &ArtifactError{Page: occ.PagePath, Path: paths.svg, Err: err}
	}

	return &Result{
		Path:   paths.svg,
		Width:  width * occ.Scale,
		Height: height * occ.Scale,
		Key:    key,
		Cached: cached,
	}, nil
}

// renderShared joins the toolchain run for key, starting one if none is in
// flight. It reports whether this caller's call started the run that
// produced the image. A caller whose ctx ends stops waiting; the run goes
// on for the remaining waiters.
func (r *Renderer) renderShared(ctx context.Context, page, key, content string, wrapper Wrapper, paths artifactPaths) (bool, error) {
	for {
		f := r.join(ctx, key)
		owner := &runOwner{page: page}
		ch := r.flight.DoChan(key, func() (any, error) {
			ran, err := r.renderKey(f.ctx, page, key, content, wrapper, paths)
			if !ran {
				return nil, err
			}
			return owner, err
		})

		select {
		case <-ctx.Done():
			r.leave(key, f)
			return false, ctx.Err()
		case res := <-ch:
			r.leave(key, f)
			if res.Err != nil && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				// Joined a run abandoned by all of its own callers.
				continue
			}
			return res.Val == owner, res.Err
		}
	}
}

func (r *Renderer) join(ctx context.Context, key string) *keyFlight {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.waiting[key]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &keyFlight{ctx: runCtx, cancel: cancel}
		r.waiting[key] = f
	}
	f.waiters++
	return f
}

func (r *Renderer) leave(key string, f *keyFlight) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if r.waiting[key] == f {
		delete(r.waiting, key)
	}
}

// renderKey writes the document and drives compile, crop and vectorize.
// Callers serialize on key. It reports false when the image already existed.
func (r *Renderer) renderKey(ctx context.Context, page, key, content string, wrapper Wrapper, paths artifactPaths) (bool, error) {
	// Another caller may have finished this key while we waited.
	if fileutil.FileExists(paths.svg) {
		return false, nil
	}

	log := r.logger.With("page", page, "key", key)
	if fileutil.Exists(paths.tex) {
		log.Warn("previous render did not complete, rendering again", "tex", paths.tex)
	} else {
		log.Info("generating image file")
	}
	start := time.Now()

	if err := fileutil.EnsureDir(paths.scratch); err != nil {
		return true, &DocumentWriteError{Page: page, Path: paths.scratch, Err: err}
	}
	if err := fileutil.EnsureDir(r.cfg.OutputDir); err != nil {
		return true, fmt.Errorf("On %s: [%s] %w '%s': %w", page, key, ErrOutputDir, r.cfg.OutputDir, err)
	}

	doc := BuildDocument(content, wrapper, r.cfg.Packages, r.cfg.ExtraHead)
	if err := fileutil.WriteFile(paths.tex, doc); err != nil {
		return true, &DocumentWriteError{Page: page, Path: paths.tex, Err: err}
	}

	steps := []struct {
		stage Stage
		tool  string
		args  []string
	}{
		{StageCompile, r.cfg.Backend, r.compileArgs(paths)},
		{StageCrop, r.cropTool, []string{paths.compiled, paths.cropped}},
		{StageVectorize, r.vectorizeTool, []string{paths.cropped, paths.svg}},
	}
	for _, s := range steps {
		if err := r.runStep(ctx, page, key, paths.tex, s.stage, s.tool, s.args); err != nil {
			if s.stage == StageVectorize {
				// A truncated SVG would be mistaken for a cache hit next time.
				_ = os.Remove(paths.svg)
			}
			log.Error("render failed", "stage", s.stage, "error", err)
			return true, err
		}
	}

	if err := os.Remove(paths.tex); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("removing tex document", "path", paths.tex, "error", err)
	}
	if err := os.RemoveAll(paths.scratch); err != nil {
		log.Warn("removing scratch directory", "path", paths.scratch, "error", err)
	}

	log.Info("rendered image file", "svg", paths.svg, "duration", time.Since(start).Round(time.Millisecond))
	return true, nil
}

// runStep runs one external tool under the step timeout and converts a
// failed invocation into a *ToolError carrying the full process output.
func (r *Renderer) runStep(ctx context.Context, page, key, document string, stage Stage, tool string, args []string) error {
	ctx, span := r.tracer.Start(ctx, "texeqn."+string(stage), trace.WithAttributes(
		attribute.String("texeqn.tool", tool),
	))
	defer span.End()

	stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()

	inv, err := r.runner.Run(stepCtx, tool, args...)
	if err == nil && inv.ExitCode == 0 {
		return nil
	}

	toolErr := &ToolError{
		Stage:    stage,
		Page:     page,
		Key:      key,
		Tool:     tool,
		ExitCode: inv.ExitCode,
		Output:   inv.Output,
		Document: document,
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			toolErr.TimedOut = true
		} else {
			toolErr.Err = err
		}
	}

	span.SetAttributes(attribute.Int("texeqn.exit_code", inv.ExitCode))
	span.RecordError(toolErr)
	span.SetStatus(codes.Error, string(stage)+" failed")
	return toolErr
}

// compileArgs builds the backend command line. Each configured option is
// split on whitespace, so "-shell-escape -8bit" yields two arguments.
func (r *Renderer) compileArgs(paths artifactPaths) []string {
	args := []string{
		"-halt-on-error",
		"-interaction", "nonstopmode",
		"-file-line-error",
		"--jobname=" + jobName,
	}
	for _, opt := range r.cfg.Options {
		args = append(args, strings.Fields(opt)...)
	}
	return append(args, "-output-directory="+paths.scratch, paths.tex)
}

func (r *Renderer) paths(key string) artifactPaths {
	scratch := filepath.Join(r.cfg.TmpDir, key)
	return artifactPaths{
		tex:      filepath.Join(r.cfg.TmpDir, key+texExt),
		scratch:  scratch,
		compiled: filepath.Join(scratch, compiledName),
		cropped:  filepath.Join(scratch, croppedName),
		svg:      filepath.Join(r.cfg.OutputDir, key+svgExt),
	}
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Backend) == "" {
		return fmt.Errorf("%w: backend cannot be empty", ErrInvalidConfig)
	}
	if cfg.TmpDir == "" {
		return fmt.Errorf("%w: tmpdir cannot be empty", ErrInvalidConfig)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: outputdir cannot be empty", ErrInvalidConfig)
	}
	if cfg.InlineScale <= 0 || cfg.BlockScale <= 0 {
		return fmt.Errorf("%w: scales must be positive", ErrInvalidConfig)
	}
	return nil
}

func cloneConfig(cfg *Config) Config {
	c := *cfg
	c.Options = append([]string(nil), cfg.Options...)
	c.Packages = append([]Package(nil), cfg.Packages...)
	return c
}
