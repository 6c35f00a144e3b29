package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-texeqn"
	"github.com/alnah/go-texeqn/internal/fileutil"
)

// pageExtensions lists the files picked up when walking a directory.
var pageExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
}

// pageFile is one page to expand.
type pageFile struct {
	src  string // file read
	page string // slash-separated page path given to the renderer
	dst  string // file written; empty means stdout
}

// runExpand expands equation tags in every page given on the command line.
func runExpand(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExpandFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: no input pages", ErrUsage)
	}

	pages, err := discoverPages(positional, flags.output)
	if err != nil {
		return err
	}
	if flags.output == "" && len(pages) != 1 {
		return fmt.Errorf("%w: %d pages found, --output is required", ErrUsage, len(pages))
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	r, err := newRenderer(cfg, flags.common, env)
	if err != nil {
		return err
	}
	exp := texeqn.NewExpander(r)
	exp.KeepGoing = flags.keepGoing

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers(flags.workers))

	var (
		mu       sync.Mutex
		failures []error
	)
	for _, p := range pages {
		g.Go(func() error {
			err := expandFile(gctx, exp, p, env)
			if err == nil || !flags.keepGoing {
				return err
			}
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

// expandFile expands one page. With KeepGoing, the partially expanded page is
// still written and the render failures are returned.
func expandFile(ctx context.Context, exp *texeqn.Expander, p pageFile, env *Environment) error {
	data, err := os.ReadFile(p.src) // #nosec G304 -- page path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	out, expandErr := exp.ExpandPage(ctx, p.page, string(data))
	if expandErr != nil && (!exp.KeepGoing || out == "") {
		return expandErr
	}

	if p.dst == "" {
		if _, err := fmt.Fprint(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWriteOutput, err)
		}
		return expandErr
	}

	if err := fileutil.EnsureDir(filepath.Dir(p.dst)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFile(p.dst, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, p.dst, err)
	}
	return expandErr
}

// discoverPages resolves files and directories into pages. Directories are
// walked for page extensions, skipping hidden directories, _site and outputDir.
// Two pages mapped to the same output file are a usage error.
func discoverPages(inputs []string, outputDir string) ([]pageFile, error) {
	var pages []pageFile

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		if !info.IsDir() {
			p := pageFile{src: input, page: filepath.ToSlash(filepath.Clean(input))}
			if outputDir != "" {
				p.dst = filepath.Join(outputDir, filepath.Base(input))
			}
			pages = append(pages, p)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != input && (strings.HasPrefix(name, ".") || name == "_site" || sameFile(path, outputDir)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !pageExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			rel, err := filepath.Rel(input, path)
			if err != nil {
				return err
			}
			p := pageFile{src: path, page: filepath.ToSlash(rel)}
			if outputDir != "" {
				p.dst = filepath.Join(outputDir, rel)
			}
			pages = append(pages, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walking %s: %w", ErrReadInput, input, err)
		}
	}

	writers := make(map[string]string, len(pages))
	for _, p := range pages {
		if p.dst == "" {
			continue
		}
		if sameFile(p.src, p.dst) {
			return nil, fmt.Errorf("%w: output %s would overwrite its input", ErrUsage, p.dst)
		}
		dst, err := filepath.Abs(p.dst)
		if err != nil {
			dst = filepath.Clean(p.dst)
		}
		if prev, ok := writers[dst]; ok {
			return nil, fmt.Errorf("%w: pages %s and %s both write %s", ErrUsage, prev, p.src, p.dst)
		}
		writers[dst] = p.src
	}
	return pages, nil
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
