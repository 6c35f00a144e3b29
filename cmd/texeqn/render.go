package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-texeqn"
)

// renderOutput is the --json form of a render result.
type renderOutput struct {
	Path   string  `json:"path"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Key    string  `json:"key"`
	Cached bool    `json:"cached"`
	Markup string  `json:"markup"`
}

// runRender renders one equation and prints its markup.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	content, err := readEquation(positional, env.Stdin)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	r, err := newRenderer(cfg, flags.common, env)
	if err != nil {
		return err
	}

	occ := texeqn.Occurrence{
		PagePath: flags.page,
		Content:  content,
		Wrapper:  texeqn.InlineWrapper,
		Scale:    cfg.InlineScale,
	}
	class := cfg.InlineClass
	if flags.block {
		occ.Wrapper, occ.Scale, class = texeqn.BlockWrapper, cfg.BlockScale, cfg.BlockClass
	}
	if flags.scale != 0 {
		occ.Scale = flags.scale
	}

	res, err := r.Render(ctx, occ)
	if err != nil {
		return err
	}
	markup := texeqn.ImageMarkup(res, class, flags.block)

	if !flags.json {
		fmt.Fprintln(env.Stdout, markup)
		return nil
	}
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(renderOutput{
		Path:   res.Path,
		Width:  res.Width,
		Height: res.Height,
		Key:    res.Key,
		Cached: res.Cached,
		Markup: markup,
	})
}

// readEquation joins the positional arguments, or reads stdin for "-".
func readEquation(args []string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 0:
		return "", fmt.Errorf("%w: no equation given", ErrUsage)
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
