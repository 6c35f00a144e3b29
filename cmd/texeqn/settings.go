package main

import (
	"errors"

	"github.com/alnah/go-texeqn"
	"github.com/alnah/go-texeqn/internal/config"
)

// loadConfig reads the texeqn section of the site configuration.
// Without an explicit name, a missing _config.yml means defaults.
func loadConfig(name string) (*texeqn.Config, error) {
	explicit := name != ""
	if !explicit {
		name = config.DefaultFile
	}

	src, err := config.Load(name)
	if err != nil {
		if explicit || !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		src = config.Source{}
	}

	st, err := src.Resolve()
	if err != nil {
		return nil, err
	}
	return rendererConfig(st), nil
}

// rendererConfig converts resolved settings to the library configuration.
func rendererConfig(st *config.Settings) *texeqn.Config {
	return &texeqn.Config{
		Backend:     st.Backend,
		Options:     st.Options,
		Packages:    st.Packages,
		TmpDir:      st.TmpDir,
		OutputDir:   st.OutputDir,
		ExtraHead:   st.ExtraHead,
		InlineClass: st.InlineClass,
		BlockClass:  st.BlockClass,
		InlineScale: st.InlineScale,
		BlockScale:  st.BlockScale,
	}
}

// newRenderer builds a Renderer wired to the environment and common flags.
func newRenderer(cfg *texeqn.Config, f commonFlags, env *Environment) (*texeqn.Renderer, error) {
	opts := []texeqn.Option{texeqn.WithLogger(newLogger(env.Stderr, f.quiet, f.verbose))}
	if env.Runner != nil {
		opts = append(opts, texeqn.WithRunner(env.Runner))
	}
	if f.timeout > 0 {
		opts = append(opts, texeqn.WithStepTimeout(f.timeout))
	}
	return texeqn.NewRenderer(cfg, opts...)
}
