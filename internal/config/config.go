package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-texeqn"
	"github.com/alnah/go-texeqn/internal/fileutil"
	"github.com/alnah/go-texeqn/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidOption   = errors.New("invalid option")
)

// Namespace is the top-level key of the site configuration holding our options.
const Namespace = "texeqn"

// Option keys recognized under Namespace.
const (
	KeyBackend       = "backend"
	KeyOptions       = "options"
	KeyPackages      = "packages"
	KeyExtraPackages = "extra_packages"
	KeyTmpDir        = "tmpdir"
	KeyOutputDir     = "outputdir"
	KeyInlineClass   = "inlineclass"
	KeyBlockClass    = "blockclass"
	KeyExtraHead     = "extra_head"
	KeyInlineScale   = "inline_scale"
	KeyBlockScale    = "block_scale"
)

// DefaultFile is the site configuration looked up when none is given.
const DefaultFile = "_config.yml"

// Source is the raw option mapping read from the site configuration.
// It is read-only after Load.
type Source map[string]any

// Lookup returns the value of key, or def when key is absent or null.
// No type conversion is performed.
func (s Source) Lookup(key string, def any) any {
	if v, ok := s[key]; ok && v != nil {
		return v
	}
	return def
}

// Settings is the typed form of a Source with defaults applied.
type Settings struct {
	Backend     string
	Options     []string
	Packages    []texeqn.Package // base packages followed by extra_packages
	TmpDir      string
	OutputDir   string
	InlineClass string
	BlockClass  string
	ExtraHead   string
	InlineScale float64
	BlockScale  float64
}

// Resolve converts every recognized option, falling back to its default.
func (s Source) Resolve() (*Settings, error) {
	var (
		st  Settings
		err error
	)

	strs := []struct {
		key string
		def string
		dst *string
	}{
		{KeyBackend, texeqn.DefaultBackend, &st.Backend},
		{KeyTmpDir, texeqn.DefaultTmpDir, &st.TmpDir},
		{KeyOutputDir, texeqn.DefaultOutputDir, &st.OutputDir},
		{KeyInlineClass, "", &st.InlineClass},
		{KeyBlockClass, "", &st.BlockClass},
		{KeyExtraHead, "", &st.ExtraHead},
	}
	for _, f := range strs {
		if *f.dst, err = toString(f.key, s.Lookup(f.key, f.def)); err != nil {
			return nil, err
		}
	}

	if st.Options, err = toStringList(KeyOptions, s.Lookup(KeyOptions, nil)); err != nil {
		return nil, err
	}

	base, err := toPackages(KeyPackages, s.Lookup(KeyPackages, nil), texeqn.DefaultPackages())
	if err != nil {
		return nil, err
	}
	extra, err := toPackages(KeyExtraPackages, s.Lookup(KeyExtraPackages, nil), nil)
	if err != nil {
		return nil, err
	}
	st.Packages = append(base, extra...)

	if st.InlineScale, err = toScale(KeyInlineScale, s.Lookup(KeyInlineScale, texeqn.DefaultScale)); err != nil {
		return nil, err
	}
	if st.BlockScale, err = toScale(KeyBlockScale, s.Lookup(KeyBlockScale, texeqn.DefaultScale)); err != nil {
		return nil, err
	}

	return &st, nil
}

// Load reads the site configuration at nameOrPath and returns its
// Namespace section. A configuration without the section yields an empty Source.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path; otherwise .yml and .yaml are tried in the current directory.
func Load(nameOrPath string) (Source, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath, err := resolveConfigPath(nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Source{}, nil
	}

	section, err := yamlutil.Section(data, Namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	if section == nil {
		return Source{}, nil
	}
	return Source(section), nil
}

// resolveConfigPath turns a config name or path into an existing file path.
func resolveConfigPath(nameOrPath string) (string, error) {
	ext := filepath.Ext(nameOrPath)
	if fileutil.IsFilePath(nameOrPath) || ext == ".yml" || ext == ".yaml" {
		return nameOrPath, nil
	}

	extensions := []string{".yml", ".yaml"}
	triedPaths := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		p := nameOrPath + ext
		if fileutil.FileExists(p) {
			return p, nil
		}
		triedPaths = append(triedPaths, p)
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

func toString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(s), nil
	}
	return "", fmt.Errorf("%w: %s: expected a string, got %T", ErrInvalidOption, key, v)
}

func toStringList(key string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case string:
		// A single string is accepted as a one-element list.
		return []string{list}, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, err := toString(fmt.Sprintf("%s[%d]", key, i), item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return append([]string(nil), list...), nil
	}
	return nil, fmt.Errorf("%w: %s: expected a list, got %T", ErrInvalidOption, key, v)
}

// toPackages accepts a list whose items are either a bare package name or
// a {name, option} mapping. A nil v yields def.
func toPackages(key string, v any, def []texeqn.Package) ([]texeqn.Package, error) {
	if v == nil {
		return def, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a list, got %T", ErrInvalidOption, key, v)
	}

	pkgs := make([]texeqn.Package, 0, len(list))
	for i, item := range list {
		field := fmt.Sprintf("%s[%d]", key, i)
		switch p := item.(type) {
		case string:
			pkgs = append(pkgs, texeqn.Package{Name: p})
		case map[string]any:
			name, err := toString(field+".name", p["name"])
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%w: %s.name: cannot be empty", ErrInvalidOption, field)
			}
			pkg := texeqn.Package{Name: name}
			if opt, ok := p["option"]; ok && opt != nil {
				if pkg.Option, err = toString(field+".option", opt); err != nil {
					return nil, err
				}
			}
			pkgs = append(pkgs, pkg)
		default:
			return nil, fmt.Errorf("%w: %s: expected a name or mapping, got %T", ErrInvalidOption, field, item)
		}
	}
	return pkgs, nil
}

// toScale accepts YAML numbers and numeric strings ("2.4").
func toScale(key string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidOption, key, n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %s: expected a number, got %T", ErrInvalidOption, key, v)
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s: must be positive, got %v", ErrInvalidOption, key, f)
	}
	return f, nil
}
