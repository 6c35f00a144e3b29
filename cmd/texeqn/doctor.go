package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"

	"github.com/alnah/go-texeqn"
	"github.com/alnah/go-texeqn/internal/fileutil"
	"github.com/alnah/go-texeqn/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string     `json:"status"`
	ConfigError string     `json:"config_error,omitempty"`
	Tools       []toolInfo `json:"tools"`
	Dirs        []dirInfo  `json:"directories"`
	Env         envInfo    `json:"environment"`
	Warnings    []string   `json:"warnings,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// toolInfo holds the lookup result for one external tool.
type toolInfo struct {
	Role  string `json:"role"` // backend, crop, vectorize
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// dirInfo holds the state of a working directory.
type dirInfo struct {
	Role     string `json:"role"` // tmpdir, outputdir
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if errors.Is(err, errHelpShown) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(flags.config, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Container: hints.IsInContainer(),
		},
	}

	cfg, err := loadConfig(configName)
	if err != nil {
		result.ConfigError = err.Error()
		result.Errors = append(result.Errors, "Config: "+err.Error())
		cfg = texeqn.DefaultConfig()
	}

	checkTools(result, cfg, env.LookPath)
	checkDirs(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkTools looks up the backend, crop and vectorize commands on PATH.
func checkTools(result *doctorResult, cfg *texeqn.Config, lookPath func(string) (string, error)) {
	tools := []toolInfo{
		{Role: "backend", Name: cfg.Backend},
		{Role: "crop", Name: texeqn.DefaultCropTool},
		{Role: "vectorize", Name: texeqn.DefaultVectorizeTool},
	}
	for i := range tools {
		path, err := lookPath(tools[i].Name)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s not found on PATH%s", tools[i].Name, hints.ForToolNotFound(tools[i].Name)))
			continue
		}
		tools[i].Found, tools[i].Path = true, path
	}
	result.Tools = tools
}

// checkDirs verifies the tmp and output directories. Missing directories
// are created on first render, so they only warrant a warning.
func checkDirs(result *doctorResult, cfg *texeqn.Config) {
	dirs := []dirInfo{
		{Role: "tmpdir", Path: cfg.TmpDir},
		{Role: "outputdir", Path: cfg.OutputDir},
	}
	for i := range dirs {
		d := &dirs[i]
		info, err := os.Stat(d.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s %s does not exist yet; it will be created", d.Role, d.Path))
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", d.Role, d.Path, err))
		case !info.IsDir():
			d.Exists = true
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s is not a directory", d.Role, d.Path))
		default:
			d.Exists = true
			if err := fileutil.CheckWritable(d.Path); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s %s is not writable: %v", d.Role, d.Path, err))
				continue
			}
			d.Writable = true
		}
	}
	result.Dirs = dirs
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "texeqn doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Toolchain")
	for _, t := range r.Tools {
		if t.Found {
			fmt.Fprintf(w, "  [OK] %s: %s (%s)\n", t.Role, t.Name, t.Path)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s: %s not found\n", t.Role, t.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Directories")
	for _, d := range r.Dirs {
		switch {
		case d.Writable:
			fmt.Fprintf(w, "  [OK] %s: %s (writable)\n", d.Role, d.Path)
		case !d.Exists:
			fmt.Fprintf(w, "  [WARN] %s: %s (missing)\n", d.Role, d.Path)
		default:
			fmt.Fprintf(w, "  [ERROR] %s: %s (not writable)\n", d.Role, d.Path)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
