package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	timeout time.Duration
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common commonFlags
	page   string
	block  bool
	scale  float64
	json   bool
}

// expandFlags holds all flags for the expand command.
type expandFlags struct {
	common    commonFlags
	output    string
	workers   int
	keepGoing bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "site config name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every toolchain run")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "timeout per external tool (e.g., 30s, 2m)")
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := &renderFlags{}

	fs.StringVarP(&f.page, "page", "p", "", "page path namespacing the image")
	fs.BoolVar(&f.block, "block", false, "render in display mode")
	fs.Float64Var(&f.scale, "scale", 0, "dimension multiplier (0 = from config)")
	fs.BoolVar(&f.json, "json", false, "print the result as JSON")
	addCommonFlags(fs, &f.common)

	fs.SetOutput(usage)
	fs.Usage = func() { printRenderUsage(usage) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	if err := validateCommon(&f.common); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExpandFlags parses expand command flags and returns positional args.
func parseExpandFlags(args []string, usage io.Writer) (*expandFlags, []string, error) {
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	f := &expandFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "pages expanded in parallel (0 = auto)")
	fs.BoolVarP(&f.keepGoing, "keep-going", "k", false, "leave failed tags in place and continue")
	addCommonFlags(fs, &f.common)

	fs.SetOutput(usage)
	fs.Usage = func() { printExpandUsage(usage) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	if err := validateCommon(&f.common); err != nil {
		return nil, nil, err
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrUsage, f.workers)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "site config name or path")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")

	fs.SetOutput(usage)
	fs.Usage = func() { printDoctorUsage(usage) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}
	return f, nil
}

func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return errHelpShown
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func validateCommon(f *commonFlags) error {
	if f.timeout < 0 {
		return fmt.Errorf("%w: --timeout must be positive, got %v", ErrUsage, f.timeout)
	}
	if f.quiet && f.verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return nil
}
