package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texeqn <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render one equation to a cached SVG")
	fmt.Fprintln(w, "  expand     Replace ieqn/eqn tags in pages with image markup")
	fmt.Fprintln(w, "  doctor     Check the TeX toolchain and directories")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'texeqn help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by render and expand.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Site config name or path (default: _config.yml if present)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per external tool (default: 60s)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every toolchain run")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texeqn render [flags] <equation | ->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one equation and print its HTML markup. Use - to read it from stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render:")
	fmt.Fprintln(w, "  -p, --page <path>         Page path namespacing the image")
	fmt.Fprintln(w, "      --block               Display mode (displaymath, block class and scale)")
	fmt.Fprintln(w, "      --scale <f>           Dimension multiplier (default: from config)")
	fmt.Fprintln(w, "      --json                Print path, dimensions and markup as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printExpandUsage prints usage for the expand command.
func printExpandUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texeqn expand [flags] <file | dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Replace {% ieqn %} and {% eqn %}...{% endeqn %} tags with image markup.")
	fmt.Fprintln(w, "Directories are walked for .md, .markdown and .html pages.")
	fmt.Fprintln(w, "A single file without --output is written to stdout.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Expand:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (required for several pages)")
	fmt.Fprintln(w, "  -w, --workers <n>         Pages expanded in parallel (0 = auto)")
	fmt.Fprintln(w, "  -k, --keep-going          Leave failed tags in place and continue")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texeqn doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the configured backend, pdfcrop and pdf2svg are on PATH")
	fmt.Fprintln(w, "and that the tmp and output directories are writable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -c, --config <name>       Site config name or path")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "expand":
		printExpandUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: texeqn version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: texeqn help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
