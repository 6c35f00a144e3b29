package main

import "errors"

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")

	// errHelpShown reports that -h/--help printed usage; it maps to exit 0.
	errHelpShown = errors.New("help shown")
)
