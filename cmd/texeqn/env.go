package main

import (
	"io"
	"os"
	"os/exec"

	"github.com/alnah/go-texeqn"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Runner   texeqn.CommandRunner              // nil uses texeqn.ExecRunner
	LookPath func(file string) (string, error) // tool discovery for doctor
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
	}
}
