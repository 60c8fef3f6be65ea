//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// runCLI invokes the built binary with the given arguments.
func runCLI(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", bin, args, err)
	}
	return nil
}

// Resolve matches the committee roster against OpenAlex author profiles.
func Resolve() error {
	mg.Deps(Build)
	return runCLI("resolve")
}

// Collect downloads each resolved author's publications into per-author CSVs.
func Collect() error {
	mg.Deps(Build)
	return runCLI("collect")
}

// Rank scores the collected abstracts against the configured query abstract.
func Rank() error {
	mg.Deps(Build)
	return runCLI("rank")
}

// Ingest indexes the collected corpus into the searchable catalog database.
func Ingest() error {
	mg.Deps(Build)
	return runCLI("catalog", "ingest")
}

// Pipeline runs resolve, collect, rank, and catalog ingest in order.
func Pipeline() error {
	mg.SerialDeps(Resolve, Collect, Rank, Ingest)
	return nil
}
