// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"gradx/internal/builtins"
	"gradx/internal/check"
	"gradx/internal/emit"
	apperrors "gradx/internal/errors"
	"gradx/internal/ir"
	"gradx/internal/pipeline"
	"gradx/internal/surface"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gradx <file.gx>")
		os.Exit(1)
	}
	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %s\n", err)
		os.Exit(1)
	}

	reg := builtins.NewRegistry()
	reporter := apperrors.NewErrorReporter(path, string(source))

	fn, err := surface.Parse(path, string(source), reg)
	if err != nil {
		fmt.Print(reporter.FormatError(apperrors.Wrap(err)))
		os.Exit(1)
	}

	res, err := pipeline.Compile(fn, reg, pipeline.Options{})
	if err != nil {
		fmt.Print(reporter.FormatError(apperrors.Wrap(err)))
		os.Exit(1)
	}

	for _, a := range res.Advisories {
		reportAdvisory(reporter, a)
	}

	fmt.Println(emit.Emit(fn.Name, res))

	if mismatches := verifyGradients(res); len(mismatches) > 0 {
		color.Yellow("⚠ compiled %s (run %s), but the numerical gradient check found %d mismatch(es):", path, res.RunID, len(mismatches))
		for _, m := range mismatches {
			fmt.Printf("  %s: analytic=%g numerical=%g relerror=%g\n", m.Component, m.Analytic, m.Numerical, m.RelError)
		}
		os.Exit(1)
	}
	color.Green("✅ compiled %s (run %s)", path, res.RunID)
}

// reportAdvisory renders a non-fatal Advisory the same way reporter
// renders a CompilerError, since Advisory carries no source position to
// point a caret at (it is raised after the surface parser has already
// finished, against the extracted expression tree).
func reportAdvisory(reporter *apperrors.ErrorReporter, a pipeline.Advisory) {
	fmt.Print(reporter.FormatError(&apperrors.CompilerError{
		Level:   apperrors.Warning,
		Code:    a.Code,
		Message: a.Message,
	}))
}

// verifyGradients spot-checks every compiled gradient against a central-
// difference approximation with every free variable set to 1.0. It's a
// best-effort sanity check on the CLI's
// happy path; internal/check's own tests cover the verifier itself.
func verifyGradients(res *pipeline.CompileResult) []check.Mismatch {
	env := make(map[string]float64)
	for name := range ir.FreeVariables(res.Value) {
		env[name] = 1.0
	}
	for _, t := range res.Temps {
		for name := range ir.FreeVariables(t.Expr) {
			env[name] = 1.0
		}
	}
	return check.Gradients(res, env, check.DefaultStep, check.DefaultTolerance)
}
