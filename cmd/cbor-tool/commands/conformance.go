package commands

import (
	"fmt"
	"io"

	"github.com/mash-protocol/cbor-go/internal/conformance"
)

// ConformanceOptions configures the conformance command.
type ConformanceOptions struct {
	// Format is text, json or junit.
	Format string

	// Verbose lists passed vectors too.
	Verbose bool
}

// RunConformance runs the vector suites at path (a file or a directory)
// with the environment's decoder limits as the base, and returns the total
// number of failed vectors.
func RunConformance(env *Env, path string, opts ConformanceOptions, w io.Writer) (int, error) {
	reporter, err := conformance.NewReporter(opts.Format, w, opts.Verbose)
	if err != nil {
		return 0, err
	}

	suites, err := conformance.Load(path)
	if err != nil {
		return 0, err
	}

	runner := conformance.NewRunner(env.Dec.DecOptions(), env.Logger)
	failed := 0
	for _, s := range suites {
		res, err := runner.Run(s)
		if err != nil {
			return failed, err
		}
		reporter.ReportSuite(res)
		failed += res.FailCount
	}

	env.Logger.Info("conformance run finished", "suites", len(suites), "failed", failed)
	if failed > 0 {
		return failed, fmt.Errorf("%d vectors failed", failed)
	}
	return 0, nil
}
