// Package cli wires the CDCL solver into a command-line front end: flag
// parsing, DIMACS loading, profiling, result formatting and progress
// logging. None of this belongs in internal/sat, which only ever produces a
// verdict (an LBool, plus the models it found) and never touches a file
// system.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soedirgo/sat-solver/internal/dimacs"
	"github.com/soedirgo/sat-solver/internal/sat"
)

// config holds everything parsed out of the command line for a single
// `solve` invocation.
type config struct {
	instancePath string
	outputPath   string
	verbose      bool
	cpuProfile   string
	memProfile   string

	maxConflicts int64
	timeout      time.Duration
	phaseSaving  bool
}

// NewRootCommand builds the satcdcl command tree. Its one subcommand,
// "solve", implements the interface described by §6 of the specification:
// an input path, an optional output path, and a process exit code that
// distinguishes success from I/O/parse failure.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "satcdcl",
		Short:         "satcdcl solves CNF formulas given in the DIMACS format",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCommand())
	return root
}

func newSolveCommand() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "solve <input-path>",
		Short: "Decide satisfiability of a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.instancePath = args[0]
			return run(cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.outputPath, "output", "o", "", "write the result to this file instead of stdout")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log search progress to stderr")
	flags.StringVar(&cfg.cpuProfile, "cpu-profile", "", "write a pprof CPU profile to this file")
	flags.StringVar(&cfg.memProfile, "mem-profile", "", "write a pprof heap profile to this file")
	flags.Int64Var(&cfg.maxConflicts, "max-conflicts", -1, "stop and report UNKNOWN after this many conflicts (negative disables)")
	flags.DurationVar(&cfg.timeout, "timeout", -1, "stop and report UNKNOWN after this long (negative disables)")
	flags.BoolVar(&cfg.phaseSaving, "phase-saving", false, "reuse each variable's last assigned polarity when deciding")

	return cmd
}

func run(stdout io.Writer, cfg *config) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	if cfg.cpuProfile != "" {
		f, err := os.Create(cfg.cpuProfile)
		if err != nil {
			return fmt.Errorf("cli: creating CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("cli: starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	opts := sat.DefaultOptions
	opts.PhaseSaving = cfg.phaseSaving
	opts.MaxConflicts = cfg.maxConflicts
	opts.Timeout = cfg.timeout
	opts.Logger = logger

	solver := sat.NewSolver(opts)

	gzipped := strings.HasSuffix(cfg.instancePath, ".gz")
	if err := dimacs.LoadDIMACS(cfg.instancePath, gzipped, solver); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"variables": solver.NumVariables(),
		"clauses":   solver.NumConstraints(),
	}).Debug("instance loaded")

	status := solver.Solve()

	out, err := formatResult(solver, status)
	if err != nil {
		return err
	}

	if err := writeResult(cfg.outputPath, stdout, out); err != nil {
		return err
	}

	if cfg.memProfile != "" {
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			return fmt.Errorf("cli: creating memory profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("cli: writing memory profile: %w", err)
		}
	}

	if status == sat.Unknown {
		return errUnknown
	}
	return nil
}

// errUnknown is returned when a configured stop condition (max conflicts or
// timeout) fires before the search concludes. It is distinguished from a
// parse/IO failure so the caller (main.go) can choose a different exit code.
var errUnknown = fmt.Errorf("search stopped before a verdict was reached")

// IsUnknownResult reports whether err is the sentinel returned by run when
// a configured stop condition fired rather than an actual I/O or parse
// failure.
func IsUnknownResult(err error) bool {
	return err == errUnknown
}

// formatResult renders the solver's verdict per §6: "UNSAT", or the model as
// n space-separated signed integers in variable order.
func formatResult(solver *sat.Solver, status sat.LBool) (string, error) {
	switch status {
	case sat.False:
		return "UNSAT", nil
	case sat.True:
		model := solver.Models[len(solver.Models)-1]
		var sb strings.Builder
		for v, positive := range model {
			if v > 0 {
				sb.WriteByte(' ')
			}
			if !positive {
				sb.WriteByte('-')
			}
			sb.WriteString(strconv.Itoa(v + 1))
		}
		return sb.String(), nil
	default:
		return "UNKNOWN", nil
	}
}

func writeResult(outputPath string, stdout io.Writer, result string) error {
	if outputPath == "" {
		_, err := fmt.Fprintln(stdout, result)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(result+"\n"), 0o644); err != nil {
		return fmt.Errorf("cli: writing result to %q: %w", outputPath, err)
	}
	return nil
}
