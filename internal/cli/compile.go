package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/qtranspile/pkg/pipeline"
)

// compileOpts holds the command-line flags for the compile command.
type compileOpts struct {
	output   string         // output file, or directory when compiling several files
	target   string         // builtin target name or path to a target file
	basis    []string       // basis override
	optimize bool           // cx cancellation; applied only when the flag is set
	physical bool           // rewrite onto a single physical register
	layout   map[string]int // initial placement, e.g. q[0]=2
	noCache  bool           // bypass the compile cache entirely
	refresh  bool           // recompile and overwrite the cached result
	jobs     int            // concurrent compilations
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var opts compileOpts

	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile OpenQASM circuits for a target device",
		Long: `Compile unrolls each circuit to the target basis, routes it onto the target
coupling map and cancels adjacent CNOT pairs.

With a single file the compiled circuit is written to stdout unless -o is
given. With several files, -o names a directory and each result is written as
<name>.<target>.qasm; without -o results are written next to their inputs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeOpts := pipeline.Options{
				Target:        opts.target,
				Basis:         opts.basis,
				Physical:      opts.physical,
				InitialLayout: opts.layout,
				Refresh:       opts.refresh,
				Logger:        c.Logger,
			}
			if cmd.Flags().Changed("optimize") {
				pipeOpts.Optimize = &opts.optimize
			}
			// Resolve once so target files are read a single time.
			if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if len(args) == 1 {
				return c.runCompile(cmd.Context(), runner, args[0], opts.output, pipeOpts, cmd.OutOrStdout())
			}
			return c.runCompileBatch(cmd.Context(), runner, args, &opts, pipeOpts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input) or directory (several inputs)")
	cmd.Flags().StringVarP(&opts.target, "target", "t", pipeline.DefaultTarget, "builtin target name or target TOML file")
	cmd.Flags().StringSliceVar(&opts.basis, "basis", nil, "override the target basis (comma-separated)")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", true, "cancel adjacent CNOT pairs (default from target)")
	cmd.Flags().BoolVar(&opts.physical, "physical", false, "write the output on one register indexed by physical qubit")
	cmd.Flags().StringToIntVar(&opts.layout, "layout", nil, "initial layout, e.g. q[0]=2,q[1]=0")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the compile cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompile even when a cached result exists")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of circuits compiled concurrently")

	return cmd
}

// runCompile compiles one file. Without an output path the QASM goes to out
// and the statistics only to the log, so the output stays pipeable.
func (c *CLI) runCompile(ctx context.Context, runner *pipeline.Runner, path, output string, opts pipeline.Options, out io.Writer) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	res, err := compileFile(ctx, runner, path, opts)
	if err != nil {
		return err
	}

	if output == "" {
		if _, err := io.WriteString(out, res.QASM); err != nil {
			return err
		}
		prog.done("Compiled", "circuit", res.Name, "target", res.Target, "size", res.Stats.Size,
			"depth", res.Stats.Depth, "swaps", res.Stats.Swaps, "cached", res.CacheHit)
		for _, w := range res.Warnings {
			logger.Warn(w)
		}
		return nil
	}

	if err := os.WriteFile(output, []byte(res.QASM), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done("Compiled", "circuit", res.Name, "target", res.Target)
	printResult(res, output)
	return nil
}

// runCompileBatch compiles several files concurrently. Every file is
// attempted; the first error is returned after all others finish.
func (c *CLI) runCompileBatch(ctx context.Context, runner *pipeline.Runner, paths []string, opts *compileOpts, pipeOpts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	results := make([]*pipeline.Result, len(paths))
	outputs := make([]string, len(paths))

	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			res, err := compileFile(ctx, runner, path, pipeOpts)
			if err != nil {
				logger.Error("Compile failed", "file", path, "err", err)
				return fmt.Errorf("%s: %w", path, err)
			}
			out := batchOutputPath(path, opts.output, res.Target)
			if err := os.WriteFile(out, []byte(res.QASM), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			results[i], outputs[i] = res, out
			return nil
		})
	}
	err := g.Wait()

	done := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		done++
		printResult(res, outputs[i])
	}
	prog.done(fmt.Sprintf("Compiled %d of %d circuits", done, len(paths)))
	return err
}

// compileFile reads path and compiles it. The circuit is named after the
// file without its extension.
func compileFile(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*pipeline.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return runner.Compile(ctx, circuitName(path), string(src), opts)
}

// batchOutputPath places <name>.<target>.qasm in dir, or next to the input
// when dir is empty.
func batchOutputPath(path, dir, target string) string {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, circuitName(path)+"."+target+".qasm")
}

// circuitName returns the base name of path without its extension.
func circuitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printResult(res *pipeline.Result, output string) {
	printSuccess("%s for %s", res.Name, res.Target)
	printFile(output)
	printStats(res.Stats, res.CacheHit)
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
}
