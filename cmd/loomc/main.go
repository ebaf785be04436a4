// Command loomc lowers a scheduled pipeline description to an imperative
// loop nest.
//
// Usage:
//
//	loomc lower pipeline.json             # Lower and print the loop nest
//	loomc lower -o out.txt pipeline.json  # Lower to a file
//	loomc realize-order pipeline.json     # Print the realization order
//	loomc print-bounds pipeline.json      # Print per-function value bounds
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loomlang/loomc"
	"github.com/loomlang/loomc/bounds"
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

var (
	verbose    bool
	output     string
	target     string
	stripDebug bool
)

// version returns the module version from build info.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	root := &cobra.Command{
		Use:     "loomc",
		Short:   "loomc lowers scheduled pipeline descriptions to loop nests",
		Version: version(),
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pass boundaries")

	lowerCmd := &cobra.Command{
		Use:   "lower <pipeline.json>",
		Short: "Lower a pipeline and print the resulting loop nest",
		Args:  cobra.ExactArgs(1),
		RunE:  runLower,
	}
	lowerCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	lowerCmd.Flags().StringVar(&target, "target", "", "target function (default: the description's target)")
	lowerCmd.Flags().BoolVar(&stripDebug, "strip-debug", false, "remove assert/print statements from the output")

	orderCmd := &cobra.Command{
		Use:   "realize-order <pipeline.json>",
		Short: "Print the order functions are realized in",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrder,
	}

	boundsCmd := &cobra.Command{
		Use:   "print-bounds <pipeline.json>",
		Short: "Print symbolic value bounds for each function",
		Args:  cobra.ExactArgs(1),
		RunE:  runBounds,
	}

	root.AddCommand(lowerCmd, orderCmd, boundsCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	if !verbose {
		return nil
	}
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	return log
}

func runLower(cmd *cobra.Command, args []string) error {
	env, defaultTarget, err := loadPipeline(args[0])
	if err != nil {
		return err
	}
	t := target
	if t == "" {
		t = defaultTarget
	}

	res, err := loomc.LowerWithOptions(env, t, loomc.Options{
		Log:        newLogger(),
		StripDebug: stripDebug,
	})
	if err != nil {
		return fmt.Errorf("lowering %s: %w", t, err)
	}

	var b strings.Builder
	b.WriteString(loomc.Print(res.Stmt))
	b.WriteString("\nexternal arguments:\n")
	for _, a := range res.ExternArgs {
		if a.Buffer {
			fmt.Fprintf(&b, "  %s: buffer, rank %d, %s\n", a.Name, a.Rank, a.Type)
		} else {
			fmt.Fprintf(&b, "  %s: %s\n", a.Name, a.Type)
		}
	}

	if output != "" {
		return os.WriteFile(output, []byte(b.String()), 0644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

func runOrder(cmd *cobra.Command, args []string) error {
	env, t, err := loadPipeline(args[0])
	if err != nil {
		return err
	}
	order, err := loomc.RealizationOrder(env, t)
	if err != nil {
		return err
	}
	for _, name := range order {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

// runBounds prints, for each function, the symbolic interval of its value
// with every pure argument a ranging over [f.a.min, f.a.min + f.a.extent - 1].
func runBounds(cmd *cobra.Command, args []string) error {
	env, _, err := loadPipeline(args[0])
	if err != nil {
		return err
	}

	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := env[name]
		interval, err := functionValueBounds(f)
		if err != nil {
			return fmt.Errorf("bounds of %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: [%s, %s]\n", name, endpoint(interval.Min), endpoint(interval.Max))
	}
	return nil
}

func functionValueBounds(f *schedule.Function) (bounds.Interval, error) {
	scope := ir.NewScope[bounds.Interval](nil)
	for _, a := range f.Args {
		min := ir.NewVariable(ir.Int32, f.Name+"."+a+".min")
		extent := ir.NewVariable(ir.Int32, f.Name+"."+a+".extent")
		one, err := ir.NewIntImm(ir.Int32, 1)
		if err != nil {
			return bounds.Interval{}, err
		}
		extentMinus1, err := ir.NewBinary(ir.OpSub, extent, one)
		if err != nil {
			return bounds.Interval{}, err
		}
		max, err := ir.NewBinary(ir.OpAdd, min, extentMinus1)
		if err != nil {
			return bounds.Interval{}, err
		}
		scope.Push(a, bounds.Interval{Min: min, Max: max})
	}
	return bounds.OfExprInScope(f.Value, scope)
}

func endpoint(e *ir.Expr) string {
	if e == nil {
		return "inf"
	}
	return ir.Print(e)
}
