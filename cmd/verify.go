package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim/sim/parser"
	"github.com/krpsim/krpsim/sim/report"
	"github.com/krpsim/krpsim/sim/trace"
	"github.com/krpsim/krpsim/sim/verify"
)

var verifyHorizon int64 // Replay horizon for complete-trace verification

// verifyCmd checks a trace file against a configuration
var verifyCmd = &cobra.Command{
	Use:   "verify <config> <trace>",
	Short: "Check that a trace is a valid execution of a configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		invalid := func(err error) error {
			fmt.Fprintf(out, "invalid trace: %v\n", err)
			return &exitError{code: ExitError, msg: err.Error(), silent: true}
		}
		if verifyHorizon < 0 {
			return fmt.Errorf("horizon must be positive, got %d", verifyHorizon)
		}

		cfg, err := parser.LoadFile(args[0])
		if err != nil {
			return invalid(err)
		}
		tr, err := trace.Load(args[1])
		if err != nil {
			return invalid(err)
		}

		res, err := verify.Verify(cfg, tr, verify.Options{Horizon: verifyHorizon, NoStrategy: noStrategy})
		if err != nil {
			return invalid(err)
		}
		fmt.Fprintln(out, "trace is valid")
		// final stocks are known only when the replay ran to its end
		if res.Simulator != nil && res.Simulator.Outcome != "" {
			report.NewPrinter(out).Stocks(res.Simulator.Stocks)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Int64Var(&verifyHorizon, "horizon", 0, "Replay up to this horizon and require the complete trace (0 = derive from the trace)")
	rootCmd.AddCommand(verifyCmd)
}
