package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/parser"
	"github.com/krpsim/krpsim/sim/report"
	"github.com/krpsim/krpsim/sim/trace"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitError    = 1 // usage, configuration or verification failure
	ExitDeadlock = 2
	ExitHorizon  = 3
)

var (
	logLevel   string // Log verbosity level
	noStrategy bool   // Disable the farm-and-convert plan
	traceOut   string // Trace file written by run
	summaryOut string // YAML summary written by run
)

// exitError carries a process exit code out of a command. Silent errors
// have already been reported to the user.
type exitError struct {
	code   int
	msg    string
	silent bool
}

func (e *exitError) Error() string { return e.msg }

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

func outcomeError(s *sim.Simulator) error {
	switch s.Outcome {
	case sim.OutcomeDeadlock:
		return &exitError{code: ExitDeadlock, msg: "deadlock", silent: true}
	case sim.OutcomeHorizon:
		return &exitError{code: ExitHorizon, msg: "horizon reached", silent: true}
	}
	return nil
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "krpsim",
	Short:         "Process scheduling simulator for resource-constrained production chains",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd simulates a configuration up to a horizon
var runCmd = &cobra.Command{
	Use:   "run <config> <delay>",
	Short: "Simulate a configuration for at most <delay> cycles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]
		horizon, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || horizon <= 0 {
			return fmt.Errorf("delay must be a positive integer, got %q", args[1])
		}

		cfg, err := parser.LoadFile(configPath)
		if err != nil {
			return err
		}

		printer := report.NewPrinter(cmd.OutOrStdout())
		printer.Header(cfg)

		logrus.Infof("Starting simulation of %s with horizon=%d", configPath, horizon)
		startTime := time.Now()
		s := sim.NewSimulator(cfg, horizon)
		s.UseStrategy = !noStrategy
		s.Run()
		logrus.Infof("Simulation complete in %s: %d events, outcome %s", time.Since(startTime), len(s.Trace), s.Outcome)

		printer.Run(s)

		if traceOut != "" {
			if err := trace.Save(traceOut, s.Trace); err != nil {
				return err
			}
			logrus.Infof("trace saved to %s", traceOut)
		}
		if summaryOut != "" {
			if err := report.SaveSummary(summaryOut, report.NewSummary(configPath, s)); err != nil {
				return err
			}
			logrus.Infof("summary saved to %s", summaryOut)
		}
		return outcomeError(s)
	},
}

// orderCmd prints the dispatch priority order of a configuration
var orderCmd = &cobra.Command{
	Use:   "order <config>",
	Short: "Print the dispatch order derived from the optimize targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := parser.LoadFile(args[0])
		if err != nil {
			return err
		}
		report.NewPrinter(cmd.OutOrStdout()).Order(sim.OrderProcesses(cfg))
		return nil
	},
}

// Execute runs the CLI root command
func Execute() {
	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && !(errors.As(err, &ee) && ee.silent) {
		logrus.Error(err)
	}
	os.Exit(exitCode(err))
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVar(&noStrategy, "no-strategy", false, "Disable the closed-form farm-and-convert plan and always step cycle by cycle")

	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the trace to this file (one cycle:process line per event)")
	runCmd.Flags().StringVar(&summaryOut, "summary", "", "Write a YAML run summary to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(orderCmd)
}
