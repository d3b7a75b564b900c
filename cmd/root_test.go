package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/report"
	"github.com/krpsim/krpsim/sim/trace"
)

func fixture(name string) string {
	return filepath.Join("..", "testdata", name)
}

// execute runs the root command with args and returns everything it printed.
// Flag variables are package globals, so they are reset before each run.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logLevel, noStrategy, traceOut, summaryOut, verifyHorizon = "warn", false, "", "", 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRun_Simple_PrintsReport(t *testing.T) {
	// GIVEN the simple chain configuration
	// WHEN run with a generous delay
	out, err := execute(t, "run", fixture("simple"), "100")

	// THEN the header, the trace and the final stocks are printed
	require.NoError(t, err)
	assert.Contains(t, out, "Nice file! 3 processes, 1 stock, 2 objectives")
	assert.Contains(t, out, "Main walk")
	assert.Contains(t, out, "0:achat_materiel\n10:realisation_produit\n40:livraison\n")
	assert.Contains(t, out, "no more process doable at time")
	assert.Contains(t, out, " client_content => 1\n")
	assert.Contains(t, out, " euro => 2\n")
}

func TestRun_Outcomes_MapToExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{"finished", []string{"run", fixture("ikea"), "100"}, ExitOK, "no more process doable"},
		{"deadlock", []string{"run", fixture("deadlock"), "10"}, ExitDeadlock, "deadlock: no process can start"},
		{"horizon", []string{"run", "--no-strategy", fixture("farm"), "12"}, ExitHorizon, "horizon reached at time"},
		{"farm-convert", []string{"run", fixture("farm"), "12"}, ExitOK, "farm-convert plan applied"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			assert.Equal(t, tc.code, exitCode(err))
			assert.Contains(t, out, tc.message)
		})
	}
}

func TestRun_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero delay", []string{"run", fixture("simple"), "0"}},
		{"negative delay", []string{"run", fixture("simple"), "-5"}},
		{"non-numeric delay", []string{"run", fixture("simple"), "soon"}},
		{"missing delay", []string{"run", fixture("simple")}},
		{"missing file", []string{"run", fixture("nope"), "10"}},
		{"invalid config", []string{"run", fixture("invalid_bad_process"), "10"}},
		{"bad log level", []string{"--log", "loud", "run", fixture("simple"), "10"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitError, exitCode(err))
		})
	}
}

func TestRun_WritesTraceAndSummary(t *testing.T) {
	// GIVEN output paths in a scratch directory
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "simple.trace")
	summaryPath := filepath.Join(dir, "summary.yaml")

	// WHEN run with --trace-out and --summary
	_, err := execute(t, "run", fixture("simple"), "100", "--trace-out", tracePath, "--summary", summaryPath)
	require.NoError(t, err)

	// THEN the trace file holds the three dispatches
	tr, err := trace.Load(tracePath)
	require.NoError(t, err)
	assert.Equal(t, trace.Trace{
		{Cycle: 0, Process: "achat_materiel"},
		{Cycle: 10, Process: "realisation_produit"},
		{Cycle: 40, Process: "livraison"},
	}, tr)

	// AND the summary describes the same run
	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary report.Summary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, fixture("simple"), summary.Config)
	assert.Equal(t, int64(100), summary.Horizon)
	assert.Equal(t, sim.OutcomeFinished, summary.Outcome)
	assert.Equal(t, 3, summary.Events)
	assert.Equal(t, tr.Digest(), summary.TraceDigest)

	// AND the written trace verifies against its configuration
	out, err := execute(t, "verify", fixture("simple"), tracePath)
	require.NoError(t, err)
	assert.Contains(t, out, "trace is valid")
}

func TestVerify_ValidTrace(t *testing.T) {
	out, err := execute(t, "verify", fixture("simple"), fixture("simple.trace"))

	require.NoError(t, err)
	assert.Contains(t, out, "trace is valid")
	assert.NotContains(t, out, "Stock :")
}

func TestVerify_CompleteHorizon(t *testing.T) {
	// GIVEN the full simple trace and a one-event prefix of it
	prefix := filepath.Join(t.TempDir(), "prefix.trace")
	require.NoError(t, os.WriteFile(prefix, []byte("0:achat_materiel\n"), 0o644))

	// WHEN verified against an explicit horizon
	full, errFull := execute(t, "verify", "--horizon", "100", fixture("simple"), fixture("simple.trace"))
	short, errShort := execute(t, "verify", "--horizon", "100", fixture("simple"), prefix)

	// THEN only the complete trace is accepted
	require.NoError(t, errFull)
	assert.Contains(t, full, "trace is valid")
	assert.Contains(t, full, " client_content => 1\n")
	assert.Equal(t, ExitError, exitCode(errShort))
	assert.Contains(t, short, "invalid trace: ")
}

func TestVerify_Mismatch_ReportsLine(t *testing.T) {
	out, err := execute(t, "verify", fixture("simple"), fixture("simple_bad.trace"))

	assert.Equal(t, ExitError, exitCode(err))
	assert.Contains(t, out, "invalid trace: line 2: expected 10:realisation_produit but got 11:realisation_produit")
}

func TestVerify_EmptySentinel_IsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.trace")
	require.NoError(t, trace.Save(path, nil))

	out, err := execute(t, "verify", fixture("deadlock"), path)

	require.NoError(t, err)
	assert.Contains(t, out, "trace is valid")
}

func TestVerify_UnreadableInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing trace", []string{"verify", fixture("simple"), fixture("nope.trace")}},
		{"invalid config", []string{"verify", fixture("invalid_bad_stock"), fixture("simple.trace")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			assert.Equal(t, ExitError, exitCode(err))
			assert.Contains(t, out, "invalid trace: ")
		})
	}
}

func TestOrder_PrintsDispatchOrder(t *testing.T) {
	// GIVEN simple, optimized for time first
	out, err := execute(t, "order", fixture("simple"))

	// THEN processes are listed by ascending delay
	require.NoError(t, err)
	assert.Contains(t, out, " 1. achat_materiel (delay 10)\n 2. livraison (delay 20)\n 3. realisation_produit (delay 30)\n")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil))
	assert.Equal(t, ExitError, exitCode(errors.New("boom")))
	assert.Equal(t, ExitDeadlock, exitCode(&exitError{code: ExitDeadlock}))
	assert.Equal(t, ExitHorizon, exitCode(joined(&exitError{code: ExitHorizon})))
}

func joined(err error) error {
	return errors.Join(errors.New("context"), err)
}
