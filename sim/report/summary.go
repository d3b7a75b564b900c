package report

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/trace"
)

// Summary is the machine-readable record of one run.
type Summary struct {
	RunID        string         `yaml:"run_id"`
	Config       string         `yaml:"config"`
	Horizon      int64          `yaml:"horizon"`
	Outcome      sim.Outcome    `yaml:"outcome"`
	Deadlock     bool           `yaml:"deadlock"`
	Clock        int64          `yaml:"clock"`
	Strategy     sim.Strategy   `yaml:"strategy"`
	Events       int            `yaml:"events"`
	// Processes is the number of distinct processes dispatched.
	Processes    int            `yaml:"unique_processes"`
	FirstCycle   int64          `yaml:"first_cycle"`
	LastCycle    int64          `yaml:"last_cycle"`
	BusiestCycle int64          `yaml:"busiest_cycle"`
	BusiestCount int            `yaml:"busiest_count"`
	Dispatches   map[string]int `yaml:"dispatches"`
	Stocks       map[string]int `yaml:"stocks"`
	TraceDigest  string         `yaml:"trace_digest,omitempty"`
	Warnings     []string       `yaml:"warnings,omitempty"`
}

// NewSummary captures the final state of s. configPath is informational.
func NewSummary(configPath string, s *sim.Simulator) *Summary {
	ts := trace.Summarize(s.Trace)
	return &Summary{
		RunID:        uuid.NewString(),
		Config:       configPath,
		Horizon:      s.Horizon,
		Outcome:      s.Outcome,
		Deadlock:     s.Deadlock,
		Clock:        s.Clock,
		Strategy:     s.Strategy,
		Events:       ts.TotalEvents,
		Processes:    ts.UniqueProcesses,
		FirstCycle:   ts.FirstCycle,
		LastCycle:    ts.LastCycle,
		BusiestCycle: ts.BusiestCycle,
		BusiestCount: ts.BusiestCount,
		Dispatches:   ts.Dispatches,
		Stocks:       s.Stocks,
		TraceDigest:  s.Trace.Digest(),
		Warnings:     s.Warnings,
	}
}

// WriteSummary encodes summary as YAML.
func WriteSummary(w io.Writer, summary *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return enc.Close()
}

// SaveSummary writes summary to path as YAML.
func SaveSummary(path string, summary *Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary file: %w", err)
	}
	if err := WriteSummary(f, summary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
