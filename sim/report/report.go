// Package report renders the outcome of a run for people (a styled text
// report) and for tools (a YAML summary).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/krpsim/krpsim/sim"
)

var irregularPlurals = map[string]string{"process": "processes"}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	if p, ok := irregularPlurals[word]; ok {
		return p
	}
	return word + "s"
}

// Printer writes the human-readable report. Styling follows the color
// profile of the destination, so redirected output stays plain text.
type Printer struct {
	w     io.Writer
	title lipgloss.Style
	warn  lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#E5A50A")),
	}
}

// Header introduces the configuration.
func (p *Printer) Header(cfg *sim.Config) {
	fmt.Fprintf(p.w, "%s %d %s, %d %s, %d %s\n",
		p.title.Render("Nice file!"),
		len(cfg.Processes), pluralize("process", len(cfg.Processes)),
		len(cfg.Stocks), pluralize("stock", len(cfg.Stocks)),
		len(cfg.Optimize), pluralize("objective", len(cfg.Optimize)))
	fmt.Fprintln(p.w, "Evaluating ... done.")
	fmt.Fprintln(p.w, p.title.Render("Main walk"))
}

// Run prints the trace, how the run ended and the final stocks.
func (p *Printer) Run(s *sim.Simulator) {
	for _, w := range s.Warnings {
		fmt.Fprintln(p.w, p.warn.Render("warning: "+w))
	}
	for _, line := range s.Trace.Lines() {
		fmt.Fprintln(p.w, line)
	}
	if s.Strategy == sim.StrategyFarmConvert {
		fmt.Fprintln(p.w, "farm-convert plan applied")
	}
	fmt.Fprintln(p.w, OutcomeMessage(s))
	p.Stocks(s.Stocks)
}

// Stocks prints "name => quantity" lines sorted by name.
func (p *Printer) Stocks(stocks map[string]int) {
	fmt.Fprintln(p.w, p.title.Render("Stock :"))
	names := make([]string, 0, len(stocks))
	for name := range stocks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(p.w, " %s => %d\n", name, stocks[name])
	}
}

// Order prints the dispatch priority order, one process per line.
func (p *Printer) Order(procs []*sim.Process) {
	fmt.Fprintln(p.w, p.title.Render("Dispatch order :"))
	for i, proc := range procs {
		fmt.Fprintf(p.w, " %d. %s (delay %d)\n", i+1, proc.Name, proc.Delay)
	}
}

// OutcomeMessage describes how the run ended.
func OutcomeMessage(s *sim.Simulator) string {
	switch s.Outcome {
	case sim.OutcomeDeadlock:
		return "deadlock: no process can start"
	case sim.OutcomeHorizon:
		return fmt.Sprintf("horizon reached at time %d", s.Clock)
	default:
		return fmt.Sprintf("no more process doable at time %d", s.Clock)
	}
}
