package sim

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// OptimizeTime is the optimize target that prefers shorter processes.
const OptimizeTime = "time"

// MaxQuantity bounds every stock and every need or result quantity.
const MaxQuantity = math.MaxInt32

// Process is an immutable transformation: it consumes Needs when it starts,
// runs for Delay cycles, then produces Results.
type Process struct {
	Name    string
	Needs   map[string]int // resource → quantity consumed at start (> 0)
	Results map[string]int // resource → quantity produced at completion (> 0)
	Delay   int64          // duration in cycles; 0 = completes in its dispatch cycle
}

// NewProcess builds a Process. Nil maps are replaced by empty ones.
func NewProcess(name string, needs, results map[string]int, delay int64) *Process {
	if needs == nil {
		needs = map[string]int{}
	}
	if results == nil {
		results = map[string]int{}
	}
	return &Process{Name: name, Needs: needs, Results: results, Delay: delay}
}

// Net returns results[r] - needs[r]: the change one run makes to resource r.
func (p *Process) Net(resource string) int {
	return p.Results[resource] - p.Needs[resource]
}

// Sustains reports whether p gives back at least as much of resource as it takes.
func (p *Process) Sustains(resource string) bool {
	return p.Results[resource] >= p.Needs[resource]
}

// SelfFeeding reports whether every need of p is replenished by its own results.
// A zero-delay self-feeding process could dispatch without bound inside one cycle.
func (p *Process) SelfFeeding() bool {
	for r := range p.Needs {
		if !p.Sustains(r) {
			return false
		}
	}
	return true
}

// Config is a validated production economy: initial stocks, processes keyed
// by name and an optional priority-ordered list of optimize targets.
// The simulator reads it and never mutates it.
type Config struct {
	Stocks    map[string]int
	Processes map[string]*Process
	Optimize  []string
}

// NewConfig builds a Config from a process list.
func NewConfig(stocks map[string]int, processes []*Process, optimize ...string) *Config {
	if stocks == nil {
		stocks = map[string]int{}
	}
	byName := make(map[string]*Process, len(processes))
	for _, p := range processes {
		byName[p.Name] = p
	}
	return &Config{Stocks: stocks, Processes: byName, Optimize: optimize}
}

// ProcessNames returns all process names in ascending order.
func (c *Config) ProcessNames() []string {
	names := make([]string, 0, len(c.Processes))
	for name := range c.Processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resources returns every resource name the config mentions (declared
// stocks plus process needs and results) in ascending order.
func (c *Config) Resources() []string {
	seen := make(map[string]bool, len(c.Stocks))
	for name := range c.Stocks {
		seen[name] = true
	}
	for _, p := range c.Processes {
		for r := range p.Needs {
			seen[r] = true
		}
		for r := range p.Results {
			seen[r] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitialStocks returns a fresh snapshot holding every resource of the
// config, undeclared ones at zero.
func (c *Config) InitialStocks() map[string]int {
	stocks := make(map[string]int)
	for _, r := range c.Resources() {
		stocks[r] = c.Stocks[r]
	}
	return stocks
}

// StockTargets returns the optimize targets other than "time", in order.
func (c *Config) StockTargets() []string {
	var targets []string
	for _, t := range c.Optimize {
		if t != OptimizeTime {
			targets = append(targets, t)
		}
	}
	return targets
}

// Validate checks the invariants the simulator relies on.
func (c *Config) Validate() error {
	for name, qty := range c.Stocks {
		if name == "" {
			return fmt.Errorf("stock with empty name")
		}
		if qty < 0 {
			return fmt.Errorf("stock %q has negative quantity %d", name, qty)
		}
		if qty > MaxQuantity {
			return fmt.Errorf("stock %q quantity %d exceeds %d", name, qty, MaxQuantity)
		}
	}

	produced := make(map[string]bool)
	for _, name := range c.ProcessNames() {
		p := c.Processes[name]
		if p == nil {
			return fmt.Errorf("process %q is nil", name)
		}
		if p.Name != name {
			return fmt.Errorf("process keyed %q is named %q", name, p.Name)
		}
		if name == "" {
			return fmt.Errorf("process with empty name")
		}
		if p.Delay < 0 {
			return fmt.Errorf("process %q has negative delay %d", name, p.Delay)
		}
		for r, q := range p.Needs {
			if r == "" || q <= 0 || q > MaxQuantity {
				return fmt.Errorf("process %q: need %q must have a positive quantity up to %d, got %d", name, r, MaxQuantity, q)
			}
		}
		for r, q := range p.Results {
			if r == "" || q <= 0 || q > MaxQuantity {
				return fmt.Errorf("process %q: result %q must have a positive quantity up to %d, got %d", name, r, MaxQuantity, q)
			}
			produced[r] = true
		}
	}

	for _, name := range c.ProcessNames() {
		p := c.Processes[name]
		for _, r := range sortedKeys(p.Needs) {
			if _, ok := c.Stocks[r]; !ok && !produced[r] {
				return fmt.Errorf("process %q needs unknown stock %q", name, r)
			}
		}
	}

	known := make(map[string]bool)
	for _, r := range c.Resources() {
		known[r] = true
	}
	seen := make(map[string]bool, len(c.Optimize))
	for _, target := range c.Optimize {
		if seen[target] {
			return fmt.Errorf("duplicate optimize target %q", target)
		}
		seen[target] = true
		if target != OptimizeTime && !known[target] {
			return fmt.Errorf("optimize target %q is not a known stock", target)
		}
	}
	return nil
}

// ZeroDelayLoops returns the groups of two or more zero-delay processes that
// feed each other: following results into the needs of other zero-delay
// processes leads from every member back to itself. Groups and their members
// are sorted by name.
func (c *Config) ZeroDelayLoops() [][]string {
	var zero []*Process
	for _, name := range c.ProcessNames() {
		if p := c.Processes[name]; p.Delay == 0 {
			zero = append(zero, p)
		}
	}
	feeds := func(from, to *Process) bool {
		for r := range from.Results {
			if to.Needs[r] > 0 {
				return true
			}
		}
		return false
	}

	reach := make(map[string]map[string]bool, len(zero))
	for _, start := range zero {
		seen := make(map[string]bool)
		stack := []*Process{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range zero {
				if !seen[next.Name] && feeds(cur, next) {
					seen[next.Name] = true
					stack = append(stack, next)
				}
			}
		}
		reach[start.Name] = seen
	}

	var loops [][]string
	grouped := make(map[string]bool)
	for _, a := range zero {
		if grouped[a.Name] {
			continue
		}
		group := []string{a.Name}
		for _, b := range zero {
			if b != a && reach[a.Name][b.Name] && reach[b.Name][a.Name] {
				group = append(group, b.Name)
			}
		}
		if len(group) < 2 {
			continue
		}
		for _, name := range group {
			grouped[name] = true
		}
		loops = append(loops, group)
	}
	return loops
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
