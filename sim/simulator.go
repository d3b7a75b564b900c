// sim/simulator.go
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/krpsim/krpsim/sim/trace"
)

// Outcome classifies how a run ended. None of them is an error: callers
// decide what a horizon or a deadlock means for them.
type Outcome string

const (
	// OutcomeFinished means nothing was left running and nothing could start.
	OutcomeFinished Outcome = "finished"
	// OutcomeHorizon means the clock passed the horizon with work still possible.
	OutcomeHorizon Outcome = "horizon-reached"
	// OutcomeDeadlock means no process could ever start from the initial stocks.
	OutcomeDeadlock Outcome = "deadlock"
)

// Strategy names the scheduling path a run took.
type Strategy string

const (
	// StrategyStepping is the cycle-by-cycle dispatcher.
	StrategyStepping Strategy = "stepping"
	// StrategyFarmConvert is the closed-form booster/target plan.
	StrategyFarmConvert Strategy = "farm-convert"
)

// RunningProcess is a dispatched process waiting for its results.
type RunningProcess struct {
	Process   *Process
	Remaining int64 // cycles until completion
}

// Simulator is the core object that holds simulation time, stocks and the
// dispatch loop. A Simulator is single-use: build one per run.
type Simulator struct {
	Config  *Config
	Clock   int64
	Horizon int64
	// Stocks is the live snapshot, exclusively owned by this run.
	Stocks  map[string]int
	Running []*RunningProcess
	Trace   trace.Trace
	// Deadlock is set when no process could ever be dispatched.
	Deadlock bool
	// Outcome is empty until the run ends.
	Outcome  Outcome
	Strategy Strategy
	// UseStrategy enables the farm-and-convert plan when the config matches it.
	UseStrategy bool
	// Warnings lists configuration concerns found at construction.
	Warnings []string

	order   []*Process
	plan    *farmConvertPlan
	planned int64 // plan dispatches done so far
}

// NewSimulator prepares a run of cfg up to horizon. cfg must be valid.
func NewSimulator(cfg *Config, horizon int64) *Simulator {
	s := &Simulator{
		Config:      cfg,
		Clock:       0,
		Horizon:     horizon,
		Stocks:      cfg.InitialStocks(),
		Running:     make([]*RunningProcess, 0),
		Trace:       make(trace.Trace, 0),
		Strategy:    StrategyStepping,
		UseStrategy: true,
		order:       OrderProcesses(cfg),
	}
	for _, p := range s.order {
		if p.Delay == 0 && p.SelfFeeding() {
			s.warn(fmt.Sprintf("process %q has zero delay and replenishes all its needs; it is dispatched once per cycle", p.Name))
		}
	}
	for _, loop := range cfg.ZeroDelayLoops() {
		s.warn(fmt.Sprintf("zero-delay processes %s feed each other in a loop; each is dispatched at most once per cycle", quoteNames(loop)))
	}
	return s
}

func (sim *Simulator) warn(w string) {
	sim.Warnings = append(sim.Warnings, w)
	logrus.Warn(w)
}

// Run simulates until the horizon is passed or no further activity is possible.
func (sim *Simulator) Run() {
	sim.Start()
	for sim.Advance() {
	}
}

// Start picks the scheduling path. Run calls it; callers driving Advance
// themselves call it once before the first Advance.
func (sim *Simulator) Start() {
	logrus.Infof("[cycle %07d] Simulation started, horizon=%d, processes=%d", sim.Clock, sim.Horizon, len(sim.order))
	if !sim.UseStrategy {
		return
	}
	if plan, ok := planFarmConvert(sim.Config, sim.Stocks, sim.Horizon); ok {
		sim.Strategy = StrategyFarmConvert
		sim.plan = &plan
	}
}

// Advance moves the run forward by one unit of work: one planned dispatch
// under the farm-and-convert strategy, otherwise one cycle followed by a
// jump over the idle cycles after it. It returns false once the run has
// ended and Outcome is set.
func (sim *Simulator) Advance() bool {
	if sim.Outcome != "" {
		return false
	}
	if sim.plan != nil {
		if sim.dispatchPlanned() {
			return true
		}
		sim.end(OutcomeFinished)
		return false
	}
	if sim.Clock > sim.Horizon {
		sim.end(OutcomeHorizon)
		return false
	}
	dispatched := len(sim.Trace)
	if !sim.Step() {
		if len(sim.Trace) == 0 && len(sim.order) > 0 {
			sim.Deadlock = true
			sim.end(OutcomeDeadlock)
		} else {
			sim.end(OutcomeFinished)
		}
		return false
	}
	if len(sim.Trace) == dispatched {
		sim.skipIdle()
	}
	return true
}

func (sim *Simulator) end(outcome Outcome) {
	sim.Outcome = outcome
	logrus.Infof("[cycle %07d] Simulation ended (%s)", sim.Clock, sim.Outcome)
}

// skipIdle moves the clock to the next cycle in which a running instance
// completes. It must follow a cycle that dispatched nothing: stocks then stay
// unchanged until that completion and the horizon check only gets stricter,
// so the cycles in between dispatch nothing either.
func (sim *Simulator) skipIdle() {
	if len(sim.Running) == 0 {
		return
	}
	next := sim.Running[0].Remaining
	for _, rp := range sim.Running[1:] {
		next = min(next, rp.Remaining)
	}
	skip := min(next-1, sim.Horizon-sim.Clock+1)
	if skip <= 0 {
		return
	}
	for _, rp := range sim.Running {
		rp.Remaining -= skip
	}
	sim.Clock += skip
	logrus.Debugf("[cycle %07d] skipped %d idle cycles", sim.Clock, skip)
}

// Step executes one cycle: completions, then one dispatch pass, then the
// clock advance. It returns false when there is nothing left to wait for,
// in which case the clock is not advanced.
func (sim *Simulator) Step() bool {
	hadRunning := len(sim.Running) > 0
	sim.completeRunning()
	started := sim.startProcesses()
	advance := hadRunning || started || len(sim.Running) > 0
	if advance {
		sim.Clock++
	}
	return advance
}

// completeRunning ticks every running instance and commits the results of
// those reaching zero.
func (sim *Simulator) completeRunning() {
	still := sim.Running[:0]
	for _, rp := range sim.Running {
		rp.Remaining--
		if rp.Remaining > 0 {
			still = append(still, rp)
			continue
		}
		sim.credit(rp.Process)
		logrus.Debugf("[cycle %07d] complete %s", sim.Clock, rp.Process.Name)
	}
	sim.Running = still
}

// startProcesses makes one pass over the dispatch order and starts every
// process that fits both the stocks and the horizon. It reports whether a
// process with a non-zero delay was started.
func (sim *Simulator) startProcesses() bool {
	started := false
	for _, p := range sim.order {
		if p.Delay > sim.Horizon-sim.Clock || !sim.CanStart(p) {
			continue
		}
		sim.debit(p)
		sim.Trace.Record(sim.Clock, p.Name)
		logrus.Debugf("[cycle %07d] start %s", sim.Clock, p.Name)
		if p.Delay == 0 {
			sim.credit(p)
			continue
		}
		sim.Running = append(sim.Running, &RunningProcess{Process: p, Remaining: p.Delay})
		started = true
	}
	return started
}

// CanStart reports whether the current stocks cover every need of p.
// Unknown resources read as zero.
func (sim *Simulator) CanStart(p *Process) bool {
	for r, q := range p.Needs {
		if sim.Stocks[r] < q {
			return false
		}
	}
	return true
}

func (sim *Simulator) debit(p *Process) {
	for r, q := range p.Needs {
		sim.Stocks[r] -= q
	}
}

// credit adds p's results, saturating at math.MaxInt.
func (sim *Simulator) credit(p *Process) {
	for r, q := range p.Results {
		if sim.Stocks[r] > math.MaxInt-q {
			sim.Stocks[r] = math.MaxInt
			continue
		}
		sim.Stocks[r] += q
	}
}
