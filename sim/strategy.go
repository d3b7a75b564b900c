package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// farmConvertPlan is a closed-form schedule for the two-process shape where
// a booster farms the main resource and a target converts it into the
// single optimized stock. Both processes recycle a shared token resource.
type farmConvertPlan struct {
	Target      *Process
	Booster     *Process
	Token       string
	Main        string
	Boosts      int64
	Conversions int64
}

// planFarmConvert recognizes the farm-and-convert shape and searches the
// booster loop count that maximizes target runs within the horizon.
// It returns false when the config does not have that shape, in which case
// the caller falls back to cycle stepping.
//
// Recognized when:
//   - the optimize targets other than "time" are exactly one stock S;
//   - exactly one process (the target) produces S, with a positive delay;
//   - the target needs a token it gives back in full and one other main resource;
//   - some other process (the booster, first by name) needs the token, gives it
//     back in full, has a positive delay and produces more main than it uses;
//   - the token stock covers the needs of both.
func planFarmConvert(cfg *Config, stocks map[string]int, horizon int64) (farmConvertPlan, bool) {
	var plan farmConvertPlan
	targets := cfg.StockTargets()
	if len(targets) != 1 || horizon < 0 {
		return plan, false
	}
	stock := targets[0]

	for _, name := range cfg.ProcessNames() {
		if p := cfg.Processes[name]; p.Results[stock] > 0 {
			if plan.Target != nil {
				return plan, false
			}
			plan.Target = p
		}
	}
	if plan.Target == nil || plan.Target.Delay <= 0 {
		return plan, false
	}

	needs := sortedKeys(plan.Target.Needs)
	for _, r := range needs {
		if plan.Target.Sustains(r) {
			plan.Token = r
			break
		}
	}
	if plan.Token == "" {
		return plan, false
	}
	for _, r := range needs {
		if r != plan.Token {
			plan.Main = r
			break
		}
	}
	if plan.Main == "" {
		return plan, false
	}

	for _, name := range cfg.ProcessNames() {
		p := cfg.Processes[name]
		if p == plan.Target || p.Delay <= 0 {
			continue
		}
		if p.Needs[plan.Token] > 0 && p.Sustains(plan.Token) && p.Net(plan.Main) > 0 {
			plan.Booster = p
			break
		}
	}
	if plan.Booster == nil {
		return plan, false
	}
	if tok := stocks[plan.Token]; tok < plan.Target.Needs[plan.Token] || tok < plan.Booster.Needs[plan.Token] {
		return plan, false
	}

	initial := func(r string) int64 { return int64(stocks[r]) }
	maxBoosts := min(horizon/plan.Booster.Delay, affordableRuns(plan.Booster, initial))

	best := int64(-1)
	for loops := int64(0); loops <= maxBoosts; loops++ {
		after := func(r string) int64 {
			return int64(stocks[r]) + loops*int64(plan.Booster.Net(r))
		}
		remaining := horizon - loops*plan.Booster.Delay
		byTime := remaining / plan.Target.Delay
		byStock := affordableRuns(plan.Target, after)
		if count := min(byTime, byStock); count > best {
			best = count
			plan.Boosts = loops
			plan.Conversions = count
		}
	}
	logrus.Infof("farm-convert plan: %d x %s then %d x %s (token=%s, main=%s)",
		plan.Boosts, plan.Booster.Name, plan.Conversions, plan.Target.Name, plan.Token, plan.Main)
	return plan, true
}

// affordableRuns returns how many times p can run back to back given the
// resource levels, counting what each run gives back to its own needs.
// It returns math.MaxInt64 when no need is consumed on net.
func affordableRuns(p *Process, level func(string) int64) int64 {
	runs := int64(math.MaxInt64)
	for r, need := range p.Needs {
		have := level(r)
		if have < int64(need) {
			return 0
		}
		net := int64(need - p.Results[r])
		if net <= 0 {
			continue
		}
		runs = min(runs, (have-int64(need))/net+1)
	}
	return runs
}

// dispatchPlanned performs the next dispatch of the plan: it debits needs,
// records the dispatch at the current clock, advances the clock by the delay,
// then credits results. It returns false when the plan is done or blocked.
func (sim *Simulator) dispatchPlanned() bool {
	var p *Process
	switch {
	case sim.planned < sim.plan.Boosts:
		p = sim.plan.Booster
	case sim.planned < sim.plan.Boosts+sim.plan.Conversions:
		p = sim.plan.Target
	default:
		return false
	}
	if !sim.CanStart(p) {
		logrus.Warnf("[cycle %07d] farm-convert plan stopped: %s cannot start", sim.Clock, p.Name)
		return false
	}
	sim.debit(p)
	sim.Trace.Record(sim.Clock, p.Name)
	logrus.Debugf("[cycle %07d] start %s", sim.Clock, p.Name)
	sim.Clock += p.Delay
	sim.credit(p)
	sim.planned++
	return true
}
