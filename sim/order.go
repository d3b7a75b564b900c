package sim

import "sort"

// OrderProcesses returns the config's processes in dispatch priority order.
//
// The sort key is built from the optimize targets in list order: "time"
// contributes the delay (shorter first), a stock name S contributes
// -results[S] (larger producers first). The process name is the final
// tie-break, so the order is total and deterministic; with no targets
// processes are ordered by name.
func OrderProcesses(cfg *Config) []*Process {
	procs := make([]*Process, 0, len(cfg.Processes))
	for _, name := range cfg.ProcessNames() {
		procs = append(procs, cfg.Processes[name])
	}
	sort.SliceStable(procs, func(i, j int) bool {
		a, b := procs[i], procs[j]
		for _, target := range cfg.Optimize {
			ka, kb := sortKey(a, target), sortKey(b, target)
			if ka != kb {
				return ka < kb
			}
		}
		return a.Name < b.Name
	})
	return procs
}

func sortKey(p *Process, target string) int64 {
	if target == OptimizeTime {
		return p.Delay
	}
	return -int64(p.Results[target])
}
