// Package sim provides the core discrete-time simulation engine for krpsim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - config.go: Config and Process, the read-only production economy
//   - order.go: the dispatch priority order derived from the optimize targets
//   - simulator.go: the cycle loop (completion, dispatch, clock advance)
//   - strategy.go: the closed-form farm-and-convert plan
//
// # Architecture
//
// The engine is single-threaded and deterministic: the same Config and
// horizon always yield the same trace and final stocks. Sub-packages:
//   - sim/parser/: text and YAML configuration loaders
//   - sim/trace/: dispatch events, trace files and summaries
//   - sim/verify/: replay-based trace verification
//   - sim/report/: human-readable and YAML run reports
package sim
