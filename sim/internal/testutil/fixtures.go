// Package testutil provides shared test infrastructure for krpsim.
// It consolidates fixture lookup, random economies and invariant assertions
// used across the sim/ test packages.
package testutil

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/krpsim/krpsim/sim"
)

// FixturePath returns the path of a file in the repository's testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// RandomConfig builds a small valid economy from rng. Every resource is
// declared as a stock so that any need is known.
func RandomConfig(rng *rand.Rand) *sim.Config {
	numResources := 2 + rng.IntN(4)
	resources := make([]string, numResources)
	stocks := make(map[string]int, numResources)
	for i := range resources {
		resources[i] = fmt.Sprintf("r%d", i)
		stocks[resources[i]] = rng.IntN(6)
	}

	pick := func(limit int) map[string]int {
		m := make(map[string]int)
		for n := rng.IntN(limit + 1); n > 0; n-- {
			m[resources[rng.IntN(numResources)]] += 1 + rng.IntN(3)
		}
		return m
	}

	numProcesses := 1 + rng.IntN(5)
	procs := make([]*sim.Process, numProcesses)
	for i := range procs {
		procs[i] = sim.NewProcess(fmt.Sprintf("p%d", i), pick(2), pick(2), int64(rng.IntN(5)))
	}

	var optimize []string
	switch rng.IntN(4) {
	case 1:
		optimize = []string{sim.OptimizeTime}
	case 2:
		optimize = []string{resources[rng.IntN(numResources)]}
	case 3:
		optimize = []string{sim.OptimizeTime, resources[rng.IntN(numResources)]}
	}
	return sim.NewConfig(stocks, procs, optimize...)
}

// AssertStocksNonNegative fails the test when any stock is below zero.
func AssertStocksNonNegative(t *testing.T, stocks map[string]int) {
	t.Helper()
	for name, qty := range stocks {
		if qty < 0 {
			t.Errorf("stock %q is negative: %d", name, qty)
		}
	}
}
