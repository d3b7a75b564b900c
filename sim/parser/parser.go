// Package parser loads krpsim configurations, either in the line-oriented
// krpsim grammar or as YAML, into a validated sim.Config.
//
// Grammar of the text form, one directive per line:
//
//	# comment
//	name:quantity                          stock
//	name:(r:q;r:q):(r:q;r:q):delay         process (needs, results, delay)
//	optimize:(time|stock;...)              optimize targets, at most once
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/krpsim/krpsim/sim"
)

// MaxLineLength is the longest accepted configuration line, in bytes.
const MaxLineLength = 255

const optimizePrefix = "optimize:"

var processLine = regexp.MustCompile(`^([^:()]+):\(([^()]*)\):\(([^()]*)\):(\d+)$`)

// Error reports an invalid configuration. Line is 1-based, or 0 when the
// problem concerns the configuration as a whole.
type Error struct {
	Line int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func lineErr(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// LoadFile reads the configuration at path. Files ending in .yaml or .yml
// are decoded as YAML; anything else uses the text grammar.
func LoadFile(path string) (*sim.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var cfg *sim.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(f)
	default:
		cfg, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	logrus.Debugf("loaded %s: %d stocks, %d processes, optimize=%v",
		path, len(cfg.Stocks), len(cfg.Processes), cfg.Optimize)
	return cfg, nil
}

// Parse reads a configuration in the text grammar.
func Parse(r io.Reader) (*sim.Config, error) {
	cfg := &sim.Config{
		Stocks:    make(map[string]int),
		Processes: make(map[string]*sim.Process),
	}
	optimizeLine := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if len(raw) > MaxLineLength {
			return nil, lineErr(line, "line longer than %d bytes", MaxLineLength)
		}
		if !utf8.ValidString(raw) {
			return nil, lineErr(line, "invalid UTF-8")
		}
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(text, optimizePrefix+"(") && !processLine.MatchString(text):
			if optimizeLine != 0 {
				return nil, lineErr(line, "optimize already declared on line %d", optimizeLine)
			}
			targets, err := parseOptimize(strings.TrimPrefix(text, optimizePrefix))
			if err != nil {
				return nil, &Error{Line: line, Err: err}
			}
			cfg.Optimize = targets
			optimizeLine = line
		case strings.Contains(text, ":("):
			p, err := parseProcess(text)
			if err != nil {
				return nil, &Error{Line: line, Err: err}
			}
			if _, dup := cfg.Processes[p.Name]; dup {
				return nil, lineErr(line, "duplicate process %q", p.Name)
			}
			cfg.Processes[p.Name] = p
		case strings.Contains(text, ":"):
			name, qty, err := parseStock(text)
			if err != nil {
				return nil, &Error{Line: line, Err: err}
			}
			if _, dup := cfg.Stocks[name]; dup {
				return nil, lineErr(line, "duplicate stock %q", name)
			}
			cfg.Stocks[name] = qty
		default:
			return nil, lineErr(line, "unrecognized line %q", text)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, lineErr(line+1, "line longer than %d bytes", MaxLineLength)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies the whole-configuration checks shared by both formats.
func finish(cfg *sim.Config) error {
	if len(cfg.Processes) == 0 {
		return &Error{Msg: "configuration must define at least one process"}
	}
	if err := cfg.Validate(); err != nil {
		return &Error{Err: err}
	}
	return nil
}

func parseStock(text string) (string, int, error) {
	name, qtyStr, _ := strings.Cut(text, ":")
	if !validName(name) {
		return "", 0, fmt.Errorf("invalid stock name in %q", text)
	}
	qty, err := parseQuantity(qtyStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid stock quantity in %q", text)
	}
	return name, qty, nil
}

func parseProcess(text string) (*sim.Process, error) {
	m := processLine.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("invalid process line %q", text)
	}
	name := m[1]
	if !validName(name) {
		return nil, fmt.Errorf("invalid process name %q", name)
	}
	needs, err := parseResources(m[2])
	if err != nil {
		return nil, fmt.Errorf("process %q needs: %w", name, err)
	}
	results, err := parseResources(m[3])
	if err != nil {
		return nil, fmt.Errorf("process %q results: %w", name, err)
	}
	delay, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("process %q: invalid delay %q", name, m[4])
	}
	return sim.NewProcess(name, needs, results, delay), nil
}

// parseResources decodes "r:q;r:q". Empty items are ignored; quantities
// must be positive and a resource may appear once.
func parseResources(block string) (map[string]int, error) {
	resources := make(map[string]int)
	for _, item := range strings.Split(block, ";") {
		if item == "" {
			continue
		}
		name, qtyStr, ok := strings.Cut(item, ":")
		if !ok || !validName(name) {
			return nil, fmt.Errorf("invalid resource %q", item)
		}
		qty, err := parseQuantity(qtyStr)
		if err != nil || qty == 0 {
			return nil, fmt.Errorf("invalid quantity for resource %q", item)
		}
		if _, dup := resources[name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", name)
		}
		resources[name] = qty
	}
	return resources, nil
}

func parseOptimize(block string) ([]string, error) {
	if len(block) < 2 || block[0] != '(' || block[len(block)-1] != ')' {
		return nil, fmt.Errorf("invalid optimize directive %q", block)
	}
	var targets []string
	for _, item := range strings.Split(block[1:len(block)-1], ";") {
		if !validName(item) {
			return nil, fmt.Errorf("invalid optimize target %q", item)
		}
		targets = append(targets, item)
	}
	return targets, nil
}

// parseQuantity accepts unsigned decimal digits up to sim.MaxQuantity.
func parseQuantity(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("not a non-negative integer: %q", s)
	}
	qty, err := strconv.Atoi(s)
	if err != nil || qty > sim.MaxQuantity {
		return 0, fmt.Errorf("quantity %s exceeds %d", s, sim.MaxQuantity)
	}
	return qty, nil
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ":;()# \t\r\n")
}
