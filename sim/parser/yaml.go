package parser

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/krpsim/krpsim/sim"
)

// yamlConfig is the YAML form of a configuration:
//
//	stocks: {euro: 10}
//	processes:
//	  - {name: buy, needs: {euro: 8}, results: {material: 1}, delay: 10}
//	optimize: [time, material]
type yamlConfig struct {
	Stocks    map[string]int `yaml:"stocks"`
	Processes []yamlProcess  `yaml:"processes"`
	Optimize  []string       `yaml:"optimize"`
}

type yamlProcess struct {
	Name    string         `yaml:"name"`
	Needs   map[string]int `yaml:"needs"`
	Results map[string]int `yaml:"results"`
	Delay   *int64         `yaml:"delay"` // nil = missing, which is an error
}

// ParseYAML reads a YAML configuration with strict field checking.
func ParseYAML(r io.Reader) (*sim.Config, error) {
	var doc yamlConfig
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Msg: "empty configuration"}
		}
		return nil, &Error{Err: err}
	}

	cfg := &sim.Config{
		Stocks:    make(map[string]int, len(doc.Stocks)),
		Processes: make(map[string]*sim.Process, len(doc.Processes)),
		Optimize:  doc.Optimize,
	}
	for name, qty := range doc.Stocks {
		if !validName(name) {
			return nil, &Error{Msg: fmt.Sprintf("invalid stock name %q", name)}
		}
		cfg.Stocks[name] = qty
	}
	for i, yp := range doc.Processes {
		if !validName(yp.Name) {
			return nil, &Error{Msg: fmt.Sprintf("processes[%d]: invalid process name %q", i, yp.Name)}
		}
		if yp.Delay == nil {
			return nil, &Error{Msg: fmt.Sprintf("processes[%d] (%s): delay is required", i, yp.Name)}
		}
		if _, dup := cfg.Processes[yp.Name]; dup {
			return nil, &Error{Msg: fmt.Sprintf("duplicate process %q", yp.Name)}
		}
		for _, m := range []map[string]int{yp.Needs, yp.Results} {
			for r := range m {
				if !validName(r) {
					return nil, &Error{Msg: fmt.Sprintf("process %q: invalid resource name %q", yp.Name, r)}
				}
			}
		}
		cfg.Processes[yp.Name] = sim.NewProcess(yp.Name, yp.Needs, yp.Results, *yp.Delay)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
