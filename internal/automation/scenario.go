// Package automation runs scripted batches of headless falls: YAML
// scenarios of named steps and Monte Carlo dispersion studies.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/experiment"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/sim"
	"github.com/san-kum/freefall/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero fields inherit from the base config.
type ScenarioStep struct {
	Name        string       `yaml:"name"`
	Preset      string       `yaml:"preset"`
	Integrator  string       `yaml:"integrator"`
	Dt          float64      `yaml:"dt"`
	MaxDuration float64      `yaml:"max_duration"`
	Params      params.Patch `yaml:"params"`
	// SaveAs archives the run under this label when a store is given.
	SaveAs string `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	Params dynamo.Params
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config layers the step over base. Step params are merged over the base
// overrides.
func (s ScenarioStep) Config(base *config.Config) *config.Config {
	cfg := *base
	if s.Preset != "" {
		cfg.Preset = s.Preset
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.MaxDuration != 0 {
		cfg.MaxDuration = s.MaxDuration
	}
	cfg.Params = base.Params.Merge(s.Params)
	return &cfg
}

// RunScenario executes every step in order. store may be nil; logger may be
// nil. Results of the steps completed so far are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, store *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if base == nil {
		base = config.DefaultConfig()
	}
	reg := experiment.NewRegistry()
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg := step.Config(base)
		exp, err := experiment.New(cfg, sim.WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		exp.Setup(reg.DefaultMetrics())

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		sr := StepResult{Name: name, Params: exp.Params(), Result: result}
		if step.SaveAs != "" && store != nil {
			id, err := store.Save(storage.RunMetadata{
				Label:      step.SaveAs,
				Dt:         cfg.Dt,
				Integrator: cfg.Integrator,
				Params:     exp.Params(),
				Terminated: result.Terminated,
				Final:      result.Final,
				Metrics:    result.Metrics,
			}, result.History)
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}
