package monitor

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"

	"github.com/spckit/spc/pkg/chart"
	"github.com/spckit/spc/pkg/round"
	"github.com/spckit/spc/pkg/rules"
)

// Config declares one monitor in a YAML file.  Zero-valued optional fields keep the
// engine defaults.
type Config struct {
	Name  string       `yaml:"name"`
	Chart ChartConfig  `yaml:"chart"`
	Rules []RuleConfig `yaml:"rules"`
}

// ChartConfig selects and parameterizes the chart engine.
type ChartConfig struct {
	Type          string          `yaml:"type"`
	SubgroupSize  int             `yaml:"subgroup_size"`
	GroupLimit    int             `yaml:"group_limit"`
	Span          int             `yaml:"span"`
	Window        int             `yaml:"window"`
	SigmaMultiple float64         `yaml:"sigma_multiple"`
	Rounding      *RoundingConfig `yaml:"rounding"`
}

// RoundingConfig applies a read-boundary rounding policy to the chart accessors.
type RoundingConfig struct {
	Places int    `yaml:"places"`
	Mode   string `yaml:"mode"`
}

// RuleConfig declares one pattern rule.  An empty rule list keeps the canonical
// default set.
type RuleConfig struct {
	Kind   string  `yaml:"kind"`
	Points int     `yaml:"points"`
	Window int     `yaml:"window"`
	Sigma  float64 `yaml:"sigma"`
}

// ParseConfig unmarshals a YAML monitor declaration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("monitor: could not parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML monitor declaration from a file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("monitor: could not read config: %w", err)
	}
	return ParseConfig(data)
}

// NewFromConfig builds a monitor from a declaration.  All configuration problems
// are collected and returned together so a bad file can be fixed in one pass.
func NewFromConfig(cfg Config, opts ...Option) (*Monitor, []error) {
	var errs []error

	if cfg.Name == "" {
		errs = append(errs, fmt.Errorf("monitor: config requires a name"))
	}

	var chartOpts []chart.Option
	if cfg.Name != "" {
		chartOpts = append(chartOpts, chart.WithName(cfg.Name, nil))
	}
	if cfg.Chart.GroupLimit != 0 {
		chartOpts = append(chartOpts, chart.WithGroupLimit(cfg.Chart.GroupLimit))
	}
	if cfg.Chart.Span != 0 {
		chartOpts = append(chartOpts, chart.WithSpan(cfg.Chart.Span))
	}
	if cfg.Chart.Window != 0 {
		chartOpts = append(chartOpts, chart.WithWindow(cfg.Chart.Window))
	}
	if cfg.Chart.SigmaMultiple != 0 {
		chartOpts = append(chartOpts, chart.WithSigmaMultiple(cfg.Chart.SigmaMultiple))
	}
	if cfg.Chart.Rounding != nil {
		policy, err := round.New(cfg.Chart.Rounding.Places, round.Mode(cfg.Chart.Rounding.Mode))
		if err != nil {
			errs = append(errs, err)
		} else {
			chartOpts = append(chartOpts, chart.WithRounding(policy))
		}
	}

	engine, err := chart.New(chart.ChartType(cfg.Chart.Type), cfg.Chart.SubgroupSize, chartOpts...)
	if err != nil {
		errs = append(errs, err)
	}

	if len(cfg.Rules) > 0 {
		rs := make([]rules.Rule, 0, len(cfg.Rules))
		for _, rc := range cfg.Rules {
			r := rules.Rule{
				Kind:   rules.Kind(rc.Kind),
				Points: rc.Points,
				Window: rc.Window,
				Sigma:  rc.Sigma,
			}
			rs = append(rs, r)
		}
		// an empty-series evaluation validates the rule parameters up front
		if _, err := rules.Evaluate(nil, rs...); err != nil {
			errs = append(errs, err)
		}
		opts = append(opts, WithRules(rs...))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	m, err := New(cfg.Name, engine, opts...)
	if err != nil {
		return nil, []error{err}
	}
	return m, nil
}
