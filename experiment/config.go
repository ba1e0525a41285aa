/*
Package experiment runs every configured solver over every partition of every dataset
*/
package experiment

import (
	"go-ml.dev/pkg/ordinal/metrics"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/hyperopt"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
	"strings"
)

/*
General is the general_conf section of an experiment file
*/
type General struct {
	Basedir      string   `yaml:"basedir"`
	Datasets     []string `yaml:"datasets"`
	Metrics      []string `yaml:"metrics"`
	CVMetric     string   `yaml:"cv_metric"`
	Folds        int      `yaml:"hyperparam_cv_nfolds"`
	Jobs         int      `yaml:"jobs"`
	OutputFolder string   `yaml:"output_folder"`
	Seed         int      `yaml:"seed"`
	Trials       int      `yaml:"trials"`
	SaveModels   bool     `yaml:"save_models"`
}

/*
Parameter is a value, a list of values or a {min, max, log, int} range
*/
type Parameter struct {
	hyperopt.Distribution
}

type rangeSpec struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
	Log bool     `yaml:"log"`
	Int bool     `yaml:"int"`
}

// booleans are accepted as 1 and 0
func scalar(n *yaml.Node) (float64, error) {
	switch strings.ToLower(n.Value) {
	case "true", "yes", "on":
		return 1, nil
	case "false", "no", "off":
		return 0, nil
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, xerrors.Errorf("line %d: `%v` is not a number", n.Line, n.Value)
	}
	return v, nil
}

func (p *Parameter) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		v, err := scalar(n)
		if err != nil {
			return err
		}
		p.Distribution = hyperopt.Value(v)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return xerrors.Errorf("line %d: empty list of values", n.Line)
		}
		l := make(hyperopt.List, len(n.Content))
		for i, c := range n.Content {
			v, err := scalar(c)
			if err != nil {
				return err
			}
			l[i] = v
		}
		if len(l) == 1 {
			p.Distribution = hyperopt.Value(l[0])
		} else {
			p.Distribution = l
		}
	case yaml.MappingNode:
		var r rangeSpec
		if err := n.Decode(&r); err != nil {
			return err
		}
		if r.Min == nil || r.Max == nil || *r.Min >= *r.Max {
			return xerrors.Errorf("line %d: range requires min < max", n.Line)
		}
		if r.Log && *r.Min <= 0 {
			return xerrors.Errorf("line %d: logarithmic range requires positive min", n.Line)
		}
		switch {
		case r.Int && r.Log:
			p.Distribution = hyperopt.LogIntRange{int(*r.Min), int(*r.Max)}
		case r.Int:
			p.Distribution = hyperopt.IntRange{int(*r.Min), int(*r.Max)}
		case r.Log:
			p.Distribution = hyperopt.LogRange{*r.Min, *r.Max}
		default:
			p.Distribution = hyperopt.Range{*r.Min, *r.Max}
		}
	default:
		return xerrors.Errorf("line %d: unsupported parameter value", n.Line)
	}
	return nil
}

/*
Configuration is a solver with its parameter space
*/
type Configuration struct {
	Name       string               `yaml:"-"`
	Classifier string               `yaml:"classifier"`
	Parameters map[string]Parameter `yaml:"parameters"`
}

/*
Variance returns the parameter space
*/
func (c Configuration) Variance() hyperopt.Variance {
	v := make(hyperopt.Variance, len(c.Parameters))
	for k, p := range c.Parameters {
		v[k] = p.Distribution
	}
	return v
}

/*
Fixed returns params if every parameter has a single value
*/
func (c Configuration) Fixed() (model.Params, bool) {
	p := make(model.Params, len(c.Parameters))
	for k, x := range c.Parameters {
		v, ok := x.Distribution.(hyperopt.Value)
		if !ok {
			return nil, false
		}
		p[k] = float64(v)
	}
	return p, true
}

/*
Experiment is a parsed experiment file, configurations keep the file order
*/
type Experiment struct {
	General        General
	Configurations []Configuration
}

func (e *Experiment) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		General        General   `yaml:"general_conf"`
		Configurations yaml.Node `yaml:"configurations"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	e.General = raw.General
	c := raw.Configurations
	if c.Kind == 0 {
		return nil
	}
	if c.Kind != yaml.MappingNode {
		return xerrors.Errorf("line %d: configurations must be a mapping", c.Line)
	}
	for i := 0; i+1 < len(c.Content); i += 2 {
		var conf Configuration
		if err := c.Content[i+1].Decode(&conf); err != nil {
			return xerrors.Errorf("configuration `%v`: %w", c.Content[i].Value, err)
		}
		conf.Name = c.Content[i].Value
		e.Configurations = append(e.Configurations, conf)
	}
	return nil
}

/*
Parse decodes an experiment and fills the defaults
*/
func Parse(data []byte) (*Experiment, error) {
	e := &Experiment{}
	if err := yaml.Unmarshal(data, e); err != nil {
		return nil, xerrors.Errorf("bad experiment: %w", err)
	}
	g := &e.General
	if g.Basedir == "" {
		g.Basedir = "."
	}
	if len(g.Metrics) == 0 {
		g.Metrics = []string{"ccr", "mae"}
	}
	if g.CVMetric == "" {
		g.CVMetric = g.Metrics[0]
	}
	if g.Folds == 0 {
		g.Folds = 3
	}
	if g.OutputFolder == "" {
		g.OutputFolder = "my_runs"
	}
	return e, nil
}

/*
Load reads an experiment file
*/
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read experiment: %w", err)
	}
	return Parse(data)
}

/*
Validate checks solver and metric names before anything is fitted
*/
func (e *Experiment) Validate(table model.Table) error {
	g := e.General
	if len(g.Datasets) == 0 {
		return xerrors.Errorf("no datasets")
	}
	if len(e.Configurations) == 0 {
		return xerrors.Errorf("no configurations")
	}
	for _, m := range append(append([]string(nil), g.Metrics...), g.CVMetric) {
		if _, err := metrics.Get(m); err != nil {
			return err
		}
	}
	if g.Folds < 2 {
		return xerrors.Errorf("hyperparam_cv_nfolds must be at least 2, got %d", g.Folds)
	}
	for _, c := range e.Configurations {
		if _, err := table.New(c.Classifier); err != nil {
			return xerrors.Errorf("configuration `%v`: %w", c.Name, err)
		}
	}
	return nil
}
