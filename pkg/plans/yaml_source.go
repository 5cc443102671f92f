package plans

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source that reads plan definitions from a YAML
// file. The file holds a list of plans:
//
//	plans:
//	  - name: Basic
//	    product_id: muscleai.basic.monthly
//	    monthly_limit: 5
//
// The file is read on every Load so a Catalog rebuild picks up edits.
func NewYAMLSource(path string) Source {
	if path == "" {
		panic("plans: YAML source path cannot be empty")
	}
	return &yamlSource{path: path}
}

type yamlPlansFile struct {
	Plans []Plan `yaml:"plans"`
}

func (s *yamlSource) Load(ctx context.Context) (map[PlanName]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file yamlPlansFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if len(file.Plans) == 0 {
		return nil, errors.Join(ErrFailedToLoadPlans,
			fmt.Errorf("no plans defined in %s", s.path))
	}

	plans := make(map[PlanName]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		plans[plan.Name] = plan
	}
	return plans, nil
}
