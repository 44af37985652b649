package plan

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/plans.yaml
var defaultRegistryYAML []byte

// ErrUnknownPlan is returned when a plan id is not in the registry.
var ErrUnknownPlan = errors.New("unknown plan")

// Registry holds the plans and their actions. It is immutable once loaded.
type Registry struct {
	plans   []Plan
	actions map[string][]Action
}

type registryFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Plan    `yaml:",inline"`
	Actions []Action `yaml:"actions"`
}

// DefaultRegistry returns the registry embedded in the binary.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(bytes.NewReader(defaultRegistryYAML))
}

// LoadRegistryFile reads a registry from a YAML file.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return LoadRegistry(f)
}

// LoadRegistry decodes and validates a YAML registry.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg := &Registry{actions: make(map[string][]Action, len(file.Plans))}
	for _, entry := range file.Plans {
		if entry.ID == "" {
			return nil, fmt.Errorf("plan %q: missing id", entry.Name)
		}
		if _, dup := reg.actions[entry.ID]; dup {
			return nil, fmt.Errorf("plan %q: duplicate id", entry.ID)
		}

		seen := make(map[int]bool, len(entry.Actions))
		for _, a := range entry.Actions {
			if seen[a.ID] {
				return nil, fmt.Errorf("plan %q: duplicate action id %d", entry.ID, a.ID)
			}
			seen[a.ID] = true
			if err := validateAction(a); err != nil {
				return nil, fmt.Errorf("plan %q: action %d: %w", entry.ID, a.ID, err)
			}
		}

		reg.plans = append(reg.plans, entry.Plan)
		actions := make([]Action, len(entry.Actions))
		copy(actions, entry.Actions)
		reg.actions[entry.ID] = actions
	}
	return reg, nil
}

func validateAction(a Action) error {
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	start, err := ParseDate(a.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseDate(a.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s before start date %s", a.EndDate, a.StartDate)
	}
	return nil
}

// Plans returns the plans in registry order.
func (r *Registry) Plans() []Plan {
	out := make([]Plan, len(r.plans))
	copy(out, r.plans)
	return out
}

func (r *Registry) Plan(id string) (Plan, error) {
	for _, p := range r.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
}

// Actions returns a copy of the plan's actions. Unknown plans yield an
// empty list.
func (r *Registry) Actions(planID string) []Action {
	src := r.actions[planID]
	out := make([]Action, len(src))
	copy(out, src)
	return out
}
