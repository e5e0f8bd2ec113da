// Package technology holds the registered technology profiles and the
// resolver that picks one for a generation request.
//
// Profiles are loaded once from an embedded YAML file and never modified.
package technology

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Registry is an ordered, read-only set of technology profiles.
// Order matters: it breaks ties during keyword inference.
type Registry struct {
	profiles []*domain.TechnologyProfile
	byID     map[domain.TechnologyID]*domain.TechnologyProfile
	unknown  *domain.TechnologyProfile
}

// Load parses profiles from YAML. The data must contain exactly one
// profile with id "unknown"; it is kept out of the inference set.
func Load(data []byte) (*Registry, error) {
	var profiles []*domain.TechnologyProfile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	r := &Registry{byID: make(map[domain.TechnologyID]*domain.TechnologyProfile)}
	for _, p := range profiles {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("profile %q: duplicate id", p.ID)
		}
		r.byID[p.ID] = p
		if p.ID == domain.TechnologyUnknown {
			r.unknown = p
			continue
		}
		r.profiles = append(r.profiles, p)
	}
	if r.unknown == nil {
		return nil, fmt.Errorf("profiles: missing %q profile", domain.TechnologyUnknown)
	}
	return r, nil
}

// Default returns the registry built from the embedded profiles.
// It panics if the embedded data is invalid, which tests guard against.
func Default() *Registry {
	r, err := Load(profilesYAML)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns a registered profile, including the unknown profile.
func (r *Registry) Get(id domain.TechnologyID) (*domain.TechnologyProfile, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Profiles returns the known profiles in registry order, excluding unknown.
func (r *Registry) Profiles() []*domain.TechnologyProfile {
	out := make([]*domain.TechnologyProfile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Unknown returns the generic profile.
func (r *Registry) Unknown() *domain.TechnologyProfile {
	return r.unknown
}

func validate(p *domain.TechnologyProfile) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("profile: missing id")
	}
	if p.Name == "" {
		return fmt.Errorf("profile %q: missing name", p.ID)
	}
	if len(p.Skeleton) == 0 {
		return fmt.Errorf("profile %q: empty skeleton", p.ID)
	}
	for _, f := range p.Skeleton {
		if !f.Kind.IsValid() {
			return fmt.Errorf("profile %q: file %s: invalid kind %q", p.ID, f.Path, f.Kind)
		}
		for _, src := range []string{f.Path, f.Content} {
			if _, err := template.New(f.Path).Parse(src); err != nil {
				return fmt.Errorf("profile %q: file %s: %w", p.ID, f.Path, err)
			}
		}
	}
	if _, err := template.New("instructions").Parse(p.Instructions); err != nil {
		return fmt.Errorf("profile %q: instructions: %w", p.ID, err)
	}
	for i, t := range p.Triggers {
		p.Triggers[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return nil
}
