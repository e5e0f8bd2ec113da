package domain

import "strings"

// TechnologyID identifies a target stack.
type TechnologyID string

// Registered technologies.
const (
	TechnologySpringBoot TechnologyID = "spring_boot"
	TechnologyReact      TechnologyID = "react"
	TechnologyFlask      TechnologyID = "flask"
	TechnologyExpress    TechnologyID = "express"
	TechnologyDjango     TechnologyID = "django"
	TechnologyNextJS     TechnologyID = "nextjs"

	// TechnologyUnknown is selected when nothing in the prompt or
	// documentation matches a registered profile.
	TechnologyUnknown TechnologyID = "unknown"
)

// ParseTechnologyID normalises user input ("Spring-Boot", " react ") to an ID.
// Unrecognised values are returned as-is; callers check them against a registry.
func ParseTechnologyID(s string) TechnologyID {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_", ".", "").Replace(s)
	switch s {
	case "springboot", "spring":
		return TechnologySpringBoot
	case "next", "next_js":
		return TechnologyNextJS
	case "expressjs", "express_js":
		return TechnologyExpress
	}
	return TechnologyID(s)
}

// String returns the string representation.
func (t TechnologyID) String() string {
	return string(t)
}

// IsUnknown reports whether t is the unknown variant.
func (t TechnologyID) IsUnknown() bool {
	return t == TechnologyUnknown || t == ""
}

// SkeletonFile is one templated file of a technology's project skeleton.
// Path and Content may contain text/template placeholders.
type SkeletonFile struct {
	Path    string   `yaml:"path"`
	Kind    FileKind `yaml:"kind"`
	Content string   `yaml:"content"`
}

// TechnologyProfile describes a target stack.
// Profiles are registered at process start and never modified.
type TechnologyProfile struct {
	// ID is the stable identifier.
	ID TechnologyID `yaml:"id"`

	// Name is the display name.
	Name string `yaml:"name"`

	// Language is the primary implementation language.
	Language string `yaml:"language"`

	// BuildSystem is the build or package tool (maven, npm, pip).
	BuildSystem string `yaml:"build_system"`

	// EntryFile is the main source file of the skeleton.
	EntryFile string `yaml:"entry_file"`

	// Conventions are layout and naming rules passed to the AI strategy.
	Conventions []string `yaml:"conventions"`

	// Triggers are keywords whose presence selects this profile.
	Triggers []string `yaml:"triggers"`

	// Skeleton is the deterministic file set for template synthesis.
	Skeleton []SkeletonFile `yaml:"skeleton"`

	// Instructions are the setup steps attached to bundles of this profile.
	Instructions string `yaml:"instructions"`
}

// IsUnknown reports whether the profile is the unknown variant.
func (p *TechnologyProfile) IsUnknown() bool {
	return p == nil || p.ID.IsUnknown()
}
