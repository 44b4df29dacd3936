package models

import "fmt"

// ScopeKind is the kind of edit a prompt asks for.
type ScopeKind string

const (
	ScopeTextBased         ScopeKind = "TEXT_BASED_CHANGE"
	ScopeTailwind          ScopeKind = "TAILWIND_CHANGE"
	ScopeComponentAddition ScopeKind = "COMPONENT_ADDITION"
	ScopeTargetedNodes     ScopeKind = "TARGETED_NODES"
	ScopeFullFile          ScopeKind = "FULL_FILE"
)

func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeTextBased, ScopeTailwind, ScopeComponentAddition, ScopeTargetedNodes, ScopeFullFile:
		return true
	}
	return false
}

type ComponentType string

const (
	ComponentTypeComponent ComponentType = "component"
	ComponentTypePage      ComponentType = "page"
	ComponentTypeApp       ComponentType = "app"
)

type ComponentAdditionPayload struct {
	Name         string        `json:"name" yaml:"name"`
	Type         ComponentType `json:"type" yaml:"type"`
	NeedsRouting bool          `json:"needsRouting" yaml:"needsRouting"`
}

// ColorChange is one Tailwind color directive, e.g. primary -> purple (#800080).
type ColorChange struct {
	Type   string `json:"type" yaml:"type"`
	Color  string `json:"color" yaml:"color"`
	Hex    string `json:"hex" yaml:"hex"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

type TailwindPayload struct {
	Changes []ColorChange `json:"changes" yaml:"changes"`
}

type ExtractionMethod string

const (
	ExtractionQuoted ExtractionMethod = "quoted_pattern"
	ExtractionLLM    ExtractionMethod = "llm_extraction"
	ExtractionLoose  ExtractionMethod = "loose_pattern"
)

type TextReplacementPayload struct {
	SearchTerm      string           `json:"searchTerm" yaml:"searchTerm"`
	ReplacementTerm string           `json:"replacementTerm" yaml:"replacementTerm"`
	Confidence      float64          `json:"confidence" yaml:"confidence"`
	Method          ExtractionMethod `json:"method" yaml:"method"`
}

// ModificationScope is the classifier verdict for one request. Exactly one
// payload is set, and only for the kinds that carry one.
type ModificationScope struct {
	Kind            ScopeKind                 `json:"scope" yaml:"scope"`
	TargetFiles     []string                  `json:"targetFiles,omitempty" yaml:"targetFiles,omitempty"`
	Reasoning       string                    `json:"reasoning" yaml:"reasoning"`
	Component       *ComponentAdditionPayload `json:"component,omitempty" yaml:"component,omitempty"`
	Tailwind        *TailwindPayload          `json:"tailwind,omitempty" yaml:"tailwind,omitempty"`
	TextReplacement *TextReplacementPayload   `json:"textReplacement,omitempty" yaml:"textReplacement,omitempty"`
}

// Validate checks the kind and the payload-kind correspondence.
func (s *ModificationScope) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
	if s.Reasoning == "" {
		return fmt.Errorf("scope %s has no reasoning", s.Kind)
	}
	if (s.Component != nil) != (s.Kind == ScopeComponentAddition) {
		return fmt.Errorf("component payload does not match scope %s", s.Kind)
	}
	if (s.Tailwind != nil) != (s.Kind == ScopeTailwind) {
		return fmt.Errorf("tailwind payload does not match scope %s", s.Kind)
	}
	if (s.TextReplacement != nil) != (s.Kind == ScopeTextBased) {
		return fmt.Errorf("text payload does not match scope %s", s.Kind)
	}
	return nil
}

// SafeDefaultScope is used whenever classification cannot complete.
func SafeDefaultScope(reason string) *ModificationScope {
	if reason == "" {
		reason = "defaulted to targeted node changes"
	}
	return &ModificationScope{Kind: ScopeTargetedNodes, Reasoning: reason}
}
