package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownSection is returned when a section key is not one of the narrative sections.
var ErrUnknownSection = errors.New("unknown section")

// Section identifies one of the three narrative sections of a complaint.
type Section string

const (
	SectionPurpose Section = "purpose"
	SectionFacts   Section = "facts"
	SectionReasons Section = "reasons"
)

// AllSections lists the narrative sections in document order.
var AllSections = []Section{SectionPurpose, SectionFacts, SectionReasons}

// ParseSection validates a raw section key.
func ParseSection(raw string) (Section, error) {
	switch s := Section(raw); s {
	case SectionPurpose, SectionFacts, SectionReasons:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, raw)
	}
}

// Label returns the Korean heading used in the complaint.
func (s Section) Label() string {
	switch s {
	case SectionPurpose:
		return "고소취지"
	case SectionFacts:
		return "범죄사실"
	case SectionReasons:
		return "고소이유"
	default:
		return string(s)
	}
}

// Sections carries the current values of the three narrative sections.
// It is sent verbatim as context to regenerate and chat requests.
type Sections struct {
	Purpose string `json:"purpose"`
	Facts   string `json:"facts"`
	Reasons string `json:"reasons"`
}

// Get returns the value of one section.
func (s Sections) Get(section Section) string {
	switch section {
	case SectionPurpose:
		return s.Purpose
	case SectionFacts:
		return s.Facts
	case SectionReasons:
		return s.Reasons
	default:
		return ""
	}
}
