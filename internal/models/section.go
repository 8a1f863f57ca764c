// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Section is the category tag attached to a card for grouping on listing
// views. The set is fixed; anything outside it normalizes to SectionGeneral.
type Section string

const (
	SectionGeneral   Section = "general"
	SectionResearch  Section = "research"
	SectionSignals   Section = "signals"
	SectionEducation Section = "education"
)

// Sections lists all valid section tags in display order.
var Sections = []Section{
	SectionGeneral,
	SectionResearch,
	SectionSignals,
	SectionEducation,
}

// Valid reports whether s is one of the fixed section tags.
func (s Section) Valid() bool {
	switch s {
	case SectionGeneral, SectionResearch, SectionSignals, SectionEducation:
		return true
	}
	return false
}

// Normalize returns s unchanged when valid, otherwise the canonical
// default SectionGeneral. Absent sections on old records normalize too.
func (s Section) Normalize() Section {
	if s.Valid() {
		return s
	}
	return SectionGeneral
}

// Label returns the human-readable name shown in listings and forms.
func (s Section) Label() string {
	switch s {
	case SectionResearch:
		return "Research"
	case SectionSignals:
		return "Signals"
	case SectionEducation:
		return "Education"
	default:
		return "General"
	}
}
