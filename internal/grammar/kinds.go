package grammar

import "slices"

// Class is the small closed set of node roles that extraction cares about.
type Class int

const (
	ClassOther Class = iota
	ClassUnit
	ClassContainer
	ClassName
)

func (c Class) String() string {
	switch c {
	case ClassUnit:
		return "unit"
	case ClassContainer:
		return "container"
	case ClassName:
		return "name"
	default:
		return "other"
	}
}

// Kinds designates which grammar node kinds are units, containers and names.
type Kinds struct {
	// Units are extracted as a whole (e.g., "method_declaration").
	Units []string `mapstructure:"unit_kinds" yaml:"unit_kinds"`

	// Containers supply the enclosing name for nested units (e.g., "class_declaration").
	Containers []string `mapstructure:"container_kinds" yaml:"container_kinds"`

	// Names are the identifier kinds searched among a node's immediate children.
	Names []string `mapstructure:"name_kinds" yaml:"name_kinds"`
}

// Classify maps a node kind to its role. A kind listed as both unit and
// container is treated as a unit.
func (k Kinds) Classify(kind string) Class {
	switch {
	case slices.Contains(k.Units, kind):
		return ClassUnit
	case slices.Contains(k.Containers, kind):
		return ClassContainer
	case slices.Contains(k.Names, kind):
		return ClassName
	default:
		return ClassOther
	}
}

// Merge returns k with every empty field replaced by the matching field of defaults.
func (k Kinds) Merge(defaults Kinds) Kinds {
	if len(k.Units) == 0 {
		k.Units = defaults.Units
	}
	if len(k.Containers) == 0 {
		k.Containers = defaults.Containers
	}
	if len(k.Names) == 0 {
		k.Names = defaults.Names
	}
	if len(k.Names) == 0 {
		k.Names = []string{"identifier"}
	}
	return k
}
