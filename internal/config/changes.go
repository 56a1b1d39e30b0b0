package config

import "reflect"

// ChangedSections returns the top-level config keys whose values differ
// between previous and current, in declaration order.
func ChangedSections(previous, current *Config) []string {
	if previous == nil || current == nil {
		return nil
	}

	var changed []string
	check := func(name string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			changed = append(changed, name)
		}
	}

	check("log_level", previous.LogLevel, current.LogLevel)
	check("log_file", previous.LogFile, current.LogFile)
	check("extract", previous.Extract, current.Extract)
	check("split", previous.Split, current.Split)
	check("annotate", previous.Annotate, current.Annotate)
	check("cache", previous.Cache, current.Cache)
	check("output", previous.Output, current.Output)
	check("walk", previous.Walk, current.Walk)

	return changed
}
