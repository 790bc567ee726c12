package placement

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Priority is the ordinal strength of a Device. A Device of higher Priority
// displaces an assigned Device of strictly lower Priority. Ties never displace.
type Priority int

const (
	MIN Priority = iota + 1
	MIN_MED
	MED
	MED_MAX
	MAX
)

// Priorities enumerates all valid Priority levels, weakest first.
var Priorities = []Priority{MIN, MIN_MED, MED, MED_MAX, MAX}

var priorityName = map[Priority]string{
	MIN:     "MIN",
	MIN_MED: "MIN_MED",
	MED:     "MED",
	MED_MAX: "MED_MAX",
	MAX:     "MAX",
}

// Validate returns an error if the Priority is not one of Priorities.
func (p Priority) Validate() error {
	if p < MIN || p > MAX {
		return fmt.Errorf("invalid Priority (%d; expected %d <= value <= %d)", int(p), MIN, MAX)
	}
	return nil
}

func (p Priority) String() string {
	if s, ok := priorityName[p]; ok {
		return s
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority maps a Priority name (case-insensitive) to its Priority.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityName {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid Priority (options are %v)", s, Priorities)
}

// RandomPriority draws a Priority uniformly from Priorities.
func RandomPriority(rng *rand.Rand) Priority {
	return Priorities[rng.IntN(len(Priorities))]
}

// MarshalYAML maps the Priority to its YAML name.
func (p Priority) MarshalYAML() (interface{}, error) {
	if s, ok := priorityName[p]; ok {
		return s, nil
	}
	return int(p), nil
}

// UnmarshalYAML maps a YAML integer directly to a Priority, or a YAML string
// to the Priority having that name.
func (p *Priority) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var i int
	if err := unmarshal(&i); err == nil {
		*p = Priority(i)
		return p.Validate()
	}
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	var pp, err = ParsePriority(str)
	if err != nil {
		return err
	}
	*p = pp
	return nil
}
