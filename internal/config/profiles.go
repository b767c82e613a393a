package config

import (
	"fmt"
	"regexp"
	"sort"

	sigsyaml "sigs.k8s.io/yaml"
)

// Profile is a named set of encoding settings declared in the config file
// (.toon.yaml) under the profiles key.
type Profile struct {
	// Indent overrides the number of spaces per nesting level.
	Indent *int `json:"indent,omitempty"`

	// Delimiter overrides the field delimiter (character or name).
	Delimiter string `json:"delimiter,omitempty"`

	// LengthMarker overrides the array length marker.
	LengthMarker string `json:"lengthMarker,omitempty"`
}

// profileNamePattern validates profile names.
// Must start with a letter and contain only letters, digits, hyphens, and underscores.
var profileNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ParseProfiles parses the profiles section from raw config file bytes.
// A file without profiles yields an empty, non-nil map.
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var raw struct {
		Profiles map[string]Profile `json:"profiles,omitempty"`
	}

	if err := sigsyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	if raw.Profiles == nil {
		raw.Profiles = map[string]Profile{}
	}

	for name, p := range raw.Profiles {
		if err := p.validate(name); err != nil {
			return nil, err
		}
	}

	return raw.Profiles, nil
}

func (p Profile) validate(name string) error {
	if !profileNamePattern.MatchString(name) {
		return fmt.Errorf("profiles[%s]: name is invalid (must match %s)", name, profileNamePattern.String())
	}

	if p.Indent != nil && *p.Indent < 0 {
		return fmt.Errorf("profiles[%s]: indent must not be negative, got %d", name, *p.Indent)
	}

	if p.Delimiter != "" && len([]rune(ParseDelimiter(p.Delimiter))) != 1 {
		return fmt.Errorf("profiles[%s]: delimiter %q must be a single character or one of comma, tab, pipe", name, p.Delimiter)
	}

	if len([]rune(p.LengthMarker)) > 1 {
		return fmt.Errorf("profiles[%s]: lengthMarker %q must be a single character", name, p.LengthMarker)
	}

	return nil
}

func profileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
