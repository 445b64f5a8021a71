package screen

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	Name        string `yaml:"name"`
	Where       string `yaml:"where"`
	Description string `yaml:"description,omitempty"`
}

type file struct {
	Screens []fileEntry `yaml:"screens"`
}

// LoadFile reads a YAML document of named screens:
//
//	screens:
//	  - name: breakout
//	    where: close > high * 0.99
//	    description: closed near the session high
func LoadFile(path string) ([]*Screen, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	screens, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return screens, nil
}

// Parse compiles every screen of a YAML document. Names must be unique.
func Parse(data []byte) ([]*Screen, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Screens) == 0 {
		return nil, errors.New("no screens defined")
	}

	seen := make(map[string]bool, len(f.Screens))
	screens := make([]*Screen, 0, len(f.Screens))
	for i, e := range f.Screens {
		if e.Name == "" {
			return nil, fmt.Errorf("screen #%d has no name", i+1)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate screen %q", e.Name)
		}
		seen[e.Name] = true

		s, err := Compile(e.Name, e.Where)
		if err != nil {
			return nil, err
		}
		s.Description = e.Description
		screens = append(screens, s)
	}
	return screens, nil
}
