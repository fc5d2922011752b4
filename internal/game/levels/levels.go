// Package levels loads named board layouts.
//
// Level files are YAML. JSON files of the form
// {"levels": [{"name": ..., "board": [...]}]} load unchanged.
package levels

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/mapgen"
	"gopkg.in/yaml.v3"
)

var (
	ErrLevelNotFound = errors.New("board level not found")
	ErrDuplicate     = errors.New("duplicate board level")
)

// DefaultLevel is the level used when none is configured
const DefaultLevel = "#EB00A2"

//go:embed levels.yaml
var defaultLevels []byte

// Level is one named board layout
type Level struct {
	Name   string   `yaml:"name" json:"name"`
	Width  int      `yaml:"width" json:"width"`
	Height int      `yaml:"height" json:"height"`
	Board  []string `yaml:"board" json:"board"`
}

// Cells joins the board rows into the flat marker sequence, dropping whitespace
func (l Level) Cells() string {
	return strings.Join(strings.Fields(strings.Join(l.Board, " ")), "")
}

// MapConfig converts the level into a generator config with the given starting units
func (l Level) MapConfig(teamUnits, neutralUnits int) mapgen.MapConfig {
	cfg := mapgen.DefaultMapConfig(l.Cells(), l.Width)
	if l.Height > 0 {
		cfg.Height = l.Height
	}
	cfg.TeamUnits = teamUnits
	cfg.NeutralUnits = neutralUnits
	return cfg
}

type levelFile struct {
	Levels []Level `yaml:"levels"`
}

// Registry holds levels by name
type Registry struct {
	levels map[string]Level
}

// Parse builds a registry from YAML or JSON level data
func Parse(data []byte) (*Registry, error) {
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding levels: %w", err)
	}
	r := &Registry{levels: make(map[string]Level, len(f.Levels))}
	for _, l := range f.Levels {
		if _, ok := r.levels[l.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, l.Name)
		}
		r.levels[l.Name] = l
	}
	return r, nil
}

// Load reads a level file. An empty path loads the embedded stock levels.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultLevels)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	return Parse(data)
}

// Get returns the named level. There is no fallback board.
func (r *Registry) Get(name string) (Level, error) {
	l, ok := r.levels[name]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrLevelNotFound, name)
	}
	return l, nil
}

// Names lists the registered levels in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.levels))
	for n := range r.levels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
