// config.go
package qgate

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// GridConfig sizes the match grid and tunes its timing.
type GridConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Pitch   float64 `yaml:"pitch"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`

	MatchThreshold int `yaml:"match_threshold"`

	// OscillationPeriod is the number of ticks a superposition occupant
	// holds its value before flipping. OscillationJitter adds up to that
	// many extra ticks, drawn per period.
	OscillationPeriod int `yaml:"oscillation_period"`
	OscillationJitter int `yaml:"oscillation_jitter"`

	// InitialRows is how many top rows Populate fills on a new board.
	InitialRows int `yaml:"initial_rows"`
}

// AmbientConfig controls unprompted gate events.
type AmbientConfig struct {
	Enabled bool `yaml:"enabled"`
	Span    int  `yaml:"span"`
}

// RescueConfig prices crew contact: a matching state scores Score, a
// mismatch costs the ship Damage health.
type RescueConfig struct {
	Score  int `yaml:"score"`
	Damage int `yaml:"damage"`
}

type Config struct {
	// Seed pins the random source. Nil seeds from the clock.
	Seed *uint64 `yaml:"seed"`

	Grid    GridConfig        `yaml:"grid"`
	Field   *SplitFieldPlacer `yaml:"field"`
	Ambient AmbientConfig     `yaml:"ambient"`
	Rescue  RescueConfig      `yaml:"rescue"`

	TwinPolicy      TwinPolicy `yaml:"twin_policy"`
	CollisionRadius float64    `yaml:"collision_radius"`
	JournalCapacity int        `yaml:"journal_capacity"`
}

// NewConfig returns the layout the shooter and rescue boards were tuned
// for: a 10x10 grid of 40px cells on a 480x640 field at 60 ticks a second.
func NewConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Rows:              10,
			Cols:              10,
			Pitch:             40,
			OriginX:           40,
			OriginY:           50,
			MatchThreshold:    3,
			OscillationPeriod: 120,
			InitialRows:       5,
		},
		Field: &SplitFieldPlacer{
			Height: 640,
			Margin: 10,
		},
		Ambient: AmbientConfig{
			Enabled: true,
			Span:    300,
		},
		Rescue: RescueConfig{
			Score:  1,
			Damage: 20,
		},
		TwinPolicy:      TwinFlipInPlace,
		CollisionRadius: 20,
		JournalCapacity: DefaultJournalCapacity,
	}
}

// LoadConfig reads YAML over the defaults, so a file only needs the keys
// it changes.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := NewConfig()

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Rescue.Score < 0 || c.Rescue.Damage < 0 {
		return fmt.Errorf("%w: rescue score %d, damage %d", ErrInvalidDimensions, c.Rescue.Score, c.Rescue.Damage)
	}

	return c.Grid.Validate()
}

// WithSeed returns a copy of c pinned to seed.
func (c Config) WithSeed(seed uint64) *Config {
	c.Seed = &seed
	return &c
}

func (g GridConfig) Validate() error {
	switch {
	case g.Rows <= 0 || g.Cols <= 0:
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, g.Rows, g.Cols)
	case g.Pitch <= 0:
		return fmt.Errorf("%w: pitch %v", ErrInvalidDimensions, g.Pitch)
	case g.MatchThreshold <= 0:
		return fmt.Errorf("%w: match threshold %d", ErrInvalidDimensions, g.MatchThreshold)
	case g.OscillationPeriod < 0 || g.OscillationJitter < 0:
		return fmt.Errorf("%w: oscillation %d+%d", ErrInvalidDimensions, g.OscillationPeriod, g.OscillationJitter)
	case g.InitialRows < 0 || g.InitialRows > g.Rows:
		return fmt.Errorf("%w: initial rows %d", ErrInvalidDimensions, g.InitialRows)
	}

	return nil
}

func (p TwinPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *TwinPolicy) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "flip-in-place", "flip", "":
		*p = TwinFlipInPlace
	case "recreate":
		*p = TwinRecreate
	default:
		return fmt.Errorf("unknown twin policy %q at line %d", value.Value, value.Line)
	}

	return nil
}
