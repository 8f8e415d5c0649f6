package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models shiftdesk.yml.
type Config struct {
	Hotel struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"hotel"`
	Shifts    map[int]Shift `yaml:"shifts"`
	Bootstrap Bootstrap     `yaml:"bootstrap"`
	Auth      Auth          `yaml:"auth"`
}

// Shift holds the fixed start boundary for a shift. Start and End are
// zero-padded "HH:mm" strings; lateness compares against Start
// lexicographically, which is correct only for this fixed-width form.
type Shift struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Bootstrap describes the single manager account seeded on first run when no
// users collection exists yet.
type Bootstrap struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Shift    int    `yaml:"shift"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; generate with sd init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Hotel.ID == "" {
		return fmt.Errorf("config.hotel.id is required")
	}
	if len(c.Shifts) == 0 {
		return fmt.Errorf("config.shifts is required")
	}
	for n, s := range c.Shifts {
		if n < 1 || n > 3 {
			return fmt.Errorf("config.shifts has invalid shift number %d", n)
		}
		if !validClock(s.Start) {
			return fmt.Errorf("shift %d start %q must be zero-padded HH:mm", n, s.Start)
		}
		if s.End != "" && !validClock(s.End) {
			return fmt.Errorf("shift %d end %q must be zero-padded HH:mm", n, s.End)
		}
	}
	if c.Bootstrap.Username == "" {
		return fmt.Errorf("config.bootstrap.username is required")
	}
	if c.Bootstrap.Password == "" {
		return fmt.Errorf("config.bootstrap.password is required")
	}
	if _, ok := c.Shifts[c.Bootstrap.Shift]; !ok {
		return fmt.Errorf("config.bootstrap.shift %d not defined in config.shifts", c.Bootstrap.Shift)
	}
	return nil
}

// ShiftStart returns the start boundary for a shift number, or "" when the
// shift is unknown.
func (c *Config) ShiftStart(n int) string {
	s, ok := c.Shifts[n]
	if !ok {
		return ""
	}
	return s.Start
}

func validClock(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return v[:2] < "24" && v[3:] < "60"
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "shiftdesk.yml")
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const defaultTemplate = `hotel:
  id: hotel-1
  name: "Hotel"

shifts:
  1:
    start: "07:00"
    end: "15:00"
  2:
    start: "15:00"
    end: "23:00"
  3:
    start: "23:00"
    end: "07:00"

bootstrap:
  username: hakim
  password: "123456"
  name: "Hakim Manager"
  shift: 1

auth:
  jwt_secret: ""
`
