// Package config loads preprocessor settings and initial definitions from
// TOML or YAML files and from NAME=value command-line definitions.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/saruman9/sleigh-preprocessor/internal/preprocessor"
)

// DefaultExtension is the extension of the output file written next to the
// source file.
const DefaultExtension = "sla"

type Config struct {
	Compatible      bool
	MaxIncludeDepth int
	Extension       string
	Definitions     preprocessor.Definitions
}

// file mirrors the on-disk layout:
//
//	compatible = true
//	max_include_depth = 32
//	extension = "sla"
//
//	[definitions]
//	ENDIAN = "big"
type file struct {
	Compatible      *bool                  `toml:"compatible" yaml:"compatible"`
	MaxIncludeDepth *int                   `toml:"max_include_depth" yaml:"max_include_depth"`
	Extension       *string                `toml:"extension" yaml:"extension"`
	Definitions     map[string]interface{} `toml:"definitions" yaml:"definitions"`
}

var nameRe = regexp.MustCompile(`^[0-9A-Za-z_]+$`)

func Default() *Config {
	return &Config{
		Extension:   DefaultExtension,
		Definitions: preprocessor.Definitions{},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file on top of Default.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.merge(path); err != nil {
		return nil, err
	}
	return c, nil
}

// merge reads a settings file into c. Settings present in the file replace
// those in c; definitions are added to c's table.
func (c *Config) merge(path string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(bs)).Decode(&f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bs, &f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported config format %q", path, ext)
	}

	if f.Compatible != nil {
		c.Compatible = *f.Compatible
	}
	if f.MaxIncludeDepth != nil {
		if *f.MaxIncludeDepth < 0 {
			return fmt.Errorf("%s: max_include_depth must not be negative", path)
		}
		c.MaxIncludeDepth = *f.MaxIncludeDepth
	}
	if f.Extension != nil {
		c.Extension = strings.TrimPrefix(*f.Extension, ".")
	}

	names := make([]string, 0, len(f.Definitions))
	for name := range f.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, err := scalar(f.Definitions[name])
		if err != nil {
			return fmt.Errorf("%s: definition %q: %w", path, name, err)
		}
		if err := c.set(name, value); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func scalar(v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("value must be a string, number or boolean, got %T", v)
}

// Define adds a NAME=value definition, as given to -D.
func (c *Config) Define(s string) error {
	name, value := ParseDefine(s)
	return c.set(name, value)
}

func (c *Config) set(name, value string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid definition name %q", name)
	}
	if c.Definitions == nil {
		c.Definitions = preprocessor.Definitions{}
	}
	c.Definitions[name] = value
	return nil
}

// ParseDefine splits NAME=value. A bare NAME defines the empty string, like
// "@define NAME".
func ParseDefine(s string) (name, value string) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// Options converts c for the preprocessor.
func (c *Config) Options() preprocessor.Options {
	return preprocessor.Options{
		Compatible:      c.Compatible,
		MaxIncludeDepth: c.MaxIncludeDepth,
	}
}

// OutputPath is the sibling of source with c's extension.
func (c *Config) OutputPath(source string) string {
	ext := c.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + "." + ext
}

// Defines collects repeated -D flags; it implements flag.Value. Names are
// checked as they are set.
type Defines []string

func (d *Defines) String() string {
	if d == nil {
		return ""
	}
	return strings.Join(*d, ",")
}

func (d *Defines) Set(s string) error {
	if name, _ := ParseDefine(s); !nameRe.MatchString(name) {
		return fmt.Errorf("invalid definition name %q", name)
	}
	*d = append(*d, s)
	return nil
}

// Apply adds d to c in order, later definitions winning.
func (c *Config) Apply(d Defines) error {
	for _, s := range d {
		if err := c.Define(s); err != nil {
			return err
		}
	}
	return nil
}
