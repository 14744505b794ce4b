package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/glint/pkg/format"
)

// Config holds all configuration options for glint.
type Config struct {
	// Formatter defaults
	Format FormatConfig `koanf:"format" toml:"format"`

	// Diagnostic and metric thresholds
	Rules RulesConfig `koanf:"rules" toml:"rules"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// FormatConfig mirrors format.Options.
type FormatConfig struct {
	IndentSize         int  `koanf:"indent_size" toml:"indent_size"`
	UseTabs            bool `koanf:"use_tabs" toml:"use_tabs"`
	MaxLineLength      int  `koanf:"max_line_length" toml:"max_line_length"`
	PreserveBlankLines bool `koanf:"preserve_blank_lines" toml:"preserve_blank_lines"`
}

// RulesConfig tunes the diagnostics and metrics.
type RulesConfig struct {
	LongLineLength int      `koanf:"long_line_length" toml:"long_line_length"`
	MaxNesting     int      `koanf:"max_nesting" toml:"max_nesting"`
	Disabled       []string `koanf:"disabled" toml:"disabled"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// OutputFormats lists the accepted values of output.format.
var OutputFormats = []string{"text", "json", "markdown", "toon"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	opts := format.DefaultOptions()
	return &Config{
		Format: FormatConfig{
			IndentSize:         opts.IndentSize,
			UseTabs:            opts.UseTabs,
			MaxLineLength:      opts.MaxLineLength,
			PreserveBlankLines: opts.PreserveBlankLines,
		},
		Rules: RulesConfig{
			LongLineLength: 100,
			MaxNesting:     3,
			Disabled:       []string{},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
				"*.map",
			},
			Extensions: []string{
				".lock",
				".sum",
				".png",
				".jpg",
				".gif",
				".ico",
				".pdf",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".glint",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".glint/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// parserFor picks the koanf parser from the file extension. Unknown
// extensions are read as TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order by Find.
var configNames = []string{
	"glint.toml",
	"glint.yaml",
	"glint.yml",
	"glint.json",
	".glint.toml",
	".glint.yaml",
	".glint.yml",
	".glint.json",
}

// Find returns the first config file present in dir or dir/.glint, or ""
// when there is none.
func Find(dir string) string {
	for _, sub := range []string{dir, filepath.Join(dir, ".glint")} {
		for _, name := range configNames {
			path := filepath.Join(sub, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.Format.IndentSize < 0 || c.Format.IndentSize > 10 {
		problems = append(problems, fmt.Sprintf("format.indent_size must be between 0 and 10, got %d", c.Format.IndentSize))
	}
	if c.Format.MaxLineLength <= 0 {
		problems = append(problems, fmt.Sprintf("format.max_line_length must be positive, got %d", c.Format.MaxLineLength))
	}
	if c.Rules.LongLineLength <= 0 {
		problems = append(problems, fmt.Sprintf("rules.long_line_length must be positive, got %d", c.Rules.LongLineLength))
	}
	if c.Rules.MaxNesting <= 0 {
		problems = append(problems, fmt.Sprintf("rules.max_nesting must be positive, got %d", c.Rules.MaxNesting))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, fmt.Sprintf("cache.ttl must not be negative, got %d", c.Cache.TTL))
	}
	if !validOutputFormat(c.Output.Format) {
		problems = append(problems, fmt.Sprintf("output.format must be one of %s, got %q",
			strings.Join(OutputFormats, ", "), c.Output.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validOutputFormat(f string) bool {
	for _, known := range OutputFormats {
		if f == known {
			return true
		}
	}
	return false
}

// FormatOptions returns the formatter options this config selects.
func (c *Config) FormatOptions() format.Options {
	return format.Options{
		IndentSize:         c.Format.IndentSize,
		UseTabs:            c.Format.UseTabs,
		MaxLineLength:      c.Format.MaxLineLength,
		PreserveBlankLines: c.Format.PreserveBlankLines,
	}
}

// IsRuleDisabled reports whether diagnostics of kind are switched off.
func (c *Config) IsRuleDisabled(kind string) bool {
	for _, d := range c.Rules.Disabled {
		if d == kind {
			return true
		}
	}
	return false
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excluded := range c.Exclude.Extensions {
		if strings.EqualFold(ext, excluded) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
