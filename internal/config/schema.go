package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/farmacob/cobtool/internal/layout"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/templates"
)

// Config holds cobtool configuration.
// Stored at: ~/.cobtool/config.yaml
type Config struct {
	Server    ServerCfg    `mapstructure:"server" yaml:"server"`
	Templates TemplatesCfg `mapstructure:"templates" yaml:"templates"`
	Letters   LettersCfg   `mapstructure:"letters" yaml:"letters"`
	Layout    LayoutCfg    `mapstructure:"layout" yaml:"layout"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// TemplatesCfg configures where letter templates are read from.
// Dir wins over BaseURL when both are set.
type TemplatesCfg struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`           // supports ${ENV_VAR} syntax
	Dir          string `mapstructure:"dir" yaml:"dir"`                     // local template tree
	FetchTimeout string `mapstructure:"fetch_timeout" yaml:"fetch_timeout"` // Go duration, e.g. "15s"
}

// LettersCfg configures letter rendering.
type LettersCfg struct {
	City        string `mapstructure:"city" yaml:"city"`
	Timezone    string `mapstructure:"timezone" yaml:"timezone"`
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder"` // company placeholder printed on the templates
	// Operators adds to or replaces the built-in operator spellings.
	Operators map[string][]string `mapstructure:"operators" yaml:"operators,omitempty"`
}

// LayoutCfg tunes text run extraction.
type LayoutCfg struct {
	LineTolerance float64 `mapstructure:"line_tolerance" yaml:"line_tolerance"`
	GapFactor     float64 `mapstructure:"gap_factor" yaml:"gap_factor"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	opts := layout.DefaultOptions()
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Templates: TemplatesCfg{
			BaseURL:      "${COBTOOL_TEMPLATES_URL}",
			FetchTimeout: templates.DefaultFetchTimeout.String(),
		},
		Letters: LettersCfg{
			City:        "Toledo",
			Timezone:    "America/Sao_Paulo",
			Placeholder: letters.DefaultPlaceholder,
		},
		Layout: LayoutCfg{
			LineTolerance: opts.LineTolerance,
			GapFactor:     opts.GapFactor,
		},
	}
}

// Timeout returns the parsed fetch timeout, or the default when unset.
func (t TemplatesCfg) Timeout() (time.Duration, error) {
	if t.FetchTimeout == "" {
		return templates.DefaultFetchTimeout, nil
	}
	d, err := time.ParseDuration(t.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid templates.fetch_timeout %q: %w", t.FetchTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("templates.fetch_timeout must be positive, got %s", d)
	}
	return d, nil
}

// Source builds the template source. ${ENV_VAR} references are resolved first.
func (t TemplatesCfg) Source() (templates.Source, error) {
	if dir := ResolveEnvVars(t.Dir); dir != "" {
		return templates.DirSource{Root: dir}, nil
	}
	base := ResolveEnvVars(t.BaseURL)
	if base == "" {
		return nil, errors.New("no template source configured: set templates.dir or templates.base_url")
	}
	timeout, err := t.Timeout()
	if err != nil {
		return nil, err
	}
	return templates.NewHTTPSource(base, timeout), nil
}

// OperatorTable returns the built-in operator table merged with configured
// entries. Keys are normalized the same way requests are.
func (l LettersCfg) OperatorTable() map[string][]string {
	ops := templates.DefaultOperators()
	for name, spellings := range l.Operators {
		if len(spellings) == 0 {
			continue
		}
		ops[templates.OperatorKey(name)] = spellings
	}
	return ops
}

// Location loads the configured timezone.
func (l LettersCfg) Location() (*time.Location, error) {
	tz := l.Timezone
	if tz == "" {
		tz = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid letters.timezone %q: %w", tz, err)
	}
	return loc, nil
}

// WithDefaultTemplatesDir returns a copy of c that reads templates from dir
// when neither templates.dir nor templates.base_url resolves to a value.
func (c Config) WithDefaultTemplatesDir(dir string) Config {
	if ResolveEnvVars(c.Templates.Dir) == "" && ResolveEnvVars(c.Templates.BaseURL) == "" {
		c.Templates.Dir = dir
	}
	return c
}

// LayoutOptions converts the layout section to extraction options.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Scale:         1,
		LineTolerance: c.Layout.LineTolerance,
		GapFactor:     c.Layout.GapFactor,
	}
}

// GeneratorConfig converts the config to letters.Config. The caller sets
// the logger.
func (c *Config) GeneratorConfig() (letters.Config, error) {
	src, err := c.Templates.Source()
	if err != nil {
		return letters.Config{}, err
	}
	loc, err := c.Letters.Location()
	if err != nil {
		return letters.Config{}, err
	}
	cfg := letters.Config{
		Templates: src,
		Layout:    c.LayoutOptions(),
		City:      c.Letters.City,
		Location:  loc,
		Operators: c.Letters.OperatorTable(),
	}
	if p := c.Letters.Placeholder; p != "" && p != letters.DefaultPlaceholder {
		notification := letters.NotificationProfile(p)
		collection := letters.CollectionProfile(p)
		cfg.Notification = &notification
		cfg.Collection = &collection
	}
	return cfg, nil
}
