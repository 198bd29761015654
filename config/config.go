// Package config loads the TOML settings of the aegis tool
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/Heartless-Veteran/Aegis/frontend"
)

// These settings ensure that TOML keys use the same names as Go struct fields
// and that unknown keys are rejected instead of silently ignored
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the whole configuration file
type Config struct {
	Compiler CompilerConfig
	Output   OutputConfig
	UI       UIConfig
}

// CompilerConfig bounds the work done on a single file
type CompilerConfig struct {
	MaxDiagnostics int
	MaxDepth       int
}

// OutputConfig controls how diagnostics are printed
type OutputConfig struct {
	// Color is "auto", "always" or "never". Auto colors output written to a
	// terminal
	Color string
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// UIConfig extends the built-in UI element schema
type UIConfig struct {
	Elements map[string]ElementConfig `toml:",omitempty"`
}

// ElementConfig declares the properties and events of one UI element. An
// element that already exists keeps its built-in entries
type ElementConfig struct {
	Properties []string `toml:",omitempty"`
	Events     []string `toml:",omitempty"`
}

// Defaults are the settings used when no file overrides them
var Defaults = Config{
	Compiler: CompilerConfig{
		MaxDiagnostics: 100,
		MaxDepth:       frontend.DefaultMaxDepth,
	},
	Output: OutputConfig{
		Color: ColorAuto,
	},
}

// Load reads a configuration file over the defaults
func Load(file string) (Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(bufio.NewReader(f))
	// Add file name to errors that have a line number
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}

// Decode reads configuration from r over the defaults
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults
	if err := tomlSettings.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Compiler.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("Compiler.MaxDiagnostics must not be negative, got %d", cfg.Compiler.MaxDiagnostics)
	}

	if cfg.Compiler.MaxDepth < 0 {
		return Config{}, fmt.Errorf("Compiler.MaxDepth must not be negative, got %d", cfg.Compiler.MaxDepth)
	}

	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return Config{}, fmt.Errorf("Output.Color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, cfg.Output.Color)
	}

	return cfg, nil
}

// Marshal renders the configuration as TOML
func (c Config) Marshal() ([]byte, error) {
	return tomlSettings.Marshal(&c)
}

// Schema returns the default UI schema extended with the configured elements
func (c Config) Schema() *frontend.UISchema {
	schema := frontend.DefaultUISchema()
	for name, elem := range c.UI.Elements {
		schema.Define(name, elem.Properties, elem.Events)
	}
	return schema
}

// Options converts the configuration into compiler options
func (c Config) Options() frontend.Options {
	return frontend.Options{
		MaxDiagnostics: c.Compiler.MaxDiagnostics,
		MaxDepth:       c.Compiler.MaxDepth,
		UI:             c.Schema(),
	}
}
