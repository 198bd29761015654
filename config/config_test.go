package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Defaults.Compiler, cfg.Compiler)
	assert.Equal(t, ColorAuto, cfg.Output.Color)
}

func TestDecodeOverrides(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[Compiler]
MaxDiagnostics = 5

[Output]
Color = "never"

[UI.Elements.chart]
Properties = ["series", "title"]
Events = ["when_hovered"]
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Compiler.MaxDiagnostics)
	assert.Equal(t, Defaults.Compiler.MaxDepth, cfg.Compiler.MaxDepth)
	assert.Equal(t, ColorNever, cfg.Output.Color)

	opts := cfg.Options()
	assert.Equal(t, 5, opts.MaxDiagnostics)

	spec, ok := opts.UI.Element("chart")
	require.True(t, ok)
	assert.True(t, opts.UI.HasProperty(spec, "series"))
	assert.True(t, spec.Events.Contains("on_hovered"))

	_, ok = opts.UI.Element("button")
	assert.True(t, ok, "built-in elements are kept")
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("[Compiler]\nMaxErrors = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxErrors")
}

func TestDecodeRejectsNegativeLimits(t *testing.T) {
	_, err := Decode(strings.NewReader("[Compiler]\nMaxDepth = -1\n"))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownColorMode(t *testing.T) {
	_, err := Decode(strings.NewReader("[Output]\nColor = \"sometimes\"\n"))
	assert.Error(t, err)
}

func TestLoadAddsFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Compiler]\nMaxDepth = \"deep\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), path+", "), err.Error())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Defaults
	cfg.Compiler.MaxDiagnostics = 7

	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "MaxDiagnostics = 7")

	back, err := Decode(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Compiler, back.Compiler)
}
