package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saruman9/sleigh-preprocessor/internal/preprocessor"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "defs.toml", `
compatible = true
max_include_depth = 8
extension = ".out"

[definitions]
ENDIAN = "big"
SIZE = 4
DEBUG = true
EMPTY = ""
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.True(t, c.Compatible)
	assert.Equal(t, 8, c.MaxIncludeDepth)
	assert.Equal(t, "out", c.Extension)
	assert.Equal(t, preprocessor.Definitions{
		"ENDIAN": "big",
		"SIZE":   "4",
		"DEBUG":  "true",
		"EMPTY":  "",
	}, c.Definitions)
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "defs.yaml", `
compatible: false
definitions:
  ENDIAN: little
  SIZE: 8
  NOTHING:
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.False(t, c.Compatible)
	assert.Equal(t, 0, c.MaxIncludeDepth)
	assert.Equal(t, DefaultExtension, c.Extension)
	assert.Equal(t, preprocessor.Definitions{
		"ENDIAN":  "little",
		"SIZE":    "8",
		"NOTHING": "",
	}, c.Definitions)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown format", "defs.json", `{}`},
		{"bad toml", "defs.toml", `compatible = `},
		{"bad yaml", "defs.yml", "definitions: [a"},
		{"bad name", "defs.toml", "[definitions]\n\"A-B\" = \"x\"\n"},
		{"nested value", "defs.yaml", "definitions:\n  A:\n    B: c\n"},
		{"negative depth", "defs.toml", "max_include_depth = -1\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseDefine(t *testing.T) {
	testCases := []struct {
		in, name, value string
	}{
		{"A=1", "A", "1"},
		{"A", "A", ""},
		{"A=", "A", ""},
		{"A=b=c", "A", "b=c"},
		{"PATH=/x y", "PATH", "/x y"},
	}
	for _, tc := range testCases {
		name, value := ParseDefine(tc.in)
		assert.Equal(t, tc.name, name, tc.in)
		assert.Equal(t, tc.value, value, tc.in)
	}
}

func TestDefinesOverrideFile(t *testing.T) {
	c, err := Load(writeFile(t, "defs.toml", "[definitions]\nENDIAN = \"big\"\nKEEP = \"1\"\n"))
	require.NoError(t, err)

	var d Defines
	require.NoError(t, d.Set("ENDIAN=little"))
	require.NoError(t, d.Set("NEW"))
	assert.Error(t, d.Set("bad name=1"))
	assert.Equal(t, "ENDIAN=little,NEW", d.String())

	require.NoError(t, c.Apply(d))
	assert.Equal(t, preprocessor.Definitions{"ENDIAN": "little", "KEEP": "1", "NEW": ""}, c.Definitions)
}

func TestOptionsAndOutputPath(t *testing.T) {
	c := Default()
	c.Compatible = true
	c.MaxIncludeDepth = 3
	assert.Equal(t, preprocessor.Options{Compatible: true, MaxIncludeDepth: 3}, c.Options())

	assert.Equal(t, filepath.Join("dir", "x86.sla"), c.OutputPath(filepath.Join("dir", "x86.slaspec")))
	c.Extension = ""
	assert.Equal(t, "noext.sla", c.OutputPath("noext"))
}
