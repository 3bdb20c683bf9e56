package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	slaspec = `# x86 test
@include "defs.sinc"
@ifdef SIZE
define space ram size=$(SIZE);
@else
define space ram size=4;
@endif
`
	include = `@define ENDIAN "little"
`
	// the comment line is blanked and the include line is replaced by the
	// included text
	compatOut = `
#@define ENDIAN "little"
#@ifdef SIZE
define space ram size=8;
#@else
#define space ram size=4;
#@endif
`
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x86.slaspec"), []byte(slaspec), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "defs.sinc"), []byte(include), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestProcessToSibling(t *testing.T) {
	dir := setup(t)
	source := filepath.Join(dir, "x86.slaspec")

	o, err := parseArgs([]string{"-compat", "-D", "SIZE=8", source}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	out, err := outputPath(o, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "x86.sla"); out != want {
		t.Fatalf("got output path %s; want %s", out, want)
	}

	res, err := preprocess(cfg, o.source, out, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != compatOut {
		t.Errorf("got: %q; want: %q", got, compatOut)
	}
	if len(res.Files) != 2 {
		t.Errorf("got files %v", res.Files)
	}
	if cfg.Definitions["ENDIAN"] != "" {
		t.Error("run leaked definitions into the configuration")
	}
}

func TestProcessToStdoutWithDump(t *testing.T) {
	dir := setup(t)
	source := filepath.Join(dir, "x86.slaspec")

	o, err := parseArgs([]string{"-o", "-", "-dump", source}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	out, err := outputPath(o, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var stdout, dump bytes.Buffer
	if _, err := preprocess(cfg, o.source, out, &stdout, &dump, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "\x08x86.slaspec###1\x08") {
		t.Errorf("missing position marker in %q", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "x86.sla")); !os.IsNotExist(err) {
		t.Error("output file written although -o - was given")
	}

	wantDump := "# definitions\n" +
		"ENDIAN=\"little\"\n" +
		"# locations\n" +
		source + ":1(1)\n" +
		filepath.Join(dir, "defs.sinc") + ":1(2)\n" +
		source + ":3(3)\n"
	if dump.String() != wantDump {
		t.Errorf("got dump:\n%s\nwant:\n%s", dump.String(), wantDump)
	}
}

func TestConfigLayering(t *testing.T) {
	dir := setup(t)
	defs := filepath.Join(dir, "defs.toml")
	content := "compatible = true\nextension = \"out\"\n[definitions]\nSIZE = 2\nENDIAN = \"big\"\n"
	if err := os.WriteFile(defs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	o, err := parseArgs([]string{"-defs", defs, "-compat=false", "-D", "SIZE=16", "x86.slaspec"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compatible {
		t.Error("-compat=false should override the file")
	}
	if cfg.Extension != "out" {
		t.Errorf("got extension %q; -ext was not given so the file should win", cfg.Extension)
	}
	if cfg.Definitions["SIZE"] != "16" || cfg.Definitions["ENDIAN"] != "big" {
		t.Errorf("got definitions %v", cfg.Definitions)
	}
}

func TestBadArgs(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"a.slaspec", "b.slaspec"},
		{"-D", "BAD-NAME", "a.slaspec"},
		{"-nope", "a.slaspec"},
	} {
		if _, err := parseArgs(args, &bytes.Buffer{}); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}

	o, err := parseArgs([]string{"-ext", "slaspec", "x86.slaspec"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := outputPath(o, cfg); err == nil {
		t.Error("expected error when output would overwrite input")
	}
}

func TestProcessError(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "bad.slaspec")
	if err := os.WriteFile(source, []byte("@endif\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := parseArgs([]string{source}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatal(err)
	}
	out, _ := outputPath(o, cfg)
	res, err := preprocess(cfg, o.source, out, nil, nil, nil)
	if err == nil || res != nil {
		t.Fatalf("got %v, %v; want error", res, err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output written for a failed run")
	}
}
