/*
sleigh-preprocessor expands the @-directives of a SLEIGH specification file.
Usage is

	sleigh-preprocessor [flags] <file>

The output is written next to <file> with the extension replaced (default
.sla), to the file named by -o, or to standard output with -o -.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"golang.org/x/term"

	sleigh "github.com/saruman9/sleigh-preprocessor"
	"github.com/saruman9/sleigh-preprocessor/internal/config"
	"github.com/saruman9/sleigh-preprocessor/internal/watch"
)

type options struct {
	defines  config.Defines
	defsFile string
	out      string
	ext      string
	maxDepth int
	compat   bool
	dump     bool
	watch    bool
	verbose  bool

	source string
	set    map[string]bool
}

func parseArgs(args []string, output io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("sleigh-preprocessor", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage is  sleigh-preprocessor [flags] <file>")
		fs.PrintDefaults()
	}
	fs.Var(&o.defines, "D", "define `NAME[=value]`, may be repeated; overrides -defs")
	fs.StringVar(&o.defsFile, "defs", "", "settings and definitions `file` (.toml, .yaml or .yml)")
	fs.StringVar(&o.out, "o", "", "output `file`, - for standard output; default is the input file with -ext")
	fs.StringVar(&o.ext, "ext", config.DefaultExtension, "output file extension")
	fs.IntVar(&o.maxDepth, "max-depth", 0, "maximum @include nesting, 0 for the default")
	fs.BoolVar(&o.compat, "compat", false, "write plain text without position and expansion markers")
	fs.BoolVar(&o.dump, "dump", false, "print the final definitions and the location table to stderr")
	fs.BoolVar(&o.watch, "watch", false, "run again whenever an input file changes")
	fs.BoolVar(&o.verbose, "v", false, "log every preprocessing decision")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one input file")
	}
	o.source = fs.Arg(0)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// loadConfig layers the settings file, then explicitly given flags, then -D.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.defsFile != "" {
		var err error
		if cfg, err = config.Load(o.defsFile); err != nil {
			return nil, err
		}
	}
	if o.set["compat"] {
		cfg.Compatible = o.compat
	}
	if o.set["max-depth"] {
		cfg.MaxIncludeDepth = o.maxDepth
	}
	if o.set["ext"] {
		cfg.Extension = o.ext
	}
	if err := cfg.Apply(o.defines); err != nil {
		return nil, err
	}
	return cfg, nil
}

func outputPath(o *options, cfg *config.Config) (string, error) {
	out := o.out
	if out == "" {
		out = cfg.OutputPath(o.source)
	}
	if out != "-" && filepath.Clean(out) == filepath.Clean(o.source) {
		return "", fmt.Errorf("output file %s would overwrite the input", out)
	}
	return out, nil
}

// preprocess runs one pass and writes its output. The result is returned
// even on a write error so that watch mode can keep following the inputs.
func preprocess(cfg *config.Config, source, out string, stdout, dump io.Writer, logger *slog.Logger) (*sleigh.Result, error) {
	opts := cfg.Options()
	opts.Logger = logger
	res, err := sleigh.Process(source, maps.Clone(cfg.Definitions), opts)
	if err != nil {
		return nil, err
	}

	if out == "-" {
		_, err = io.WriteString(stdout, res.Output)
	} else {
		err = os.WriteFile(out, []byte(res.Output), 0o644)
	}
	if err == nil && dump != nil {
		writeDump(dump, res)
	}
	return res, err
}

func writeDump(w io.Writer, res *sleigh.Result) {
	fmt.Fprintln(w, "# definitions")
	for _, name := range slices.Sorted(maps.Keys(res.Definitions)) {
		fmt.Fprintf(w, "%s=%q\n", name, res.Definitions[name])
	}
	fmt.Fprintln(w, "# locations")
	for _, loc := range res.Locations {
		fmt.Fprintln(w, loc.String())
	}
}

func main() {
	log.SetFlags(0)
	o, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(o)
	if err != nil {
		log.Fatal(err)
	}
	out, err := outputPath(o, cfg)
	if err != nil {
		log.Fatal(err)
	}
	var dump io.Writer
	if o.dump {
		dump = os.Stderr
	}

	progress := out != "-" && term.IsTerminal(int(os.Stdout.Fd()))
	// a failed pass keeps the files of the last good one
	files := []string{o.source}
	build := func() ([]string, error) {
		if progress {
			fmt.Printf("Processing %s → %s\n", o.source, out)
		}
		res, err := preprocess(cfg, o.source, out, os.Stdout, dump, logger)
		if res != nil {
			files = res.Files
		}
		return files, err
	}

	if !o.watch {
		if _, err := build(); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watch.New(logger).Run(ctx, build); err != nil {
		log.Fatal(err)
	}
}
