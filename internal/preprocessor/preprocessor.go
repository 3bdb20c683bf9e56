package preprocessor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxIncludeDepth bounds @include nesting when Options leaves it zero.
const DefaultMaxIncludeDepth = 64

// Definitions maps identifiers to their values.
type Definitions map[string]string

// Options configure a Preprocessor.
type Options struct {
	// Compatible disables the out-of-band markers: variables are replaced by
	// their plain values and no position markers are written.
	Compatible      bool
	MaxIncludeDepth int
	// Logger receives a Debug trace of every decision. Nil disables logging.
	Logger *slog.Logger
}

// Result is the output of a successful run.
type Result struct {
	Output      string
	Definitions Definitions
	Locations   []Location
	// Files lists every file read, the top-level file first.
	Files []string
}

// ---------------- Preprocessor ----------------

type Preprocessor struct {
	compatible bool
	maxDepth   int
	log        *slog.Logger
}

func NewPreprocessor(opts Options) *Preprocessor {
	p := &Preprocessor{
		compatible: opts.Compatible,
		maxDepth:   opts.MaxIncludeDepth,
		log:        opts.Logger,
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxIncludeDepth
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	return p
}

// Process preprocesses the file at path, starting from defs. defs is handed
// over to the run and must not be used by the caller afterwards; the final
// table is returned in Result.Definitions.
func Process(path string, defs Definitions, opts Options) (*Result, error) {
	return NewPreprocessor(opts).Process(path, defs)
}

func (p *Preprocessor) Process(path string, defs Definitions) (*Result, error) {
	if defs == nil {
		defs = Definitions{}
	}
	var out strings.Builder
	c, _, err := p.processFile(&out, path, 0, 1, carry{defs: defs})
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:      out.String(),
		Definitions: c.defs,
		Locations:   c.locations,
		Files:       c.files,
	}, nil
}

// carry is the state moved into a nested include and moved back out.
type carry struct {
	defs      Definitions
	locations []Location
	files     []string
}

// fileState is the per-file part of a run. It is never shared between files.
type fileState struct {
	path   string
	line   int
	global int
	conds  *condStack
	depth  int
	errs   []error
	defs   Definitions
	out    *strings.Builder
}

func (f *fileState) position() string {
	return fmt.Sprintf("%s:%d(%d)", filepath.Base(f.path), f.line, f.global)
}

// processFile runs one file starting at output line global. It returns the
// carried state and the output line following the file.
func (p *Preprocessor) processFile(out *strings.Builder, path string, depth, global int, c carry) (carry, int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return c, global, &Error{Code: IOError, Message: fmt.Sprintf("IO error: %v", err), File: path, Err: err}
	}
	defer fh.Close()

	f := &fileState{
		path:   path,
		line:   1,
		global: global,
		conds:  newCondStack(),
		depth:  depth,
		defs:   c.defs,
		out:    out,
	}
	c.files = append(c.files, path)
	p.log.Debug("enter file", "file", path, "depth", depth)
	c.locations = p.markPosition(f, c.locations)

	lr := newLineReader(fh)
	for {
		line, ok, err := lr.next()
		if err != nil {
			return c, f.global, &Error{
				Code:       IOError,
				Message:    fmt.Sprintf("IO error: %v", err),
				File:       path,
				Line:       f.line,
				GlobalLine: f.global,
				Err:        err,
			}
		}
		if !ok {
			break
		}
		original := line

		if isFullLineComment(line) {
			line = ""
		}

		if isDirective(line) {
			d := directive{text: stripComment(line), original: original}
			var included bool
			c, included, err = p.handleDirective(f, d, c)
			if err != nil {
				return c, f.global, err
			}
			if included {
				continue
			}
			p.log.Debug("PRINT: commenting directive out", "pos", f.position())
			writeComment(out, original)
		} else if f.conds.Copy() {
			p.log.Debug("PRINT: printing text", "pos", f.position())
			expanded, err := substitute(line, f.defs, encoder{compatible: p.compatible})
			if err != nil {
				var uv *undefinedVariable
				if errors.As(err, &uv) {
					return c, f.global, f.errorf(UndefinedVariableError, line, "%s", uv.Error())
				}
				return c, f.global, err
			}
			out.WriteString(expanded)
			out.WriteByte('\n')
		} else {
			p.log.Debug("PRINT: replacing text with non-copied blank line", "pos", f.position())
			writeComment(out, line)
		}
		f.line++
		f.global++
	}

	// levels still open at end of file are dropped
	if len(f.errs) > 0 {
		return c, f.global, &Error{
			Code:    ProcessingError,
			Message: fmt.Sprintf("%d error(s) while preprocessing", len(f.errs)),
			File:    path,
			Err:     errors.Join(f.errs...),
		}
	}
	p.log.Debug("leave file", "file", path)
	return c, f.global, nil
}

// markPosition writes a position marker for the current line of f and
// records the matching Location.
func (p *Preprocessor) markPosition(f *fileState, locs []Location) []Location {
	enc := encoder{compatible: p.compatible}
	var b strings.Builder
	enc.encode(&b, event{kind: positionEvent, file: filepath.Base(f.path), line: f.line})
	f.out.WriteString(b.String())
	return append(locs, Location{File: f.path, LocalLine: f.line, GlobalLine: f.global})
}

func writeComment(out *strings.Builder, line string) {
	out.WriteByte('#')
	out.WriteString(line)
	out.WriteByte('\n')
}

type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next line without its line terminator. ok is false at
// the end of input.
func (lr *lineReader) next() (line string, ok bool, err error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if len(s) == 0 && err == io.EOF {
		return "", false, nil
	}
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, true, nil
}

func isFullLineComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t\f\v\r"), "#")
}

func isDirective(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t\f\v\r"), "@")
}

// stripComment drops a trailing "#..." comment from a directive line.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
