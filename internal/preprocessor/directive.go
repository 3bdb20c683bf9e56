package preprocessor

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/saruman9/sleigh-preprocessor/internal/expression"
)

// ---------------- Directive parsing helpers ----------------

var (
	includeRe = regexp.MustCompile(`^\s*@include\s+"(.*)"\s*$`)
	define1Re = regexp.MustCompile(`^\s*@define\s+([0-9A-Z_a-z]+)\s+"(.*)"\s*$`)
	define2Re = regexp.MustCompile(`^\s*@define\s+([0-9A-Z_a-z]+)\s+(\S+)\s*$`)
	define3Re = regexp.MustCompile(`^\s*@define\s+([0-9A-Z_a-z]+)\s*$`)
	undefRe   = regexp.MustCompile(`^\s*@undef\s+([0-9A-Z_a-z]+)\s*$`)
	ifdefRe   = regexp.MustCompile(`^\s*@ifdef\s+([0-9A-Z_a-z]+)\s*$`)
	ifndefRe  = regexp.MustCompile(`^\s*@ifndef\s+([0-9A-Z_a-z]+)\s*$`)
	ifRe      = regexp.MustCompile(`^\s*@if\s+(.*)`)
	elifRe    = regexp.MustCompile(`^\s*@elif\s+(.*)`)
	endifRe   = regexp.MustCompile(`^\s*@endif\s*$`)
	elseRe    = regexp.MustCompile(`^\s*@else\s*$`)
)

// directive is a sigil-prefixed line. text has its trailing comment removed;
// original is the line as read, used for the echo and for diagnostics.
type directive struct {
	text     string
	original string
}

// handleDirective applies one directive. included is true when an @include
// was acted on; the caller then writes nothing for the line and leaves the
// counters alone.
func (p *Preprocessor) handleDirective(f *fileState, d directive, c carry) (_ carry, included bool, err error) {
	line := d.text
	pos := f.position()

	if m := includeRe.FindStringSubmatch(line); m != nil {
		if !f.conds.Copy() {
			return c, false, nil
		}
		c, err = p.include(f, d, m[1], c)
		return c, err == nil, err
	}

	m := define1Re.FindStringSubmatch(line)
	if m == nil {
		m = define2Re.FindStringSubmatch(line)
	}
	if m != nil {
		if f.conds.Copy() {
			p.log.Debug("@define", "pos", pos, "name", m[1], "value", m[2])
			f.defs[m[1]] = m[2]
		}
		return c, false, nil
	}

	if m := define3Re.FindStringSubmatch(line); m != nil {
		if f.conds.Copy() {
			p.log.Debug("@define", "pos", pos, "name", m[1], "value", "")
			f.defs[m[1]] = ""
		}
		return c, false, nil
	}

	if m := undefRe.FindStringSubmatch(line); m != nil {
		if f.conds.Copy() {
			p.log.Debug("@undef", "pos", pos, "name", m[1])
			delete(f.defs, m[1])
		}
		return c, false, nil
	}

	if m := ifdefRe.FindStringSubmatch(line); m != nil {
		f.conds.Push()
		_, ok := f.defs[m[1]]
		p.log.Debug("@ifdef", "pos", pos, "name", m[1], "taken", ok)
		f.conds.Take(ok)
		return c, false, nil
	}

	if m := ifndefRe.FindStringSubmatch(line); m != nil {
		f.conds.Push()
		_, ok := f.defs[m[1]]
		p.log.Debug("@ifndef", "pos", pos, "name", m[1], "taken", !ok)
		f.conds.Take(!ok)
		return c, false, nil
	}

	if m := ifRe.FindStringSubmatch(line); m != nil {
		f.conds.Push()
		ok, err := p.evaluate(f, d, m[1])
		if err != nil {
			return c, false, err
		}
		p.log.Debug("@if", "pos", pos, "expr", m[1], "taken", ok)
		f.conds.Take(ok)
		return c, false, nil
	}

	if m := elifRe.FindStringSubmatch(line); m != nil {
		if err := p.checkBranch(f, d, "elif"); err != nil {
			return c, false, err
		}
		if f.conds.Handled() {
			p.log.Debug("@elif: already handled", "pos", pos)
			f.conds.Skip()
			return c, false, nil
		}
		ok, err := p.evaluate(f, d, m[1])
		if err != nil {
			return c, false, err
		}
		p.log.Debug("@elif", "pos", pos, "expr", m[1], "taken", ok)
		f.conds.Elif(ok)
		return c, false, nil
	}

	if endifRe.MatchString(line) {
		if !f.conds.InIf() {
			return c, false, f.errorf(ConditionalError, d.original, "not in IF* directive")
		}
		p.log.Debug("@endif", "pos", pos)
		f.conds.Pop()
		return c, false, nil
	}

	if elseRe.MatchString(line) {
		if err := p.checkBranch(f, d, "else"); err != nil {
			return c, false, err
		}
		f.conds.Else()
		p.log.Debug("@else", "pos", pos, "taken", !f.conds.Handled())
		return c, false, nil
	}

	return c, false, f.errorf(DirectiveError, d.original, "unrecognized preprocessor directive")
}

// checkBranch validates an @elif or @else against the innermost level.
func (p *Preprocessor) checkBranch(f *fileState, d directive, name string) error {
	if !f.conds.InIf() {
		return f.errorf(ConditionalError, d.original, "%s outside of IF* directive", name)
	}
	if f.conds.SawElse() {
		return f.errorf(ConditionalError, d.original, "already saw else directive")
	}
	return nil
}

func (p *Preprocessor) evaluate(f *fileState, d directive, expr string) (bool, error) {
	ok, err := expression.Evaluate(expr, f.defs)
	if err == nil {
		return ok, nil
	}
	var code int
	switch {
	case expression.IsNotDefined(err):
		code = ExprUndefinedError
	case expression.IsParseError(err):
		code = ExprParseError
	default:
		return false, err
	}
	perr := f.errorf(code, d.original, "%s", err.Error())
	perr.Err = err
	return false, perr
}

// ---------------- Include resolution ----------------

func (p *Preprocessor) include(f *fileState, d directive, arg string, c carry) (carry, error) {
	// include paths never carry markers
	name, err := substitute(arg, f.defs, encoder{compatible: true})
	if err != nil {
		var uv *undefinedVariable
		if errors.As(err, &uv) {
			return c, f.errorf(UndefinedVariableError, d.original, "%s", uv.Error())
		}
		return c, err
	}
	resolved := resolveInclude(name, f.path)
	if !fileExists(resolved) {
		return c, f.errorf(MissingIncludeError, d.original, "included file %q does not exist", resolved)
	}
	if f.depth+1 > p.maxDepth {
		return c, f.errorf(IncludeDepthError, d.original,
			"include nesting deeper than %d levels at %q", p.maxDepth, resolved)
	}

	p.log.Debug("@include", "pos", f.position(), "file", resolved)
	c, global, err := p.processFile(f.out, resolved, f.depth+1, f.global, c)
	if err != nil {
		return c, err
	}
	f.defs = c.defs
	f.line++
	// global counts output lines, so it resumes after the included text
	f.global = global
	c.locations = p.markPosition(f, c.locations)
	return c, nil
}

// resolveInclude resolves a relative include against the directory of the
// including file.
func resolveInclude(path, includingFile string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(filepath.Dir(includingFile), path)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
