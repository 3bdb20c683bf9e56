package preprocessor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// markerDelim delimits the out-of-band markers embedded in annotated output.
const markerDelim = '\x08'

type eventKind int

const (
	positionEvent  eventKind = iota // file, line
	expansionEvent                  // ref, value
)

type event struct {
	kind  eventKind
	file  string
	line  int
	ref   string
	value string
}

// encoder turns position and expansion events into output text. In
// compatible mode positions vanish and expansions become their plain value.
type encoder struct {
	compatible bool
}

func (enc encoder) encode(b *strings.Builder, ev event) {
	switch ev.kind {
	case positionEvent:
		if enc.compatible {
			return
		}
		b.WriteByte(markerDelim)
		b.WriteString(ev.file)
		b.WriteString("###")
		b.WriteString(strconv.Itoa(ev.line))
		b.WriteByte(markerDelim)
	case expansionEvent:
		if !enc.compatible {
			b.WriteByte(markerDelim)
			b.WriteString(ev.ref)
			b.WriteByte(markerDelim)
		}
		b.WriteString(ev.value)
	}
}

var expansionRe = regexp.MustCompile(`\$\(([0-9A-Z_a-z]+)\)`)

// undefinedVariable is returned by substitute for the first unknown $(NAME).
type undefinedVariable struct {
	name string
	col  int
}

func (u *undefinedVariable) Error() string {
	return fmt.Sprintf("unknown variable %q at col %d", u.name, u.col)
}

// substitute replaces every $(NAME) in line, left to right and without
// rescanning inserted values.
func substitute(line string, defs Definitions, enc encoder) (string, error) {
	matches := expansionRe.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := line[m[2]:m[3]]
		value, ok := defs[name]
		if !ok {
			return "", &undefinedVariable{name: name, col: m[0] + 1}
		}
		b.WriteString(line[last:m[0]])
		enc.encode(&b, event{kind: expansionEvent, ref: line[m[0]:m[1]], value: value})
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String(), nil
}
