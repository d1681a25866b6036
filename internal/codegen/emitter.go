// Package codegen holds the shared emission machinery both backend
// generators build on.
package codegen

import "fmt"

// Emitter accumulates generated text and tracks indentation. Lines written
// through Line/Linef are indented; Raw appends verbatim.
type Emitter struct {
	buf         []byte
	indentLevel int
	indentWidth int
	atLineStart bool
}

func NewEmitter() *Emitter {
	return &Emitter{
		buf:         make([]byte, 0, 1<<10),
		indentWidth: 4,
		atLineStart: true,
	}
}

func (e *Emitter) Indent() { e.indentLevel++ }

func (e *Emitter) Dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

// Balanced reports whether every Indent was matched by a Dedent.
func (e *Emitter) Balanced() bool { return e.indentLevel == 0 }

func (e *Emitter) writeIndent() {
	if !e.atLineStart {
		return
	}
	for i, n := 0, e.indentLevel*e.indentWidth; i < n; i++ {
		e.buf = append(e.buf, ' ')
	}
	e.atLineStart = false
}

// Raw appends s without any indentation handling.
func (e *Emitter) Raw(s string) {
	if s == "" {
		return
	}
	e.buf = append(e.buf, s...)
	e.atLineStart = s[len(s)-1] == '\n'
}

// Write appends s at the current indent, without a trailing newline.
func (e *Emitter) Write(s string) {
	if s == "" {
		return
	}
	e.writeIndent()
	e.buf = append(e.buf, s...)
	e.atLineStart = s[len(s)-1] == '\n'
}

// Line writes one full indented line.
func (e *Emitter) Line(s string) {
	e.writeIndent()
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, '\n')
	e.atLineStart = true
}

func (e *Emitter) Linef(format string, args ...any) {
	e.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line, skipping indentation.
func (e *Emitter) Blank() {
	e.buf = append(e.buf, '\n')
	e.atLineStart = true
}

func (e *Emitter) String() string { return string(e.buf) }
