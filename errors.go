/*
 * errors.go, part of rsgrad.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package vasp

import "fmt"

// Kind classifies the failures this package can report. Every Kind is
// terminal for the operation that produced it: nothing is retried and no
// partially populated aggregate is ever returned.
type Kind int

const (
	//Format: a required marker or section is absent, or a found section
	//has the wrong shape (column count, row count).
	Format Kind = iota
	//Parse: a token that must be numeric or boolean failed to convert.
	Parse
	//Consistency: per-step sequences disagree in length, or an atom-count
	//invariant was violated while splitting/formatting.
	Consistency
	//Geometry: the lattice is singular, so coordinates cannot be converted.
	Geometry
	//Range: a 1-based step/mode index against an already loaded aggregate
	//is out of range.
	Range
)

func (k Kind) String() string {
	switch k {
	case Format:
		return "format"
	case Parse:
		return "parse"
	case Consistency:
		return "consistency"
	case Geometry:
		return "geometry"
	case Range:
		return "range"
	}
	return "unknown"
}

// Error is the error type for everything in this package. Field carries the
// name of the field or section involved, File the offending file when there
// is one.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	File    string
	deco    []string
}

func (err *Error) Error() string {
	s := fmt.Sprintf("vasp: %v error", err.Kind)
	if err.Field != "" {
		s += fmt.Sprintf(" [%s]", err.Field)
	}
	if err.File != "" {
		s += fmt.Sprintf(" (%s)", err.File)
	}
	return s + ": " + err.Message
}

// Decorate adds the caller's name (plus any extra info) to the error and
// returns the current decoration stack. An empty string only queries.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// errDecorate adds caller information to err on its way up the stack. It
// only knows how to handle the package's own *Error; anything else is
// returned untouched.
func errDecorate(err error, caller string) error {
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
	}
	return err
}

func formatErr(field, format string, a ...interface{}) *Error {
	return &Error{Kind: Format, Field: field, Message: fmt.Sprintf(format, a...)}
}

func parseErr(field, format string, a ...interface{}) *Error {
	return &Error{Kind: Parse, Field: field, Message: fmt.Sprintf(format, a...)}
}

func consistencyErr(field, format string, a ...interface{}) *Error {
	return &Error{Kind: Consistency, Field: field, Message: fmt.Sprintf(format, a...)}
}

func geometryErr(format string, a ...interface{}) *Error {
	return &Error{Kind: Geometry, Message: fmt.Sprintf(format, a...)}
}

func rangeErr(what string, index, length int) *Error {
	return &Error{Kind: Range, Field: what,
		Message: fmt.Sprintf("index %d out of range, have %d", index, length)}
}

// Recurring messages.
const (
	InvalidScale    = "invalid scale"
	IncompleteCell  = "incomplete cell"
	CountMismatch   = "count mismatch"
	UnknownCoords   = "unrecognized coordinate type"
	SingularCell    = "cell is singular, cannot convert coordinates"
	FieldNotFound   = "field not found"
	InconsistentLen = "inconsistent step count"
)
